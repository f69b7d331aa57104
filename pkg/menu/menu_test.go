package menu

import (
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/mchmarny/navmenu/pkg/dom"
	"github.com/mchmarny/navmenu/pkg/logger"
)

const site = `<!doctype html><html><body><nav>
<ul class="navmenu" id="main">
  <li><a class="navmenu__item" href="/">Home</a></li>
  <li><a class="navmenu__item" href="/docs/">Docs</a>
    <ul>
      <li><a class="navmenu__item" href="/docs/intro/">Intro</a></li>
      <li><a class="navmenu__item" href="/docs/guides/">Guides</a>
        <ul>
          <li><a class="navmenu__item" href="/docs/guides/install/">Install</a></li>
        </ul>
      </li>
    </ul>
  </li>
  <li><a class="navmenu__item" href="/blog/">Blog</a>
    <ul>
      <li><a class="navmenu__item" href="/blog/2024/">2024</a></li>
    </ul>
  </li>
  <li><a class="navmenu__item" href="/about/">About</a>
    <ul><li><a class="navmenu__item" href="/about/team/">Team</a></li></ul>
  </li>
</ul>
</nav></body></html>`

func str(s string) *string { return &s }

func quiet() *slog.Logger {
	return logger.Discard()
}

func parseDoc(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

// build enhances src with id prefix "m" at the given path.
func build(t *testing.T, src, path string, opts ...Option) *Menu {
	t.Helper()
	l := Layer{ID: str("m"), Path: str(path)}
	all := append([]Option{WithLayer(l), WithLogger(quiet())}, opts...)
	return New(parseDoc(t, src), all...)
}

func ids(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func mustNode(t *testing.T, m *Menu, id string) *Node {
	t.Helper()
	n := m.Node(id)
	if n == nil {
		t.Fatalf("node %q not found", id)
	}
	return n
}

func TestNew_Discovery(t *testing.T) {
	m := build(t, site, "/")

	nodes := m.Nodes()
	wantIDs := []string{"main", "m-1", "m-2", "m-3", "m-4"}
	if got := ids(nodes); strings.Join(got, ",") != strings.Join(wantIDs, ",") {
		t.Fatalf("ids: got %v, want %v", got, wantIDs)
	}

	wantDepth := []int{1, 2, 3, 2, 2}
	seen := map[string]bool{}
	for i, n := range nodes {
		if n.Depth != wantDepth[i] {
			t.Errorf("%s depth: got %d, want %d", n.ID, n.Depth, wantDepth[i])
		}
		if n.Parent != nil && n.Depth != n.Parent.Depth+1 {
			t.Errorf("%s depth %d under parent depth %d", n.ID, n.Depth, n.Parent.Depth)
		}
		if seen[n.ID] {
			t.Errorf("duplicate id %s", n.ID)
		}
		seen[n.ID] = true
		if got := dom.Attr(n.Element, AttrDepth); got != []string{"1", "2", "3", "2", "2"}[i] {
			t.Errorf("%s depth attribute: got %q", n.ID, got)
		}
	}

	root := m.Root()
	if root != nodes[0] || !root.IsRoot() {
		t.Fatal("root must be the first registry entry")
	}
	if root.Hidden() || root.Control() != nil {
		t.Fatal("root must be visible and have no control")
	}
	if m.Toggle("main") {
		t.Fatal("root must not toggle")
	}

	for _, n := range nodes[1:] {
		if dom.Attr(n.Element, "id") != n.ID {
			t.Errorf("%s: id attribute not set", n.ID)
		}
		c := n.Control()
		if c == nil {
			t.Fatalf("%s: missing control", n.ID)
		}
		if n.Element.PrevSibling != c.Button {
			t.Errorf("%s: control not inserted right before the list", n.ID)
		}
		if dom.Attr(c.Button, "aria-controls") != n.ID {
			t.Errorf("%s: aria-controls %q", n.ID, dom.Attr(c.Button, "aria-controls"))
		}
		if m.NodeFor(n.Element) != n {
			t.Errorf("%s: NodeFor mismatch", n.ID)
		}
	}
}

func TestNew_DiscoveryOrderIsStable(t *testing.T) {
	a := ids(build(t, site, "/").Nodes())
	b := ids(build(t, site, "/").Nodes())
	if strings.Join(a, ",") != strings.Join(b, ",") {
		t.Fatalf("order differs: %v vs %v", a, b)
	}
}

func TestNew_RootMissing(t *testing.T) {
	var events []*Event
	m := New(parseDoc(t, `<ul><li>x</li></ul>`),
		WithLogger(quiet()),
		WithListener(EventInitDone, func(e *Event) { events = append(events, e) }))

	if len(events) != 1 {
		t.Fatalf("init events: got %d, want 1", len(events))
	}
	if events[0].Target != nil {
		t.Fatal("init event without root must be document level")
	}
	if !events[0].Bubbles || !events[0].Cancelable {
		t.Fatal("document level init event must bubble and be cancelable")
	}
	if m.Root() != nil || len(m.Nodes()) != 0 {
		t.Fatal("no tree expected")
	}
	if m.Snapshot().Found {
		t.Fatal("snapshot must report no root")
	}
	if m.Toggle("m-1") || m.Click(nil).Handled {
		t.Fatal("nothing to toggle")
	}
}

func TestNew_RootIDCollision(t *testing.T) {
	src := strings.Replace(site, `id="main"`, `id="m-1"`, 1)
	m := build(t, src, "/")

	got := ids(m.Nodes())
	want := []string{"m-1", "m-2", "m-3", "m-4", "m-5"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("ids: got %v, want %v", got, want)
	}
	if n := m.Node("m-1"); n == nil || !n.IsRoot() {
		t.Fatal("m-1 must still resolve to the root")
	}
	if n := m.Node("m-2"); n == nil || n.Depth != 2 {
		t.Fatal("first sub-menu must take the next free id")
	}

	out, err := dom.Render(m.Root().Element)
	if err != nil {
		t.Fatal(err)
	}
	if c := strings.Count(out, `id="m-1"`); c != 1 {
		t.Fatalf("id m-1 appears %d times in markup", c)
	}
}

func TestNew_InitDoneOnce(t *testing.T) {
	var events []*Event
	build(t, site, "/", WithListener(EventInitDone, func(e *Event) { events = append(events, e) }))

	if len(events) != 1 {
		t.Fatalf("init events: got %d, want 1", len(events))
	}
	e := events[0]
	if e.Target == nil || dom.Attr(e.Target, "id") != "main" {
		t.Fatal("init event must target the root")
	}
	if !e.Bubbles || !e.Cancelable {
		t.Fatal("init event must bubble and be cancelable")
	}
}

func TestNew_MalformedMarkup(t *testing.T) {
	src := `<ul class="navmenu">
	  <li>plain</li>
	  <li><ul></ul></li>
	  <li><a class="navmenu__item" href="/x/">X</a></li>
	</ul>
	<ul class="other"><li><ul><li>outside</li></ul></li></ul>`
	m := build(t, src, "/")

	if got := len(m.Nodes()); got != 2 {
		t.Fatalf("nodes: got %d, want root + 1 empty list", got)
	}

	empty := build(t, `<ul class="navmenu"></ul>`, "/")
	if got := len(empty.Nodes()); got != 1 {
		t.Fatalf("empty menu: got %d nodes, want 1", got)
	}
}

func TestNew_MenuElementAsDocument(t *testing.T) {
	doc := parseDoc(t, site)
	root := dom.MustCompile(".navmenu").Query(doc)

	m := New(root, WithLayer(Layer{ID: str("m")}), WithLogger(quiet()))
	if m.Root() == nil || m.Root().Element != root {
		t.Fatal("the menu element itself must be accepted as root")
	}
	if len(m.Nodes()) != 5 {
		t.Fatalf("nodes: got %d, want 5", len(m.Nodes()))
	}
}

func TestNew_InvalidSelectors(t *testing.T) {
	m := New(parseDoc(t, site),
		WithLogger(quiet()),
		WithLayer(Layer{Selectors: &SelectorsLayer{Item: str("li:hover")}}))

	if m.Root() == nil {
		t.Fatal("root should still be found")
	}
	if len(m.Nodes()) != 1 {
		t.Fatalf("invalid item selector must discover nothing, got %d nodes", len(m.Nodes()))
	}

	m = New(parseDoc(t, site),
		WithLogger(quiet()),
		WithLayer(Layer{Selectors: &SelectorsLayer{Menu: str("ul[")}}))
	if m.Root() != nil {
		t.Fatal("invalid menu selector must find no root")
	}
}

func TestNew_NestedItemSelectorDoesNotDoubleRegister(t *testing.T) {
	m := build(t, site, "/", WithLayer(Layer{
		ID:        str("m"),
		Path:      str("/"),
		Selectors: &SelectorsLayer{Item: str("li")},
	}))

	seen := map[*html.Node]bool{}
	for _, n := range m.Nodes() {
		if seen[n.Element] {
			t.Fatalf("%s registered twice", n.ID)
		}
		seen[n.Element] = true
	}
	if len(m.Nodes()) != 5 {
		t.Fatalf("nodes: got %d, want 5", len(m.Nodes()))
	}
}

func TestControlFactory(t *testing.T) {
	var calls []string
	f := ControlFactoryFunc(func(n *Node, cfg Config) *Control {
		calls = append(calls, n.ID)
		return ButtonFactory{}.NewControl(n, cfg)
	})
	m := build(t, site, "/", WithControlFactory(f))

	if strings.Join(calls, ",") != "m-1,m-2,m-3,m-4" {
		t.Fatalf("factory calls: %v", calls)
	}

	none := ControlFactoryFunc(func(*Node, Config) *Control { return nil })
	m = build(t, site, "/", WithControlFactory(none))
	for _, n := range m.Nodes() {
		if n.Control() != nil {
			t.Fatalf("%s: unexpected control", n.ID)
		}
	}
	if m.Toggle("m-1") {
		t.Fatal("a node without control must not toggle")
	}
}

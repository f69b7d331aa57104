// Package menu turns a nested HTML list into a collapsible navigation menu.
//
// New finds the menu root in a parsed document, marks the items linking to
// the current location, discovers every nested list, inserts a toggle
// control in front of each and keeps the open/closed state of each list in
// sync with its control. Input is delivered by the host with Click and
// KeyDown; lifecycle notifications go to listeners.
//
// A Menu is not safe for concurrent use.
package menu

import (
	"log/slog"

	"golang.org/x/net/html"

	"github.com/mchmarny/navmenu/pkg/dom"
	"github.com/mchmarny/navmenu/pkg/metric"
)

// Menu is one enhanced menu tree.
type Menu struct {
	cfg      Config
	defaults Config
	supplied Layer

	root  *Node
	nodes []*Node

	byElement map[*html.Node]*Node
	byControl map[*html.Node]*Node
	byID      map[string]*Node

	listeners map[string][]Listener
	factory   ControlFactory
	location  func() string
	counter   metric.IncrementalCounter
	log       *slog.Logger
}

// Option configures a Menu.
type Option func(*Menu)

// WithDefaults replaces the built-in defaults, the lowest config layer.
func WithDefaults(c Config) Option {
	return func(m *Menu) { m.defaults = c.clone() }
}

// WithLayer sets the caller-supplied config layer.
func WithLayer(l Layer) Option {
	return func(m *Menu) { m.supplied = l }
}

// WithLocation sets the source of the current location, used when the
// config has no path.
func WithLocation(fn func() string) Option {
	return func(m *Menu) { m.location = fn }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Menu) {
		if l != nil {
			m.log = l
		}
	}
}

// WithListener registers a listener before initialization, so it also
// receives EventInitDone.
func WithListener(typ string, l Listener) Option {
	return func(m *Menu) { m.AddListener(typ, l) }
}

// WithControlFactory replaces the default ButtonFactory.
func WithControlFactory(f ControlFactory) Option {
	return func(m *Menu) {
		if f != nil {
			m.factory = f
		}
	}
}

// WithCounter counts transitions by state and trigger.
func WithCounter(c metric.IncrementalCounter) Option {
	return func(m *Menu) { m.counter = c }
}

// New enhances the menu found in doc. doc may be a whole document, any
// element containing the menu, or the menu list itself.
//
// New never fails: a missing root, a malformed data-navmenu attribute or odd
// markup leave the affected part without behavior. EventInitDone always
// fires exactly once.
func New(doc *html.Node, opts ...Option) *Menu {
	m := &Menu{
		defaults:  Defaults(),
		byElement: make(map[*html.Node]*Node),
		byControl: make(map[*html.Node]*Node),
		byID:      make(map[string]*Node),
		factory:   ButtonFactory{},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.cfg = Merge(m.defaults, m.supplied)

	rootEl := m.findRoot(doc)
	if rootEl == nil {
		m.log.Debug("menu root not found", "selector", m.cfg.Selectors.Menu)
		m.dispatch(&Event{Type: EventInitDone, Bubbles: true, Cancelable: true})
		return m
	}

	if override, _ := dom.LookupAttr(rootEl, AttrConfig); override != "" {
		l, err := ParseLayer([]byte(override))
		if err != nil {
			m.log.Debug("ignoring malformed menu attribute", "attr", AttrConfig, "error", err)
		} else {
			m.cfg = Merge(m.cfg, l)
		}
	}

	m.root = &Node{
		ID:      dom.Attr(rootEl, "id"),
		Depth:   1,
		Element: rootEl,
	}
	dom.SetAttr(rootEl, AttrDepth, "1")
	m.nodes = append(m.nodes, m.root)
	m.byElement[rootEl] = m.root
	if m.root.ID != "" {
		m.byID[m.root.ID] = m.root
	}

	path := m.currentPath()
	active := m.markActive(rootEl, path)

	if b := m.newBuilder(); b != nil {
		b.discover(m.root)
	}

	m.log.Debug("menu initialized",
		"id", m.cfg.ID,
		"mode", string(m.cfg.Mode),
		"path", path,
		"active", len(active),
		"nodes", len(m.nodes))

	m.dispatch(&Event{
		Type:       EventInitDone,
		Target:     rootEl,
		Bubbles:    true,
		Cancelable: true,
	})
	return m
}

func (m *Menu) findRoot(doc *html.Node) *html.Node {
	if doc == nil {
		return nil
	}
	sel, err := dom.Compile(m.cfg.Selectors.Menu)
	if err != nil {
		m.log.Warn("invalid menu selector", "error", err)
		return nil
	}
	if sel.Match(doc, nil) {
		return doc
	}
	return sel.Query(doc)
}

func (m *Menu) newBuilder() *builder {
	item, err := dom.Compile(m.cfg.Selectors.Item)
	if err != nil {
		m.log.Warn("invalid item selector, no sub-menus discovered", "error", err)
		return nil
	}
	submenu, err := dom.Compile(m.cfg.Selectors.Submenu)
	if err != nil {
		m.log.Warn("invalid submenu selector, no sub-menus discovered", "error", err)
		return nil
	}
	return &builder{m: m, item: item, submenu: submenu}
}

// Config returns the effective configuration.
func (m *Menu) Config() Config {
	return m.cfg.clone()
}

// Root returns the root node, nil when no root was found.
func (m *Menu) Root() *Node {
	return m.root
}

// Nodes returns the registry: the root first, then sub-menus in discovery
// order. It is empty when no root was found.
func (m *Menu) Nodes() []*Node {
	return append([]*Node(nil), m.nodes...)
}

// Node looks a node up by id.
func (m *Menu) Node(id string) *Node {
	if id == "" {
		return nil
	}
	return m.byID[id]
}

// NodeFor returns the node whose list element is el.
func (m *Menu) NodeFor(el *html.Node) *Node {
	return m.byElement[el]
}

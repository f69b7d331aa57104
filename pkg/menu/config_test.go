package menu

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestMerge_Precedence(t *testing.T) {
	base := Defaults()
	mode := ModeAccordion
	supplied := Layer{
		ID:      str("nav"),
		Mode:    &mode,
		Labels:  &LabelsLayer{Open: str("Show")},
		Classes: &ClassesLayer{Toggle: &Tokens{"btn", "btn-sm"}},
	}

	cfg := Merge(base, supplied)
	if cfg.ID != "nav" || cfg.Mode != ModeAccordion {
		t.Fatalf("top level: %q %q", cfg.ID, cfg.Mode)
	}
	if cfg.Labels.Open != "Show" || cfg.Labels.Close != "Close" {
		t.Fatalf("labels must merge per key: %+v", cfg.Labels)
	}
	if cfg.Classes.Toggle.String() != "btn btn-sm" || cfg.Classes.Item.String() != "navmenu__item" {
		t.Fatalf("classes must merge per key: %+v", cfg.Classes)
	}
	if cfg.Selectors != base.Selectors {
		t.Fatal("untouched groups must keep defaults")
	}

	// explicit empty values override
	cfg = Merge(cfg, Layer{Labels: &LabelsLayer{Close: str("")}, Classes: &ClassesLayer{Item: &Tokens{}}})
	if cfg.Labels.Close != "" || len(cfg.Classes.Item) != 0 || cfg.Labels.Open != "Show" {
		t.Fatalf("empty override: %+v %+v", cfg.Labels, cfg.Classes.Item)
	}
}

func TestMerge_Pure(t *testing.T) {
	base := Defaults()
	snapshot := base.clone()
	toggle := Tokens{"a"}

	cfg := Merge(base, Layer{Classes: &ClassesLayer{Toggle: &toggle}})
	cfg.Classes.Item[0] = "mutated"
	cfg.Icons.Open.(ClassList)[0] = "mutated"
	toggle[0] = "changed"

	if !reflect.DeepEqual(base, snapshot) {
		t.Fatal("Merge must not alias the base config")
	}
	if cfg.Classes.Toggle[0] != "a" {
		t.Fatal("Merge must not alias the layer")
	}

	again := Merge(snapshot, Layer{Classes: &ClassesLayer{Toggle: &Tokens{"a"}}})
	if !reflect.DeepEqual(Merge(snapshot, Layer{Classes: &ClassesLayer{Toggle: &Tokens{"a"}}}), again) {
		t.Fatal("Merge must be deterministic")
	}
}

func TestResolve(t *testing.T) {
	base := Defaults()
	supplied := Layer{Labels: &LabelsLayer{Open: str("Expand"), Close: str("Collapse")}}

	tests := []struct {
		name      string
		override  string
		wantOpen  string
		wantClose string
		wantMode  Mode
	}{
		{"none", "", "Expand", "Collapse", ModeDefault},
		{"override wins", `{"labels":{"menu.open":"Mehr"},"mode":"accordion"}`, "Mehr", "Collapse", ModeAccordion},
		{"malformed", `{"labels":`, "Expand", "Collapse", ModeDefault},
		{"wrong shape", `["accordion"]`, "Expand", "Collapse", ModeDefault},
		{"wrong type", `{"classes":{"item":42}}`, "Expand", "Collapse", ModeDefault},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Resolve(base, supplied, []byte(tc.override))
			if cfg.Labels.Open != tc.wantOpen || cfg.Labels.Close != tc.wantClose || cfg.Mode != tc.wantMode {
				t.Fatalf("got %+v mode %q", cfg.Labels, cfg.Mode)
			}
		})
	}
}

func TestParseLayer_TokensAndIcons(t *testing.T) {
	l, err := ParseLayer([]byte(`{
		"classes": {"item": "a b", "itemActive": ["c", "d e"], "hidden": null},
		"icons": {"menu.open": "icon icon-plus", "menu.close": ["icon", "icon-minus"]},
		"selectors": {"item": "> li"}
	}`))
	if err != nil {
		t.Fatal(err)
	}

	cfg := Merge(Defaults(), l)
	if !reflect.DeepEqual(cfg.Classes.Item, Tokens{"a", "b"}) {
		t.Errorf("item: %v", cfg.Classes.Item)
	}
	if !reflect.DeepEqual(cfg.Classes.ItemActive, Tokens{"c", "d", "e"}) {
		t.Errorf("itemActive: %v", cfg.Classes.ItemActive)
	}
	if !reflect.DeepEqual(cfg.Icons.Open, ClassList{"icon", "icon-plus"}) {
		t.Errorf("icon open: %v", cfg.Icons.Open)
	}
	if !reflect.DeepEqual(cfg.Icons.Close, ClassList{"icon", "icon-minus"}) {
		t.Errorf("icon close: %v", cfg.Icons.Close)
	}
	if cfg.Selectors.Item != "> li" || cfg.Selectors.Menu != ".navmenu" {
		t.Errorf("selectors: %+v", cfg.Selectors)
	}

	l, err = ParseLayer([]byte(`{"icons": {"menu.open": ""}}`))
	if err != nil {
		t.Fatal(err)
	}
	if Merge(Defaults(), l).Icons.enabled() {
		t.Error("an empty icon must switch icons off")
	}
}

func TestLoadLayerFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.yaml")
	content := `mode: accordion
id: side
path: /docs/
labels:
  menu.open: Show
classes:
  toggle: [btn, btn-link]
  hidden: is-hidden
icons:
  menu.open: bi bi-chevron-down
  menu.close:
    - bi
    - bi-chevron-up
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	l, err := LoadLayerFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := Merge(Defaults(), l)

	if cfg.Mode != ModeAccordion || cfg.ID != "side" || cfg.Path != "/docs/" {
		t.Fatalf("scalars: %q %q %q", cfg.Mode, cfg.ID, cfg.Path)
	}
	if cfg.Labels.Open != "Show" || cfg.Labels.Close != "Close" {
		t.Fatalf("labels: %+v", cfg.Labels)
	}
	if cfg.Classes.Toggle.String() != "btn btn-link" || cfg.Classes.Hidden.String() != "is-hidden" {
		t.Fatalf("classes: %+v", cfg.Classes)
	}
	if !reflect.DeepEqual(cfg.Icons.Close, ClassList{"bi", "bi-chevron-up"}) {
		t.Fatalf("icons: %+v", cfg.Icons)
	}

	if _, err := LoadLayerFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("classes:\n  toggle: {a: b}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLayerFile(bad); err == nil {
		t.Fatal("expected error for mapping tokens")
	}
}

func TestDeclarativeOverride(t *testing.T) {
	src := strings.Replace(site, `id="main"`,
		`id="main" data-navmenu='{"mode":"accordion","labels":{"menu.open":"Show"},"id":"side"}'`, 1)
	m := New(parseDoc(t, src), WithLogger(quiet()), WithLayer(Layer{ID: str("m"), Labels: &LabelsLayer{Close: str("Hide")}}))

	cfg := m.Config()
	if cfg.Mode != ModeAccordion || cfg.Labels.Open != "Show" || cfg.Labels.Close != "Hide" {
		t.Fatalf("config: %+v", cfg)
	}
	if m.Nodes()[1].ID != "side-1" {
		t.Fatalf("declarative id prefix not applied: %s", m.Nodes()[1].ID)
	}
	if got := m.Nodes()[1].Control().Label.Data; got != "Show" {
		t.Fatalf("label: %q", got)
	}
}

func TestDeclarativeOverride_Malformed(t *testing.T) {
	src := strings.Replace(site, `id="main"`, `id="main" data-navmenu="{not json"`, 1)
	m := New(parseDoc(t, src), WithLogger(quiet()), WithLayer(Layer{ID: str("m")}))

	if m.Config().Mode != ModeDefault || len(m.Nodes()) != 5 {
		t.Fatal("malformed attribute must be ignored")
	}
}

func TestDeclarativeOverride_MalformedLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	src := strings.Replace(site, `id="main"`, `id="main" data-navmenu='{"mode":'`, 1)
	New(parseDoc(t, src), WithLogger(log), WithLayer(Layer{ID: str("m")}))

	if n := strings.Count(buf.String(), "ignoring malformed menu attribute"); n != 1 {
		t.Fatalf("malformed attribute logged %d times:\n%s", n, buf.String())
	}

	buf.Reset()
	good := strings.Replace(site, `id="main"`, `id="main" data-navmenu='{"mode":"accordion"}'`, 1)
	m := New(parseDoc(t, good), WithLogger(log), WithLayer(Layer{ID: str("m")}))
	if m.Config().Mode != ModeAccordion || strings.Contains(buf.String(), "malformed") {
		t.Fatalf("valid attribute: mode %q, log:\n%s", m.Config().Mode, buf.String())
	}
}

func TestSnapshot_JSON(t *testing.T) {
	m := build(t, site, "/docs/")
	data, err := json.Marshal(m.Snapshot())
	if err != nil {
		t.Fatal(err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	if !s.Found || len(s.Nodes) != 5 || s.Mode != ModeDefault {
		t.Fatalf("snapshot: %+v", s)
	}
	docs := s.Nodes[1]
	if docs.ID != "m-1" || docs.Parent != "main" || docs.Hidden || docs.Expanded != "true" || docs.Label != "Close" {
		t.Fatalf("docs state: %+v", docs)
	}
	if s.Nodes[0].Expanded != "" {
		t.Fatal("root has no control state")
	}
}

package menu

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layer is a partial configuration. Nil fields leave the layer below
// untouched; set fields win, even when empty.
//
// Precedence, lowest first: Defaults, the layer supplied by the caller, the
// root element's data-navmenu attribute.
type Layer struct {
	Selectors *SelectorsLayer `json:"selectors,omitempty" yaml:"selectors,omitempty"`
	Classes   *ClassesLayer   `json:"classes,omitempty" yaml:"classes,omitempty"`
	Labels    *LabelsLayer    `json:"labels,omitempty" yaml:"labels,omitempty"`
	Icons     *IconsLayer     `json:"icons,omitempty" yaml:"icons,omitempty"`
	ID        *string         `json:"id,omitempty" yaml:"id,omitempty"`
	Mode      *Mode           `json:"mode,omitempty" yaml:"mode,omitempty"`
	Path      *string         `json:"path,omitempty" yaml:"path,omitempty"`
}

// SelectorsLayer overrides Selectors.
type SelectorsLayer struct {
	Menu    *string `json:"menu,omitempty" yaml:"menu,omitempty"`
	Item    *string `json:"item,omitempty" yaml:"item,omitempty"`
	Submenu *string `json:"submenu,omitempty" yaml:"submenu,omitempty"`
}

// ClassesLayer overrides Classes.
type ClassesLayer struct {
	Item                *Tokens `json:"item,omitempty" yaml:"item,omitempty"`
	ItemActive          *Tokens `json:"itemActive,omitempty" yaml:"itemActive,omitempty"`
	ItemParent          *Tokens `json:"itemParent,omitempty" yaml:"itemParent,omitempty"`
	Toggle              *Tokens `json:"toggle,omitempty" yaml:"toggle,omitempty"`
	ToggleTextContainer *Tokens `json:"toggleTextContainer,omitempty" yaml:"toggleTextContainer,omitempty"`
	Hidden              *Tokens `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// LabelsLayer overrides Labels.
type LabelsLayer struct {
	Open  *string `json:"menu.open,omitempty" yaml:"menu.open,omitempty"`
	Close *string `json:"menu.close,omitempty" yaml:"menu.close,omitempty"`
}

// IconsLayer overrides Icons. A nil IconSpec is unset; an empty ClassList
// switches icons off.
type IconsLayer struct {
	Open  IconSpec
	Close IconSpec
}

const (
	iconOpenKey  = "menu.open"
	iconCloseKey = "menu.close"
)

// UnmarshalJSON reads class string or list icons. Template and Factory icons
// can only be set from Go.
func (l *IconsLayer) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, dst := range map[string]*IconSpec{iconOpenKey: &l.Open, iconCloseKey: &l.Close} {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var t Tokens
		if err := json.Unmarshal(msg, &t); err != nil {
			return fmt.Errorf("icons.%s: %w", key, err)
		}
		*dst = ClassList(t)
	}
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (l *IconsLayer) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: icons must be a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		var dst *IconSpec
		switch value.Content[i].Value {
		case iconOpenKey:
			dst = &l.Open
		case iconCloseKey:
			dst = &l.Close
		default:
			continue
		}
		var t Tokens
		if err := value.Content[i+1].Decode(&t); err != nil {
			return fmt.Errorf("icons.%s: %w", value.Content[i].Value, err)
		}
		*dst = ClassList(t)
	}
	return nil
}

// ParseLayer decodes a JSON layer, as found in the data-navmenu attribute.
func ParseLayer(data []byte) (Layer, error) {
	var l Layer
	if err := json.Unmarshal(data, &l); err != nil {
		return Layer{}, fmt.Errorf("failed to parse menu config: %w", err)
	}
	return l, nil
}

// LoadLayerFile reads a YAML layer from disk.
func LoadLayerFile(path string) (Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layer{}, fmt.Errorf("failed to read menu config: %w", err)
	}

	var l Layer
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layer{}, fmt.Errorf("failed to parse menu config %s: %w", path, err)
	}
	return l, nil
}

// Merge applies l over base and returns a new Config. base is not modified.
func Merge(base Config, l Layer) Config {
	out := base.clone()

	if s := l.Selectors; s != nil {
		setString(&out.Selectors.Menu, s.Menu)
		setString(&out.Selectors.Item, s.Item)
		setString(&out.Selectors.Submenu, s.Submenu)
	}

	if c := l.Classes; c != nil {
		setTokens(&out.Classes.Item, c.Item)
		setTokens(&out.Classes.ItemActive, c.ItemActive)
		setTokens(&out.Classes.ItemParent, c.ItemParent)
		setTokens(&out.Classes.Toggle, c.Toggle)
		setTokens(&out.Classes.ToggleTextContainer, c.ToggleTextContainer)
		setTokens(&out.Classes.Hidden, c.Hidden)
	}

	if lb := l.Labels; lb != nil {
		setString(&out.Labels.Open, lb.Open)
		setString(&out.Labels.Close, lb.Close)
	}

	if ic := l.Icons; ic != nil {
		if ic.Open != nil {
			out.Icons.Open = cloneIcon(ic.Open)
		}
		if ic.Close != nil {
			out.Icons.Close = cloneIcon(ic.Close)
		}
	}

	setString(&out.ID, l.ID)
	setString(&out.Path, l.Path)
	if l.Mode != nil {
		out.Mode = *l.Mode
	}

	return out
}

// Resolve combines defaults, the caller's layer and the declarative override
// into the effective configuration. A malformed override is ignored.
func Resolve(defaults Config, supplied Layer, override []byte) Config {
	cfg := Merge(defaults, supplied)
	if len(override) == 0 {
		return cfg
	}

	l, err := ParseLayer(override)
	if err != nil {
		return cfg
	}
	return Merge(cfg, l)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setTokens(dst *Tokens, v *Tokens) {
	if v != nil {
		*dst = v.clone()
	}
}

package menu

import (
	"strconv"
	"strings"
	"time"
)

// Mode selects how sibling sub-menus interact.
type Mode string

const (
	// ModeDefault lets every sub-menu open and close independently.
	ModeDefault Mode = "default"

	// ModeAccordion closes every unrelated sub-menu when one opens.
	ModeAccordion Mode = "accordion"
)

const (
	// AttrConfig holds the per-instance JSON configuration on the root element.
	AttrConfig = "data-navmenu"

	// AttrDepth mirrors each list's depth into the markup.
	AttrDepth = "data-navmenu-depth"

	// DefaultIDPrefix prefixes generated sub-menu ids.
	DefaultIDPrefix = "navmenu"
)

// Selectors tell the menu how to find its root and walk its levels.
type Selectors struct {
	// Menu locates the root list within the document.
	Menu string `json:"menu" yaml:"menu"`

	// Item matches the items of one level, relative to that level's list.
	// It must only match direct children or depth accounting breaks.
	Item string `json:"item" yaml:"item"`

	// Submenu locates the nested list inside an item.
	Submenu string `json:"submenu" yaml:"submenu"`
}

// Classes are the structural class names the menu reads and writes.
type Classes struct {
	Item                Tokens `json:"item" yaml:"item"`
	ItemActive          Tokens `json:"itemActive" yaml:"itemActive"`
	ItemParent          Tokens `json:"itemParent" yaml:"itemParent"`
	Toggle              Tokens `json:"toggle" yaml:"toggle"`
	ToggleTextContainer Tokens `json:"toggleTextContainer" yaml:"toggleTextContainer"`

	// Hidden, when set, expresses the closed state with classes instead of
	// the hidden attribute.
	Hidden Tokens `json:"hidden" yaml:"hidden"`
}

// Labels are the toggle texts for each state.
type Labels struct {
	Open  string `json:"menu.open" yaml:"menu.open"`
	Close string `json:"menu.close" yaml:"menu.close"`
}

// Icons are the toggle icons for each state. They are rendered only when
// both are usable.
type Icons struct {
	Open  IconSpec
	Close IconSpec
}

func (i Icons) enabled() bool {
	return usable(i.Open) && usable(i.Close)
}

func (i Icons) forState(hidden bool) IconSpec {
	if hidden {
		return i.Open
	}
	return i.Close
}

// Config is the effective configuration of one menu.
type Config struct {
	Selectors Selectors
	Classes   Classes
	Labels    Labels
	Icons     Icons

	// ID prefixes generated sub-menu ids: "<ID>-<n>".
	ID string

	Mode Mode

	// Path overrides the current location used to mark the active item.
	Path string
}

// Defaults returns the built-in configuration. The id prefix carries the
// current time so menus built at different moments do not collide.
func Defaults() Config {
	return Config{
		Selectors: Selectors{
			Menu:    ".navmenu",
			Item:    ":scope > li",
			Submenu: "ul",
		},
		Classes: Classes{
			Item:                Tokens{"navmenu__item"},
			ItemActive:          Tokens{"navmenu__item--active"},
			ItemParent:          Tokens{"navmenu__item--parent"},
			Toggle:              Tokens{"navmenu__toggle"},
			ToggleTextContainer: Tokens{"navmenu__sr-only"},
		},
		Labels: Labels{
			Open:  "Open",
			Close: "Close",
		},
		Icons: Icons{
			Open:  ClassList{"fas", "fa-plus"},
			Close: ClassList{"fas", "fa-times"},
		},
		ID:   DefaultIDPrefix + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10),
		Mode: ModeDefault,
	}
}

func (c Config) accordion() bool {
	return c.Mode == ModeAccordion
}

func (c Config) label(hidden bool) string {
	if hidden {
		return c.Labels.Open
	}
	return c.Labels.Close
}

func (c Config) clone() Config {
	out := c
	out.Classes = Classes{
		Item:                c.Classes.Item.clone(),
		ItemActive:          c.Classes.ItemActive.clone(),
		ItemParent:          c.Classes.ItemParent.clone(),
		Toggle:              c.Classes.Toggle.clone(),
		ToggleTextContainer: c.Classes.ToggleTextContainer.clone(),
		Hidden:              c.Classes.Hidden.clone(),
	}
	out.Icons = Icons{Open: cloneIcon(c.Icons.Open), Close: cloneIcon(c.Icons.Close)}
	return out
}

// normalizePath makes "/docs" and "/docs/" compare equal.
func normalizePath(p string) string {
	return strings.TrimRight(p, "/") + "/"
}

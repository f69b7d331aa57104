package outline

// Item represents an individual link in the outline, which may contain sub-items.
type Item struct {
	// Title is the link text.
	Title string `json:"title" yaml:"title"`

	// Path is the link target. Items without a path render as plain text.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Description is rendered as the link title attribute.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Items are the sub-items of this item. A non-empty list becomes a
	// nested list, which the menu turns into a collapsible sub-menu.
	Items []Item `json:"items,omitempty" yaml:"items,omitempty"`
}

package menu

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/mchmarny/navmenu/pkg/dom"
)

// Control is the toggle element attached in front of a sub-menu.
type Control struct {
	// Button receives input and carries aria-expanded.
	Button *html.Node

	// Label is the text node holding the open/close label.
	Label *html.Node

	// Icon is the current icon element, nil when icons are off or the icon
	// spec built nothing for the current state.
	Icon *html.Node

	// slot holds the icon position while no icon is shown.
	slot *html.Node
}

// ControlFactory builds the toggle markup for a freshly discovered node. The
// node's id, depth and initial state are set when it is called. The menu
// inserts the returned Button before the sub-menu.
type ControlFactory interface {
	NewControl(n *Node, cfg Config) *Control
}

// ControlFactoryFunc adapts a function to ControlFactory.
type ControlFactoryFunc func(n *Node, cfg Config) *Control

func (f ControlFactoryFunc) NewControl(n *Node, cfg Config) *Control {
	return f(n, cfg)
}

// ButtonFactory builds
//
//	<button class="…toggle" aria-haspopup="true" aria-expanded="…" aria-controls="id">
//	  <span class="…sr-only">Open</span><i aria-hidden="true" class="…"></i>
//	</button>
type ButtonFactory struct{}

func (ButtonFactory) NewControl(n *Node, cfg Config) *Control {
	button := dom.Element("button",
		html.Attribute{Key: "type", Val: "button"},
		html.Attribute{Key: "aria-haspopup", Val: "true"},
		html.Attribute{Key: "aria-expanded", Val: strconv.FormatBool(!n.hidden)},
		html.Attribute{Key: "aria-controls", Val: n.ID},
	)
	dom.AddClass(button, cfg.Classes.Toggle...)

	text := dom.Element("span")
	dom.AddClass(text, cfg.Classes.ToggleTextContainer...)
	label := dom.Text(cfg.label(n.hidden))
	text.AppendChild(label)
	button.AppendChild(text)

	c := &Control{Button: button, Label: label}
	if cfg.Icons.enabled() {
		if icon := cfg.Icons.forState(n.hidden).build(n); icon != nil {
			button.AppendChild(icon)
			c.Icon = icon
		} else {
			c.slot = dom.Text("")
			button.AppendChild(c.slot)
		}
	}
	return c
}

// sync brings the control in line with the node's state.
func (c *Control) sync(n *Node, cfg Config) {
	dom.SetAttr(c.Button, "aria-expanded", strconv.FormatBool(!n.hidden))
	if c.Label != nil {
		c.Label.Data = cfg.label(n.hidden)
	}

	cur := c.Icon
	if cur == nil {
		cur = c.slot
	}
	if cur == nil || !cfg.Icons.enabled() {
		return
	}
	if cur.Parent == nil {
		// the host detached the icon; keep it out
		return
	}

	next := cfg.Icons.forState(n.hidden).build(n)
	if next == nil {
		if c.Icon == nil {
			return
		}
		if c.slot == nil {
			c.slot = dom.Text("")
		}
		dom.Replace(c.Icon, c.slot)
		c.Icon = nil
		return
	}
	dom.Replace(cur, next)
	c.Icon = next
}

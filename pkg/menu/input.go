package menu

import (
	"strings"

	"golang.org/x/net/html"
)

// Key identifies a keyboard key by its KeyboardEvent.key value.
type Key string

const (
	KeyEnter     Key = "Enter"
	KeySpace     Key = " "
	KeyArrowDown Key = "ArrowDown"
	KeyArrowUp   Key = "ArrowUp"
)

// KeyFromCode maps legacy keyCode values onto Key. Unknown codes map to "".
func KeyFromCode(code int) Key {
	switch code {
	case 13:
		return KeyEnter
	case 32:
		return KeySpace
	case 40:
		return KeyArrowDown
	case 38:
		return KeyArrowUp
	default:
		return ""
	}
}

// ParseKey accepts KeyboardEvent.key values and their common spellings
// ("Space", "Down", "up"). Anything else is returned unchanged and will pass
// through KeyDown untouched.
func ParseKey(s string) Key {
	switch strings.ToLower(s) {
	case "enter", "return":
		return KeyEnter
	case " ", "space", "spacebar":
		return KeySpace
	case "arrowdown", "down":
		return KeyArrowDown
	case "arrowup", "up":
		return KeyArrowUp
	default:
		return Key(s)
	}
}

// recognized reports whether the toggle reacts to the key.
func (k Key) recognized() bool {
	switch k {
	case KeyEnter, KeySpace, KeyArrowDown, KeyArrowUp:
		return true
	}
	return false
}

// InputResult tells the host what the menu did with an input event.
type InputResult struct {
	// Handled is true when a toggle control reacted.
	Handled bool `json:"handled"`

	// NodeID is the first sub-menu that transitioned.
	NodeID string `json:"node,omitempty"`

	// DefaultPrevented asks the host to skip the browser default (scrolling).
	DefaultPrevented bool `json:"defaultPrevented"`

	// PropagationStopped asks the host not to bubble the event further.
	PropagationStopped bool `json:"propagationStopped"`
}

// Click delivers a pointer click on target. The click bubbles up from target
// to the nearest toggle control, which flips its sub-menu and stops
// propagation so ancestor toggles never see it.
func (m *Menu) Click(target *html.Node) InputResult {
	for el := target; el != nil; el = el.Parent {
		n, ok := m.byControl[el]
		if !ok {
			continue
		}
		m.transition(n, !n.hidden, triggerClick, false)
		return InputResult{Handled: true, NodeID: n.ID, PropagationStopped: true}
	}
	return InputResult{}
}

// KeyDown delivers a keydown on target. Like Click it acts on the nearest
// toggle control only. Enter and Space toggle, ArrowDown opens, ArrowUp
// closes; all four prevent the default action. Other keys pass through
// untouched.
func (m *Menu) KeyDown(target *html.Node, key Key) InputResult {
	if !key.recognized() {
		return InputResult{}
	}

	for el := target; el != nil; el = el.Parent {
		n, ok := m.byControl[el]
		if !ok {
			continue
		}

		hidden := !n.hidden
		switch key {
		case KeyArrowDown:
			hidden = false
		case KeyArrowUp:
			hidden = true
		}

		m.transition(n, hidden, triggerKey, false)
		return InputResult{Handled: true, NodeID: n.ID, DefaultPrevented: true}
	}
	return InputResult{}
}

package menu

import (
	"golang.org/x/net/html"
)

// State is the open/closed state of a sub-menu.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Node is the root list or one discovered sub-menu. The markup element is
// owned by the document; the node only records behavior state next to it.
type Node struct {
	// ID is unique within one menu. The root keeps whatever id attribute it
	// had; sub-menus get "<prefix>-<n>".
	ID string

	// Depth is 1 for the root and grows by one per nesting level.
	Depth int

	// Element is the list element (<ul>).
	Element *html.Node

	// Item is the list item owning the sub-menu; nil for the root.
	Item *html.Node

	// Parent is the node the sub-menu was discovered under; nil for the root.
	Parent *Node

	hidden  bool
	control *Control
}

// Hidden reports whether the sub-menu is collapsed.
func (n *Node) Hidden() bool {
	return n.hidden
}

// State maps Hidden onto Open/Closed.
func (n *Node) State() State {
	if n.hidden {
		return Closed
	}
	return Open
}

// IsRoot reports whether n is the menu root.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// Control returns the toggle control, nil for the root.
func (n *Node) Control() *Control {
	return n.control
}

// isAncestorOf reports whether n strictly contains m.
func (n *Node) isAncestorOf(m *Node) bool {
	for p := m.Parent; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

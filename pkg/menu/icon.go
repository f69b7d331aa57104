package menu

import (
	"golang.org/x/net/html"

	"github.com/mchmarny/navmenu/pkg/dom"
)

// IconSpec describes how to build a toggle icon. It is one of ClassList,
// Template or Factory.
type IconSpec interface {
	build(n *Node) *html.Node
}

// ClassList renders an <i aria-hidden="true"> element carrying the classes.
// An empty list disables icons.
type ClassList []string

func (c ClassList) build(*Node) *html.Node {
	if len(c) == 0 {
		return nil
	}
	return dom.Element("i",
		html.Attribute{Key: "aria-hidden", Val: "true"},
		html.Attribute{Key: "class", Val: Tokens(c).String()},
	)
}

// Template is deep-cloned for every icon.
type Template struct {
	Node *html.Node
}

func (t Template) build(*Node) *html.Node {
	return dom.Clone(t.Node)
}

// Factory builds the icon for a node at the given depth. The node's state is
// already updated when the factory runs.
type Factory func(n *Node, depth int) *html.Node

func (f Factory) build(n *Node) *html.Node {
	return f(n, n.Depth)
}

func usable(s IconSpec) bool {
	switch v := s.(type) {
	case ClassList:
		return len(v) > 0
	case Template:
		return v.Node != nil
	case Factory:
		return v != nil
	default:
		return false
	}
}

func cloneIcon(s IconSpec) IconSpec {
	if c, ok := s.(ClassList); ok && c != nil {
		return append(ClassList(nil), c...)
	}
	return s
}

package menu

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mchmarny/navmenu/pkg/dom"
)

// markActive flags the items linking to current and, for each of them, the
// heading item of every enclosing branch up to the root. It returns the
// active items.
func (m *Menu) markActive(root *html.Node, current string) []*html.Node {
	classes := m.cfg.Classes
	current = normalizePath(current)

	var active []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if m.isItem(c) {
				if href, ok := dom.LookupAttr(c, "href"); ok && normalizePath(href) == current {
					active = append(active, c)
				}
			}
			walk(c)
		}
	}
	walk(root)

	for _, item := range active {
		dom.AddClass(item, classes.ItemActive...)
	}

	// second pass so an active heading is never also marked as parent
	for _, item := range active {
		start := item.Parent
		if start == nil || start == root {
			continue
		}
		for a := start.Parent; a != nil && a != root; a = a.Parent {
			if a.Type != html.ElementNode || a.DataAtom != atom.Li {
				continue
			}
			first := dom.FirstElementChild(a)
			if first != nil && m.isItem(first) && !dom.HasAnyClass(first, classes.ItemActive) {
				dom.AddClass(first, classes.ItemParent...)
			}
		}
	}

	return active
}

// isItem reports whether n is a menu link. Without item classes any <a> is.
func (m *Menu) isItem(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if len(m.cfg.Classes.Item) == 0 {
		return n.DataAtom == atom.A
	}
	return dom.HasAnyClass(n, m.cfg.Classes.Item)
}

// currentPath picks the configured path, then the host location, then "/".
func (m *Menu) currentPath() string {
	if m.cfg.Path != "" {
		return m.cfg.Path
	}
	if m.location != nil {
		if p := m.location(); p != "" {
			return p
		}
	}
	return "/"
}

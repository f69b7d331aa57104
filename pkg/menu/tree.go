package menu

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/mchmarny/navmenu/pkg/dom"
)

// pending is a sub-menu found under parent but not registered yet.
type pending struct {
	element *html.Node
	item    *html.Node
	parent  *Node
}

// builder walks the tree once. It owns the id counter.
type builder struct {
	m       *Menu
	item    *dom.Selector
	submenu *dom.Selector
	counter int
}

// discover registers every sub-menu under root, depth first in document
// order, so ids and registry order match a recursive walk.
func (b *builder) discover(root *Node) {
	stack := b.reversed(b.children(root))
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := b.m.byElement[p.element]; seen {
			continue
		}

		n := b.register(p)
		stack = append(stack, b.reversed(b.children(n))...)
	}
}

// children lists the sub-menus of the items directly under n. Items without
// a nested list are leaves and are skipped.
func (b *builder) children(n *Node) []pending {
	var out []pending
	for _, item := range b.item.QueryAll(n.Element) {
		sub := b.submenu.Query(item)
		if sub == nil {
			continue
		}
		if _, seen := b.m.byElement[sub]; seen {
			continue
		}
		out = append(out, pending{element: sub, item: item, parent: n})
	}
	return out
}

func (b *builder) reversed(ps []pending) []pending {
	for i, j := 0, len(ps)-1; i < j; i, j = i+1, j-1 {
		ps[i], ps[j] = ps[j], ps[i]
	}
	return ps
}

func (b *builder) nextID() string {
	b.counter++
	return b.m.cfg.ID + "-" + strconv.Itoa(b.counter)
}

func (b *builder) register(p pending) *Node {
	m := b.m
	// skip ids already taken, the root keeps its own
	id := b.nextID()
	for m.byID[id] != nil {
		id = b.nextID()
	}

	n := &Node{
		ID:      id,
		Depth:   p.parent.Depth + 1,
		Element: p.element,
		Item:    p.item,
		Parent:  p.parent,
	}
	dom.SetAttr(n.Element, "id", n.ID)
	dom.SetAttr(n.Element, AttrDepth, strconv.Itoa(n.Depth))

	// expanded along the path to the active item
	active := m.cfg.Classes.ItemActive
	m.applyHidden(n, !dom.HasAnyClass(p.item, active) && !dom.ContainsClass(p.item, active))

	n.control = m.factory.NewControl(n, m.cfg)
	if n.control != nil && n.control.Button != nil {
		dom.InsertBefore(n.control.Button, n.Element)
		m.byControl[n.control.Button] = n
	} else {
		n.control = nil
	}

	m.nodes = append(m.nodes, n)
	m.byElement[n.Element] = n
	m.byID[n.ID] = n

	m.log.Debug("sub-menu discovered",
		"id", n.ID,
		"depth", n.Depth,
		"hidden", n.hidden)

	return n
}

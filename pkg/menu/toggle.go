package menu

import (
	"github.com/mchmarny/navmenu/pkg/dom"
)

type trigger string

const (
	triggerClick     trigger = "click"
	triggerKey       trigger = "key"
	triggerAPI       trigger = "api"
	triggerAccordion trigger = "accordion"
)

// transition moves n into the given hidden state and refreshes its control.
// Silent transitions skip accordion coordination and notifications; only
// the accordion issues them.
func (m *Menu) transition(n *Node, hidden bool, trig trigger, silent bool) {
	if n.control == nil {
		return
	}

	m.applyHidden(n, hidden)
	n.control.sync(n, m.cfg)

	if m.counter != nil {
		m.counter.Increment(n.State().String(), string(trig))
	}
	m.log.Debug("sub-menu transition",
		"id", n.ID,
		"depth", n.Depth,
		"state", n.State().String(),
		"trigger", string(trig),
		"silent", silent)

	if silent {
		return
	}

	if !hidden && m.cfg.accordion() {
		m.collapseOthers(n)
	}

	m.dispatch(&Event{
		Type:       EventToggleDone,
		Target:     m.root.Element,
		Node:       n.Element,
		ID:         n.ID,
		Depth:      n.Depth,
		Bubbles:    true,
		Cancelable: true,
	})
}

// applyHidden writes the state into the node and its markup, either as the
// hidden attribute or as the configured hidden classes.
func (m *Menu) applyHidden(n *Node, hidden bool) {
	n.hidden = hidden

	if hc := m.cfg.Classes.Hidden; len(hc) > 0 {
		if hidden {
			dom.AddClass(n.Element, hc...)
		} else {
			dom.RemoveClass(n.Element, hc...)
		}
		return
	}

	if hidden {
		dom.SetAttr(n.Element, "hidden", "")
	} else {
		dom.RemoveAttr(n.Element, "hidden")
	}
}

// Toggle flips a sub-menu as if its control was activated. It returns false
// for unknown ids and for the root.
func (m *Menu) Toggle(id string) bool {
	n := m.Node(id)
	if n == nil || n.control == nil {
		return false
	}
	m.transition(n, !n.hidden, triggerAPI, false)
	return true
}

// Open expands a sub-menu. See Toggle.
func (m *Menu) Open(id string) bool {
	return m.force(id, false)
}

// Close collapses a sub-menu. See Toggle.
func (m *Menu) Close(id string) bool {
	return m.force(id, true)
}

func (m *Menu) force(id string, hidden bool) bool {
	n := m.Node(id)
	if n == nil || n.control == nil {
		return false
	}
	m.transition(n, hidden, triggerAPI, false)
	return true
}

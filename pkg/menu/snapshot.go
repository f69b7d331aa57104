package menu

import (
	"github.com/mchmarny/navmenu/pkg/dom"
)

// NodeState is the serializable view of one node.
type NodeState struct {
	ID       string `json:"id"`
	Parent   string `json:"parent,omitempty"`
	Depth    int    `json:"depth"`
	Hidden   bool   `json:"hidden"`
	Expanded string `json:"expanded,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Snapshot is the serializable view of a menu.
type Snapshot struct {
	Found bool        `json:"found"`
	Mode  Mode        `json:"mode"`
	Nodes []NodeState `json:"nodes"`
}

// Snapshot reports every node in registry order. Expanded and Label are read
// back from the markup, so they show what a user would see.
func (m *Menu) Snapshot() Snapshot {
	s := Snapshot{
		Found: m.root != nil,
		Mode:  m.cfg.Mode,
		Nodes: make([]NodeState, 0, len(m.nodes)),
	}
	for _, n := range m.nodes {
		ns := NodeState{
			ID:     n.ID,
			Depth:  n.Depth,
			Hidden: n.hidden,
		}
		if n.Parent != nil {
			ns.Parent = n.Parent.ID
		}
		if c := n.control; c != nil {
			ns.Expanded = dom.Attr(c.Button, "aria-expanded")
			if c.Label != nil {
				ns.Label = c.Label.Data
			}
		}
		s.Nodes = append(s.Nodes, ns)
	}
	return s
}

package menu

// collapseOthers silently closes every open sub-menu that is neither n, an
// ancestor of n, nor a descendant of n. The closes are silent so they do not
// coordinate again.
func (m *Menu) collapseOthers(n *Node) {
	for _, other := range m.nodes {
		if other == n || other.control == nil || other.hidden {
			continue
		}
		if other.isAncestorOf(n) || n.isAncestorOf(other) {
			continue
		}
		m.transition(other, true, triggerAccordion, true)
	}
}

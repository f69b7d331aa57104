package menu

import (
	"golang.org/x/net/html"
)

const (
	// EventInitDone fires once per menu, after discovery, or right away at
	// document level (nil Target) when the root is missing. It bubbles and
	// is cancelable either way.
	EventInitDone = "navmenu-init-done"

	// EventToggleDone fires after every non-silent transition.
	EventToggleDone = "navmenu-toggle-done"
)

// Event is a lifecycle notification.
type Event struct {
	Type string

	// Target is the root element, nil when dispatched at document level.
	Target *html.Node

	// Node, ID and Depth describe the toggled sub-menu for EventToggleDone.
	Node  *html.Node
	ID    string
	Depth int

	Bubbles    bool
	Cancelable bool

	defaultPrevented bool
}

// PreventDefault marks a cancelable event as canceled.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether a listener canceled the event.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Listener receives events synchronously. It may call back into the menu.
type Listener func(e *Event)

// AddListener registers l for events of the given type. Listeners added
// after New miss EventInitDone; use WithListener for that.
func (m *Menu) AddListener(typ string, l Listener) {
	if l == nil {
		return
	}
	if m.listeners == nil {
		m.listeners = make(map[string][]Listener)
	}
	m.listeners[typ] = append(m.listeners[typ], l)
}

// dispatch runs the listeners in registration order and reports whether the
// event was left uncanceled.
func (m *Menu) dispatch(e *Event) bool {
	// listeners may add listeners while running
	ls := append([]Listener(nil), m.listeners[e.Type]...)
	for _, l := range ls {
		l(e)
	}
	return !e.defaultPrevented
}

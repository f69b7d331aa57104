package preview

import (
	"sync"

	"golang.org/x/net/html"

	"github.com/mchmarny/navmenu/pkg/menu"
)

// session is one menu built from posted markup. mu serializes every call
// into the menu, which is not safe for concurrent use.
type session struct {
	id string

	mu     sync.Mutex
	doc    *html.Node
	menu   *menu.Menu
	events []EventRecord
}

// EventRecord is the JSON view of a menu event.
type EventRecord struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Depth int    `json:"depth,omitempty"`
}

// Response is returned by every session endpoint.
type Response struct {
	Session  string            `json:"session"`
	Snapshot menu.Snapshot     `json:"snapshot"`
	Result   *menu.InputResult `json:"result,omitempty"`
	Events   []EventRecord     `json:"events"`
}

// record is registered as a menu listener; the caller holds mu.
func (s *session) record(e *menu.Event) {
	s.events = append(s.events, EventRecord{Type: e.Type, ID: e.ID, Depth: e.Depth})
}

// response builds the reply and hands over the recorded events. The caller
// holds mu.
func (s *session) response(res *menu.InputResult) Response {
	r := Response{
		Session:  s.id,
		Snapshot: s.menu.Snapshot(),
		Result:   res,
		Events:   append([]EventRecord{}, s.events...),
	}
	s.events = s.events[:0]
	return r
}

// Package preview serves an outline's menu and lets HTTP clients drive
// enhanced menus built from their own markup.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/mchmarny/navmenu/pkg/dom"
	"github.com/mchmarny/navmenu/pkg/menu"
	"github.com/mchmarny/navmenu/pkg/metric"
	"github.com/mchmarny/navmenu/pkg/outline"
)

const (
	// DefaultMaxBody caps the markup accepted by POST /sessions.
	DefaultMaxBody = 1 << 20 // 1 MB

	// DefaultMaxSessions caps the number of live sessions.
	DefaultMaxSessions = 1000
)

// Session operations and results, used as counter labels.
const (
	opCreate = "create"
	opClick  = "click"
	opKey    = "key"
	opDelete = "delete"

	resultOK       = "ok"
	resultInvalid  = "invalid"
	resultNotFound = "not_found"
)

// Service holds the outline, the config layer applied to every menu and
// the live sessions.
type Service struct {
	outline     *outline.Outline
	classes     outline.Classes
	layer       menu.Layer
	policy      *bluemonday.Policy
	toggles     metric.IncrementalCounter
	sessions    metric.IncrementalCounter
	log         *slog.Logger
	maxBody     int64
	maxSessions int

	mu    sync.Mutex
	seq   int
	store map[string]*session
}

// Option configures a Service.
type Option func(*Service)

// WithLayer applies l to every menu the service builds.
func WithLayer(l menu.Layer) Option {
	return func(s *Service) { s.layer = l }
}

// WithClasses sets the classes used to render the outline.
func WithClasses(c outline.Classes) Option {
	return func(s *Service) { s.classes = c }
}

// WithToggleCounter counts transitions of every menu the service builds.
func WithToggleCounter(c metric.IncrementalCounter) Option {
	return func(s *Service) {
		if c != nil {
			s.toggles = c
		}
	}
}

// WithSessionCounter counts session operations by op and result.
func WithSessionCounter(c metric.IncrementalCounter) Option {
	return func(s *Service) {
		if c != nil {
			s.sessions = c
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxBody caps the size of posted markup.
func WithMaxBody(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// New creates a preview service for o.
func New(o *outline.Outline, opts ...Option) *Service {
	s := &Service{
		outline:     o,
		classes:     outline.DefaultClasses(),
		policy:      Policy(),
		toggles:     metric.Nop{},
		sessions:    metric.Nop{},
		log:         slog.Default(),
		maxBody:     DefaultMaxBody,
		maxSessions: DefaultMaxSessions,
		store:       make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the sanitizer applied to posted markup. It keeps list and
// link structure plus the attributes the menu reads.
func Policy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("nav", "div", "ul", "ol", "li", "a", "span", "i", "button")
	p.AllowAttrs("class", "id", "hidden", "title", "aria-label").Globally()
	p.AllowDataAttributes()
	p.AllowStandardURLs()
	p.AllowRelativeURLs(true)
	p.AllowAttrs("href").OnElements("a")
	return p
}

// Register mounts the service routes on r.
func (s *Service) Register(r chi.Router) {
	r.Get("/", s.handlePage)
	r.Method(http.MethodGet, "/outline", s.outline.Handler())
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{session}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Get("/html", s.handleHTML)
			r.Delete("/", s.handleDelete)
			r.Post("/nodes/{node}/click", s.handleClick)
			r.Post("/nodes/{node}/key/{key}", s.handleKey)
		})
	})
}

// Ready reports whether the service has an outline to serve.
func (s *Service) Ready(_ context.Context) error {
	if s.outline == nil {
		return errors.New("no outline loaded")
	}
	return nil
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.store)
}

// handlePage renders the outline with its menu enhanced for ?path.
func (s *Service) handlePage(w http.ResponseWriter, r *http.Request) {
	doc := s.outline.Document(s.classes)
	menu.New(doc, s.menuOptions(r.URL.Query().Get("path"), s.layer)...)

	out, err := dom.Render(doc)
	if err != nil {
		s.log.Error("failed to render page", "error", err)
		writeError(w, http.StatusInternalServerError, "error, see logs for details")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

func (s *Service) menuOptions(path string, l menu.Layer) []menu.Option {
	opts := []menu.Option{
		menu.WithLayer(l),
		menu.WithLogger(s.log),
		menu.WithCounter(s.toggles),
	}
	if path != "" {
		opts = append(opts, menu.WithLocation(func() string { return path }))
	}
	return opts
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.sessions.Increment(opCreate, resultInvalid)
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("markup exceeds %d bytes", mbe.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read markup")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		s.sessions.Increment(opCreate, resultInvalid)
		writeError(w, http.StatusBadRequest, "markup is required")
		return
	}

	doc, err := html.Parse(bytes.NewReader(s.policy.SanitizeBytes(body)))
	if err != nil {
		s.sessions.Increment(opCreate, resultInvalid)
		writeError(w, http.StatusBadRequest, "failed to parse markup")
		return
	}

	s.mu.Lock()
	if len(s.store) >= s.maxSessions {
		s.mu.Unlock()
		s.sessions.Increment(opCreate, resultInvalid)
		writeError(w, http.StatusTooManyRequests, "too many sessions")
		return
	}
	s.seq++
	id := "s" + strconv.Itoa(s.seq)
	sess := &session{id: id, doc: doc}
	// held until the menu exists, so concurrent lookups wait for it
	sess.mu.Lock()
	s.store[id] = sess
	s.mu.Unlock()

	l := s.layer
	if l.ID == nil {
		prefix := "navmenu-" + id
		l.ID = &prefix
	}
	opts := append(s.menuOptions(r.URL.Query().Get("path"), l),
		menu.WithListener(menu.EventInitDone, sess.record),
		menu.WithListener(menu.EventToggleDone, sess.record))

	sess.menu = menu.New(doc, opts...)
	resp := sess.response(nil)
	sess.mu.Unlock()

	s.sessions.Increment(opCreate, resultOK)
	s.log.Info("session created", "session", id, "found", resp.Snapshot.Found, "nodes", len(resp.Snapshot.Nodes))

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r, "get")
	if sess == nil {
		return
	}

	sess.mu.Lock()
	resp := sess.response(nil)
	sess.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleHTML(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(w, r, "html")
	if sess == nil {
		return
	}

	sess.mu.Lock()
	target := sess.doc
	if root := sess.menu.Root(); root != nil {
		target = root.Element
	}
	out, err := dom.Render(target)
	sess.mu.Unlock()

	if err != nil {
		s.log.Error("failed to render session", "session", sess.id, "error", err)
		writeError(w, http.StatusInternalServerError, "error, see logs for details")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session")

	s.mu.Lock()
	_, ok := s.store[id]
	delete(s.store, id)
	s.mu.Unlock()

	if !ok {
		s.sessions.Increment(opDelete, resultNotFound)
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	s.sessions.Increment(opDelete, resultOK)
	s.log.Info("session deleted", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleClick(w http.ResponseWriter, r *http.Request) {
	s.input(w, r, opClick, func(m *menu.Menu, target *html.Node) menu.InputResult {
		return m.Click(target)
	})
}

// handleKey accepts key names ("Enter", "Space", "ArrowDown") or legacy
// key codes ("13").
func (s *Service) handleKey(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "key")
	key := menu.ParseKey(raw)
	if code, err := strconv.Atoi(raw); err == nil {
		key = menu.KeyFromCode(code)
	}

	s.input(w, r, opKey, func(m *menu.Menu, target *html.Node) menu.InputResult {
		return m.KeyDown(target, key)
	})
}

// input delivers an event to the control of the {node} sub-menu.
func (s *Service) input(w http.ResponseWriter, r *http.Request, op string, deliver func(*menu.Menu, *html.Node) menu.InputResult) {
	sess := s.lookup(w, r, op)
	if sess == nil {
		return
	}
	nodeID := chi.URLParam(r, "node")

	sess.mu.Lock()
	n := sess.menu.Node(nodeID)
	if n == nil || n.Control() == nil {
		sess.mu.Unlock()
		s.sessions.Increment(op, resultNotFound)
		writeError(w, http.StatusNotFound, fmt.Sprintf("sub-menu %q not found", nodeID))
		return
	}
	sess.events = sess.events[:0]
	res := deliver(sess.menu, n.Control().Button)
	resp := sess.response(&res)
	sess.mu.Unlock()

	s.sessions.Increment(op, resultOK)
	s.log.Debug("input delivered",
		"session", sess.id,
		"op", op,
		"id", nodeID,
		"handled", res.Handled,
		"events", len(resp.Events))

	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) lookup(w http.ResponseWriter, r *http.Request, op string) *session {
	id := chi.URLParam(r, "session")

	s.mu.Lock()
	sess := s.store[id]
	s.mu.Unlock()

	if sess == nil {
		s.sessions.Increment(op, resultNotFound)
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %q not found", id))
		return nil
	}
	return sess
}

func writeError(w http.ResponseWriter, status int, message string) {
	slog.Debug("handling error response",
		"status", status,
		"message", message,
	)
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

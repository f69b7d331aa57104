package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// ToggleCounterName counts sub-menu state transitions.
	ToggleCounterName = "navmenu_toggle_total"

	// SessionCounterName counts preview sessions by outcome.
	SessionCounterName = "navmenu_preview_sessions_total"
)

// IncrementalCounter is the one-method view of a labelled counter that
// instrumented code depends on.
type IncrementalCounter interface {
	Increment(val ...string)
}

type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

// Increment bumps the series identified by the label values, in the order
// the labels were declared.
func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

// Vec exposes the underlying collector, mostly for tests.
func (c *Counter) Vec() *prometheus.CounterVec {
	return c.vec
}

func NewCounterWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) *Counter {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels)

	reg.MustRegister(counter)

	return &Counter{
		Name: name,
		Help: help,
		vec:  counter,
	}
}

// NewToggleCounter registers the transition counter, labelled by the state
// a sub-menu moved into and what triggered it.
func NewToggleCounter(reg prometheus.Registerer) *Counter {
	return NewCounterWithRegistry(reg, ToggleCounterName,
		"Number of sub-menu open/close transitions.", "state", "trigger")
}

// NewSessionCounter registers the preview session counter, labelled by
// operation and result.
func NewSessionCounter(reg prometheus.Registerer) *Counter {
	return NewCounterWithRegistry(reg, SessionCounterName,
		"Number of preview session operations.", "op", "result")
}

// Nop discards increments.
type Nop struct{}

func (Nop) Increment(...string) {}

// GetHandlerForRegistry returns an HTTP handler for serving Prometheus metrics from a custom registry.
func GetHandlerForRegistry(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Package metric wraps the Prometheus counters the top bar reports.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// IncrementalCounter counts events by label values.
type IncrementalCounter interface {
	Increment(val ...string)
}

// Counter is a labeled Prometheus counter.
type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

// Increment adds one to the series identified by val.
func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

// NewCounterWithRegistry registers a counter with reg. It panics if the
// name is already registered.
func NewCounterWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) IncrementalCounter {
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

// Set holds the counters of the top bar flows.
type Set struct {
	Logout  IncrementalCounter
	Connect IncrementalCounter
	Mounts  IncrementalCounter
}

// NewSet registers the top bar counters with reg.
func NewSet(reg prometheus.Registerer) *Set {
	return &Set{
		Logout:  NewCounterWithRegistry(reg, "topbar_logout_total", "Logout attempts by result.", "result"),
		Connect: NewCounterWithRegistry(reg, "topbar_wallet_connect_total", "Wallet connect attempts by result.", "result"),
		Mounts:  NewCounterWithRegistry(reg, "topbar_mounts_total", "Top bar mounts by verification status.", "verified"),
	}
}

// GetHandlerForRegistry returns an HTTP handler for serving Prometheus metrics from a custom registry.
func GetHandlerForRegistry(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

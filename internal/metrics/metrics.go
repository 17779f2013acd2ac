package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks registry lookups by outcome and their latency.
type Metrics struct {
	registry       *prometheus.Registry
	Lookups        *prometheus.CounterVec
	LookupDuration prometheus.Histogram
	Transitions    *prometheus.CounterVec
}

// New creates a Metrics instance on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cnpjlookup_lookups_total",
			Help: "Total number of registry lookups by outcome",
		}, []string{"outcome"}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cnpjlookup_lookup_duration_seconds",
			Help:    "Duration of registry lookups, including failed ones",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cnpjlookup_state_transitions_total",
			Help: "Query state transitions by target state",
		}, []string{"state"}),
	}
	reg.MustRegister(m.Lookups, m.LookupDuration, m.Transitions)
	return m
}

// ObserveLookup records one lookup outcome.
func (m *Metrics) ObserveLookup(outcome string, elapsed time.Duration) {
	m.Lookups.WithLabelValues(outcome).Inc()
	m.LookupDuration.Observe(elapsed.Seconds())
}

// IncrementTransition records entry into state.
func (m *Metrics) IncrementTransition(state string) {
	m.Transitions.WithLabelValues(state).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return r
}

// Serve listens on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics: listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics: serve: %w", err)
	}
	return nil
}

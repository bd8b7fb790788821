// Package metrics exposes classification counters over Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onelog/onelog-go/pkg/onelog"
)

const namespace = "onelog"

// DefaultMaxSystems is the default number of distinct level/system pairs
// tracked before further pairs are counted under OverflowLabel.
const DefaultMaxSystems = 64

// OverflowLabel replaces level and system values once the limit is reached.
const OverflowLabel = "other"

// Option configures Metrics.
type Option func(*Metrics)

// WithMaxSystems sets how many distinct level/system pairs get their own
// series. Values below 1 keep the default.
func WithMaxSystems(n int) Option {
	return func(m *Metrics) {
		if n > 0 {
			m.maxSystems = n
		}
	}
}

// Metrics holds the collectors for one process.
type Metrics struct {
	records  *prometheus.CounterVec
	systems  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration prometheus.Summary

	// level and system come from log content; seen bounds their cardinality.
	mu         sync.Mutex
	seen       map[[2]string]struct{}
	maxSystems int
}

// New creates the collectors and registers them with reg.
// It panics if registration fails, like prometheus.MustRegister.
func New(reg prometheus.Registerer, opts ...Option) *Metrics {
	m := &Metrics{
		seen:       make(map[[2]string]struct{}),
		maxSystems: DefaultMaxSystems,
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Number of classified lines by record kind",
		}, []string{"kind"}),
		systems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "system_records_total",
			Help:      "Number of event and status records by level and system",
		}, []string{"level", "system"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of errors reported while reading logs, by operation",
		}, []string{"op"}),
		duration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "classify_duration_seconds",
			Help:       "Time spent classifying a single line",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	reg.MustRegister(m.records, m.systems, m.errors, m.duration)

	// Expose every kind from the start so absent kinds read as zero.
	for _, k := range []onelog.Kind{onelog.KindEvent, onelog.KindStatus, onelog.KindOther} {
		m.records.WithLabelValues(k.String())
	}
	return m
}

// Instrument wraps cl so every classification is counted and timed.
func (m *Metrics) Instrument(cl onelog.Classifier) onelog.Classifier {
	return onelog.ClassifierFunc(func(line string) onelog.Record {
		start := time.Now()
		rec := cl.Classify(line)
		m.duration.Observe(time.Since(start).Seconds())
		m.Observe(rec)
		return rec
	})
}

// Observe counts one record.
func (m *Metrics) Observe(rec onelog.Record) {
	if rec == nil {
		return
	}
	m.records.WithLabelValues(rec.Kind().String()).Inc()
	if h, ok := onelog.HeaderOf(rec); ok {
		m.systems.WithLabelValues(m.systemLabels(h.Level, h.System)...).Inc()
	}
}

// systemLabels returns the label values for a level/system pair. Invalid
// UTF-8 is replaced, and pairs beyond the limit collapse to OverflowLabel.
func (m *Metrics) systemLabels(level, system string) []string {
	key := [2]string{
		strings.ToValidUTF8(level, "\uFFFD"),
		strings.ToValidUTF8(system, "\uFFFD"),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[key]; !ok {
		if len(m.seen) >= m.maxSystems {
			return []string{OverflowLabel, OverflowLabel}
		}
		m.seen[key] = struct{}{}
	}
	return key[:]
}

// ObserveError counts one error, labelled by the failing watch operation
// or "read" for anything else.
func (m *Metrics) ObserveError(err error) {
	if err == nil {
		return
	}
	op := "read"
	var watchErr *onelog.WatchError
	if errors.As(err, &watchErr) {
		op = string(watchErr.Op)
	}
	m.errors.WithLabelValues(op).Inc()
}

// Server serves /metrics and /healthz.
type Server struct {
	server *http.Server
}

// NewServer returns a server exposing the metrics gathered by g on addr.
func NewServer(addr string, g prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Serve listens and serves until Shutdown is called.
// It returns nil after a clean shutdown.
func (s *Server) Serve() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }

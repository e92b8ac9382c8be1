package observability

import (
	"time"

	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics of the client.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	backendDuration  *prometheus.HistogramVec
	backendErrors    *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	cartMutations    *prometheus.CounterVec
	sessionTeardowns *prometheus.CounterVec
	orderPolls       *prometheus.CounterVec
	gateDecisions    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// client metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pizzaria_backend_request_duration_seconds",
				Help:    "Duration of backend calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		backendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizzaria_backend_errors_total",
				Help: "Total failed backend calls.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizzaria_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizzaria_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		cartMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizzaria_cart_mutations_total",
				Help: "Total persisted cart mutations.",
			},
			[]string{"op"},
		),
		sessionTeardowns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizzaria_session_teardowns_total",
				Help: "Total session teardowns by reason.",
			},
			[]string{"reason"},
		),
		orderPolls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizzaria_order_polls_total",
				Help: "Total order list fetches by result.",
			},
			[]string{"result"},
		),
		gateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizzaria_gate_decisions_total",
				Help: "Total access gate decisions by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// RecordBackendDuration records the duration of a backend call.
func (m *Metrics) RecordBackendDuration(operation string, d time.Duration) {
	m.backendDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrBackendError increments the backend error counter.
func (m *Metrics) IncrBackendError(operation string) {
	m.backendErrors.WithLabelValues(operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrCartMutation counts one persisted cart mutation (add, replace, clear, ...).
func (m *Metrics) IncrCartMutation(op string) {
	m.cartMutations.WithLabelValues(op).Inc()
}

// IncrSessionTeardown counts a session teardown (logout, expired, tenant_mismatch, restore_failed).
func (m *Metrics) IncrSessionTeardown(reason string) {
	m.sessionTeardowns.WithLabelValues(reason).Inc()
}

// IncrOrderPoll counts an order list fetch with result "success" or "error".
func (m *Metrics) IncrOrderPoll(result string) {
	m.orderPolls.WithLabelValues(result).Inc()
}

// IncrGateDecision counts one access gate evaluation.
func (m *Metrics) IncrGateDecision(outcome string) {
	m.gateDecisions.WithLabelValues(outcome).Inc()
}

// SessionTeardowns returns the cumulative teardowns for reason.
func (m *Metrics) SessionTeardowns(reason string) float64 {
	return getCounterValue(m.sessionTeardowns, reason)
}

// CartMutations returns the cumulative mutations for op.
func (m *Metrics) CartMutations(op string) float64 {
	return getCounterValue(m.cartMutations, op)
}

// GetClientSnapshot returns a snapshot suitable for GET /v1/metrics/client.
func (m *Metrics) GetClientSnapshot() *domain.ClientMetrics {
	cartOps := []string{"add", "replace", "clear", "set_quantity", "remove"}
	var mutations float64
	for _, op := range cartOps {
		mutations += getCounterValue(m.cartMutations, op)
	}

	var teardowns float64
	for _, reason := range []string{"logout", "expired", "tenant_mismatch", "restore_failed"} {
		teardowns += getCounterValue(m.sessionTeardowns, reason)
	}

	hits := sumCounterVec(m.cacheHits)
	misses := sumCounterVec(m.cacheMisses)
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.ClientMetrics{
		CartMutations:     mutations,
		SessionTeardowns:  teardowns,
		TenantMismatches:  getCounterValue(m.sessionTeardowns, "tenant_mismatch"),
		OrderPolls:        getCounterValue(m.orderPolls, "success") + getCounterValue(m.orderPolls, "error"),
		OrderPollFailures: getCounterValue(m.orderPolls, "error"),
		BackendErrors:     sumCounterVec(m.backendErrors),
		CacheHitRate:      hitRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounterVec adds up every child of a CounterVec.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var total float64
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}

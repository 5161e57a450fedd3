package observability

import (
	"time"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	externalErrors     *prometheus.CounterVec
	refetchRounds      *prometheus.CounterVec
	profileWrites      *prometheus.CounterVec
	transfers          *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finboard_operation_duration_seconds",
				Help:    "Duration of operations by name.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finboard_source_errors_total",
				Help: "Total errors from dashboard data sources, by resource.",
			},
			[]string{"resource"},
		),
		refetchRounds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finboard_dashboard_rounds_total",
				Help: "Dashboard fetch rounds by outcome (applied, failed, discarded).",
			},
			[]string{"outcome"},
		),
		profileWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finboard_profile_writes_total",
				Help: "Profile writes by outcome (success, error, noop).",
			},
			[]string{"outcome"},
		),
		transfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finboard_transfers_total",
				Help: "Quick transfers by status (prepared, completed, cancelled, rejected).",
			},
			[]string{"status"},
		),
		validationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finboard_validation_failures_total",
				Help: "Rejected form submissions by form.",
			},
			[]string{"form"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the data source error counter.
func (m *Metrics) IncrExternalError(resource string) {
	m.externalErrors.WithLabelValues(resource).Inc()
}

// IncrRound counts a finished dashboard round.
func (m *Metrics) IncrRound(outcome string) {
	m.refetchRounds.WithLabelValues(outcome).Inc()
}

// IncrProfileWrite counts a profile write attempt.
func (m *Metrics) IncrProfileWrite(outcome string) {
	m.profileWrites.WithLabelValues(outcome).Inc()
}

// IncrTransfer counts a transfer state change.
func (m *Metrics) IncrTransfer(status string) {
	m.transfers.WithLabelValues(status).Inc()
}

// IncrValidationFailure counts a rejected form submission.
func (m *Metrics) IncrValidationFailure(form string) {
	m.validationFailures.WithLabelValues(form).Inc()
}

// Snapshot returns current counter values for GET /v1/metrics/dashboard.
func (m *Metrics) Snapshot() *domain.DashboardMetrics {
	applied := getCounterValue(m.refetchRounds, "applied")
	failed := getCounterValue(m.refetchRounds, "failed")
	discarded := getCounterValue(m.refetchRounds, "discarded")

	errorRate := float64(0)
	if applied+failed > 0 {
		errorRate = failed / (applied + failed)
	}

	writeErrors := getCounterValue(m.profileWrites, "error")

	return &domain.DashboardMetrics{
		RoundsApplied:      int64(applied),
		RoundsFailed:       int64(failed),
		RoundsDiscarded:    int64(discarded),
		RoundErrorRate:     errorRate,
		ProfileWrites:      int64(getCounterValue(m.profileWrites, "success") + writeErrors),
		ProfileWriteErrors: int64(writeErrors),
		TransfersCompleted: int64(getCounterValue(m.transfers, "completed")),
		TransfersCancelled: int64(getCounterValue(m.transfers, "cancelled")),
		ValidationFailures: int64(getCounterValue(m.validationFailures, "settings_profile") +
			getCounterValue(m.validationFailures, "settings_security") +
			getCounterValue(m.validationFailures, "transfer")),
		Period: "all_time",
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

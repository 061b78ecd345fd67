package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the records module.
// Tracks record creation, lifecycle transitions, rejected requests by
// invariant kind, and engine path durations.
type Metrics struct {
	RecordsCreated       *prometheus.CounterVec
	LifecycleTransitions *prometheus.CounterVec
	InvariantViolations  *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
}

// New creates a Metrics instance with all records metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_records_created_total",
			Help: "Total number of records created by kind",
		}, []string{"kind"}),
		LifecycleTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_user_lifecycle_transitions_total",
			Help: "Total number of applied user activation changes",
		}, []string{"transition"}),
		InvariantViolations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_invariant_violations_total",
			Help: "Requests rejected by the consistency engine, by error kind",
		}, []string{"kind"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinic_records_operation_duration_seconds",
			Help:    "Duration of record service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated(kind string) {
	m.RecordsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementTransition(transition string) {
	m.LifecycleTransitions.WithLabelValues(transition).Inc()
}

// IncrementViolation records a rejected request. kind is the error code
// (not_found, reference_mismatch, already_exists, invalid_transition).
func (m *Metrics) IncrementViolation(kind string) {
	m.InvariantViolations.WithLabelValues(kind).Inc()
}

// ObserveOperation records the duration of a service operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

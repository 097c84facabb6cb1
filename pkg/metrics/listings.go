package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ListingMetrics records engine operation outcomes and concurrency retries.
type ListingMetrics struct {
	operations *prometheus.CounterVec
	casRetries *prometheus.CounterVec
}

// NewListingMetrics registers the listing metrics on the provided registerer.
func NewListingMetrics(reg prometheus.Registerer) *ListingMetrics {
	if reg == nil {
		return &ListingMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_operations_total",
		Help: "Listing engine operations by outcome.",
	}, []string{"kind", "op", "outcome"})
	casRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_version_conflicts_total",
		Help: "Conditional update version conflicts that triggered a retry.",
	}, []string{"kind", "op"})
	reg.MustRegister(operations, casRetries)
	return &ListingMetrics{
		operations: operations,
		casRetries: casRetries,
	}
}

// IncOperation counts one completed operation with the given outcome.
func (m *ListingMetrics) IncOperation(kind, op, outcome string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(normalizeLabel(kind), normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

// IncVersionConflict counts a stale-version retry for the operation.
func (m *ListingMetrics) IncVersionConflict(kind, op string) {
	if m == nil || m.casRetries == nil {
		return
	}
	m.casRetries.WithLabelValues(normalizeLabel(kind), normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

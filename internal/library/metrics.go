package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// OUTCOME_REJECTED is an operation that failed before anything was sent.
	OUTCOME_REJECTED = "REJECTED"
	// OUTCOME_ABANDONED is reported to a caller that left while its
	// operation was still queued or running.
	OUTCOME_ABANDONED = "ABANDONED"
)

type operationMetrics struct {
	operations *prometheus.CounterVec
}

func newOperationMetrics(reg prometheus.Registerer) *operationMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &operationMetrics{
		operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "swapdesk",
			Name:      "operations_total",
			Help:      "Wallet operations by type and outcome.",
		}, []string{"operation", "outcome"}),
	}
}

func (m *operationMetrics) record(operation string, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

package transaction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type confirmMetrics struct {
	polls    prometheus.Histogram
	outcomes *prometheus.CounterVec
}

func newConfirmMetrics(reg prometheus.Registerer) *confirmMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &confirmMetrics{
		polls: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "swapdesk",
			Name:      "confirmation_polls",
			Help:      "Number of getTransaction polls needed to reach a final state.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 20},
		}),
		outcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "swapdesk",
			Name:      "confirmation_outcomes_total",
			Help:      "Confirmation results by final state.",
		}, []string{"state"}),
	}
}

func (m *confirmMetrics) observe(polls int, state State) {
	if m == nil {
		return
	}
	m.polls.Observe(float64(polls))
	m.outcomes.WithLabelValues(state.String()).Inc()
}

package achievement

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the achievement engine's Prometheus instruments.
type Metrics struct {
	Passes            *prometheus.CounterVec
	PassDuration      prometheus.Histogram
	Awards            prometheus.Counter
	PredicateFailures *prometheus.CounterVec
	PendingAwards     prometheus.Gauge
}

// NewMetrics creates the instruments and registers them on reg when reg is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hunterlog",
			Name:      "achievement_passes_total",
			Help:      "Evaluation passes by outcome.",
		}, []string{"outcome"}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hunterlog",
			Name:      "achievement_pass_duration_seconds",
			Help:      "Wall time of one evaluation pass.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		Awards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hunterlog",
			Name:      "achievements_awarded_total",
			Help:      "Achievements newly awarded.",
		}),
		PredicateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hunterlog",
			Name:      "predicate_failures_total",
			Help:      "Predicates that could not be evaluated, by reason.",
		}, []string{"reason"}),
		PendingAwards: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hunterlog",
			Name:      "pending_awards",
			Help:      "Awards waiting in the retry outbox.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Passes, m.PassDuration, m.Awards, m.PredicateFailures, m.PendingAwards)
	}
	return m
}

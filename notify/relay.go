package notify

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics are the notification path's Prometheus instruments.
type Metrics struct {
	Relayed prometheus.Counter
	Dropped *prometheus.CounterVec
}

// NewMetrics creates the instruments and registers them on reg when reg is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Relayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hunterlog",
			Name:      "notifications_relayed_total",
			Help:      "Notifications handed to the presenter channel.",
		}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hunterlog",
			Name:      "notifications_dropped_total",
			Help:      "Notifications that could not be delivered, by reason.",
		}, []string{"reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.Relayed, m.Dropped)
	}
	return m
}

// Relay drains a MemoryQueue into dst in FIFO order, retrying each
// notification a few times before dropping it.
type Relay struct {
	src     *MemoryQueue
	dst     Queue
	tries   uint
	delay   time.Duration
	metrics *Metrics
	logger  *zap.Logger
}

func NewRelay(src *MemoryQueue, dst Queue, metrics *Metrics, logger *zap.Logger) *Relay {
	return &Relay{src: src, dst: dst, tries: 3, delay: 50 * time.Millisecond, metrics: metrics, logger: logger}
}

// Run forwards until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if n := len(r.src.C()); n > 0 {
				r.logger.Warn("notifications left undelivered at shutdown", zap.Int("count", n))
			}
			return
		case n := <-r.src.C():
			r.forward(ctx, n)
		}
	}
}

func (r *Relay) forward(ctx context.Context, n Notification) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.delay
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, r.dst.Enqueue(ctx, n)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(r.tries))
	if err != nil {
		r.metrics.Dropped.WithLabelValues("publish").Inc()
		r.logger.Warn("notification dropped",
			zap.String("title", n.Title), zap.Int("achievement_id", n.AchievementID), zap.Error(err))
		return
	}
	r.metrics.Relayed.Inc()
}

// Package notify turns awarded achievement IDs into presenter notifications.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kasuganosora/hunterlog/achievement"
	"github.com/kasuganosora/hunterlog/cache"
	"github.com/kasuganosora/hunterlog/config"
	"github.com/kasuganosora/hunterlog/locale"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Channel is the pub/sub channel notifications are published on.
const Channel = "achievements:notifications"

// ErrQueueFull is returned by MemoryQueue.Enqueue when the presenter lags.
var ErrQueueFull = errors.New("notification queue full")

// Notification is one presenter request.
type Notification struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	Rank           string `json:"rank,omitempty"`
	Icon           string `json:"icon"`
	Appearance     string `json:"appearance"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	AchievementID  int    `json:"achievement_id,omitempty"`
	Summary        bool   `json:"summary,omitempty"`
}

// Queue is the presenter's FIFO. Enqueue is the only operation callers use.
type Queue interface {
	Enqueue(ctx context.Context, n Notification) error
}

var rankColors = map[achievement.Rank]string{
	achievement.RankNone:     "#ffffff",
	achievement.RankBronze:   "#cd7f32",
	achievement.RankSilver:   "#c0c0c0",
	achievement.RankGold:     "#ffd700",
	achievement.RankPlatinum: "#e5e4e2",
}

// Appearance is the colour a rank is shown in.
func Appearance(r achievement.Rank) string {
	if c, ok := rankColors[r]; ok {
		return c
	}
	return rankColors[achievement.RankNone]
}

// Icon is the asset path of a rank's icon.
func Icon(r achievement.Rank) string {
	return "icons/rank_" + strings.ToLower(r.String()) + ".png"
}

// Dispatcher applies the burst policy: the first Burst awards are shown one
// by one and anything beyond gets a single summary.
type Dispatcher struct {
	catalog *achievement.Catalog
	queue   Queue
	tr      *locale.Translator
	burst   int
	timeout time.Duration
	logger  *zap.Logger
}

func NewDispatcher(catalog *achievement.Catalog, queue Queue, tr *locale.Translator, cfg config.AchievementsConfig, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		catalog: catalog,
		queue:   queue,
		tr:      tr,
		burst:   cfg.NotifyBurst,
		timeout: cfg.NotifyTimeout,
		logger:  logger,
	}
	if d.burst <= 0 {
		d.burst = 5
	}
	if d.timeout <= 0 {
		d.timeout = 5 * time.Second
	}
	return d
}

// Build returns the notifications for ids, which must be in catalog order.
// IDs missing from the catalog are logged and dropped before the burst is
// counted.
func (d *Dispatcher) Build(ids []int) []Notification {
	var found []achievement.Achievement
	for _, id := range ids {
		a, ok := d.catalog.Get(id)
		if !ok {
			d.logger.Warn("awarded achievement missing from catalog", zap.Int("achievement_id", id))
			continue
		}
		found = append(found, a)
	}

	secs := int(d.timeout / time.Second)
	out := make([]Notification, 0, min(len(found), d.burst)+1)
	for i, a := range found {
		if i == d.burst {
			break
		}
		out = append(out, Notification{
			Title:          a.Title,
			Content:        a.Objective,
			Rank:           d.tr.RankName(a.Rank.String()),
			Icon:           Icon(a.Rank),
			Appearance:     Appearance(a.Rank),
			TimeoutSeconds: secs,
			AchievementID:  a.ID,
		})
	}
	if left := len(found) - d.burst; left > 0 {
		out = append(out, Notification{
			Title:          d.tr.SummaryTitle(),
			Content:        d.tr.SummaryContent(left),
			Icon:           Icon(achievement.RankNone),
			Appearance:     Appearance(achievement.RankNone),
			TimeoutSeconds: secs,
			Summary:        true,
		})
	}
	return out
}

// Notify builds and enqueues the notifications for ids.
func (d *Dispatcher) Notify(ctx context.Context, ids []int) error {
	var errs []error
	for _, n := range d.Build(ids) {
		if err := d.queue.Enqueue(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("enqueue %q: %w", n.Title, err))
		}
	}
	return errors.Join(errs...)
}

// MemoryQueue is a bounded in-process FIFO. Enqueue never blocks, so a pass
// does not wait on the presenter or the broker; a full queue drops and counts.
type MemoryQueue struct {
	ch      chan Notification
	dropped atomic.Int64
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{ch: make(chan Notification, size)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, n Notification) error {
	select {
	case q.ch <- n:
		return nil
	default:
		q.dropped.Inc()
		return ErrQueueFull
	}
}

// C is the consumer side of the queue.
func (q *MemoryQueue) C() <-chan Notification { return q.ch }

// Dropped is how many notifications were refused because the queue was full.
func (q *MemoryQueue) Dropped() int64 { return q.dropped.Load() }

// PubSubQueue publishes notifications as JSON on Channel. Delivery is a
// broadcast: a notification published while no presenter is subscribed is
// not replayed. The achievement log stays the durable record.
type PubSubQueue struct {
	ps cache.PubSub
}

func NewPubSubQueue(ps cache.PubSub) *PubSubQueue { return &PubSubQueue{ps: ps} }

func (q *PubSubQueue) Enqueue(ctx context.Context, n Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return q.ps.Publish(ctx, Channel, string(b))
}

// Decode parses a payload published by PubSubQueue.
func Decode(payload string) (Notification, error) {
	var n Notification
	err := json.Unmarshal([]byte(payload), &n)
	return n, err
}

package achievement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/kasuganosora/hunterlog/model"
	"go.uber.org/zap"
)

// Ledger is the durable award store.
type Ledger interface {
	GetPlayerAchievementIDList(ctx context.Context) ([]int, error)
	StoreAchievement(ctx context.Context, id int, awardedAt time.Time) error
	AddPendingAward(ctx context.Context, id int, awardedAt time.Time, cause error) error
	PendingAwards(ctx context.Context) ([]model.PendingAward, error)
	ClearPendingAward(ctx context.Context, id int) error
}

// RetryPolicy bounds the inline ledger write retries.
type RetryPolicy struct {
	MaxTries  uint
	BaseDelay time.Duration
}

// Tracker owns the awarded set. An ID enters the set once and never leaves.
type Tracker struct {
	mu      sync.Mutex
	awarded IDSet

	ledger  Ledger
	retry   RetryPolicy
	now     func() time.Time
	metrics *Metrics
	logger  *zap.Logger
}

func NewTracker(ledger Ledger, retry RetryPolicy, metrics *Metrics, logger *zap.Logger) *Tracker {
	if retry.MaxTries == 0 {
		retry.MaxTries = 1
	}
	return &Tracker{
		awarded: make(IDSet),
		ledger:  ledger,
		retry:   retry,
		now:     time.Now,
		metrics: metrics,
		logger:  logger,
	}
}

// Seed loads the ledger and the retry outbox into the awarded set. IDs whose
// write is still pending count as awarded.
func (t *Tracker) Seed(ctx context.Context) error {
	ids, err := t.ledger.GetPlayerAchievementIDList(ctx)
	if err != nil {
		return fmt.Errorf("load award ledger: %w", err)
	}
	pending, err := t.ledger.PendingAwards(ctx)
	if err != nil {
		return fmt.Errorf("load pending awards: %w", err)
	}

	t.mu.Lock()
	for _, id := range ids {
		t.awarded[id] = struct{}{}
	}
	for _, p := range pending {
		t.awarded[p.AchievementID] = struct{}{}
	}
	n := len(t.awarded)
	t.mu.Unlock()

	t.metrics.PendingAwards.Set(float64(len(pending)))
	t.logger.Info("award tracker seeded", zap.Int("awarded", n), zap.Int("pending", len(pending)))
	return nil
}

func (t *Tracker) IsAwarded(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.awarded.Has(id)
}

// Awarded returns a copy of the awarded set.
func (t *Tracker) Awarded() IDSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make(IDSet, len(t.awarded))
	for id := range t.awarded {
		cp[id] = struct{}{}
	}
	return cp
}

// RewardAchievement awards id unless it already is. It reports whether this
// call did the awarding. A ledger failure does not undo the award: the ID is
// parked in the outbox for RetryPending, and the error is only returned when
// the outbox write fails as well.
func (t *Tracker) RewardAchievement(ctx context.Context, id int) (bool, error) {
	t.mu.Lock()
	if t.awarded.Has(id) {
		t.mu.Unlock()
		t.logger.Debug("achievement already awarded", zap.Int("achievement_id", id))
		return false, nil
	}
	t.awarded[id] = struct{}{}
	t.mu.Unlock()

	t.metrics.Awards.Inc()
	at := t.now().UTC()
	// The ID is already in the set, so its record must outlive the caller.
	ctx = context.WithoutCancel(ctx)
	if err := t.store(ctx, id, at); err != nil {
		t.logger.Warn("award ledger write failed, queued for retry",
			zap.Int("achievement_id", id), zap.Error(err))
		if perr := t.ledger.AddPendingAward(ctx, id, at, err); perr != nil {
			t.logger.Error("award outbox write failed",
				zap.Int("achievement_id", id), zap.Error(perr))
			return true, fmt.Errorf("persist award %d: %w", id, perr)
		}
		t.metrics.PendingAwards.Inc()
	}
	return true, nil
}

func (t *Tracker) store(ctx context.Context, id int, at time.Time) error {
	b := backoff.NewExponentialBackOff()
	if t.retry.BaseDelay > 0 {
		b.InitialInterval = t.retry.BaseDelay
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, t.ledger.StoreAchievement(ctx, id, at)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(t.retry.MaxTries))
	return err
}

// RetryPending drains the outbox, returning how many awards were written.
func (t *Tracker) RetryPending(ctx context.Context) (int, error) {
	pending, err := t.ledger.PendingAwards(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending awards: %w", err)
	}
	done := 0
	for _, p := range pending {
		if err := t.ledger.StoreAchievement(ctx, p.AchievementID, p.AwardedAt); err != nil {
			t.logger.Warn("pending award retry failed",
				zap.Int("achievement_id", p.AchievementID), zap.Int("attempts", p.Attempts), zap.Error(err))
			if perr := t.ledger.AddPendingAward(ctx, p.AchievementID, p.AwardedAt, err); perr != nil {
				t.logger.Warn("bump pending award failed", zap.Int("achievement_id", p.AchievementID), zap.Error(perr))
			}
			continue
		}
		if err := t.ledger.ClearPendingAward(ctx, p.AchievementID); err != nil {
			t.logger.Warn("clear pending award failed", zap.Int("achievement_id", p.AchievementID), zap.Error(err))
			continue
		}
		done++
	}
	t.metrics.PendingAwards.Set(float64(len(pending) - done))
	if done > 0 {
		t.logger.Info("pending awards written", zap.Int("count", done))
	}
	return done, nil
}

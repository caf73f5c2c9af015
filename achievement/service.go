package achievement

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/hunterlog/cache"
	"github.com/kasuganosora/hunterlog/config"
	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/hook"
	"github.com/kasuganosora/hunterlog/live"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ErrUnknownAchievement is returned for IDs missing from the catalog.
var ErrUnknownAchievement = errors.New("unknown achievement")

const passLockKey = "achievements:pass"

// HistorySource supplies pass snapshots and award times.
type HistorySource interface {
	Snapshot(ctx context.Context) (*history.Snapshot, error)
	AwardTimes(ctx context.Context) (map[int]time.Time, error)
}

// Notifier receives each batch of newly awarded IDs in ascending order.
type Notifier interface {
	Notify(ctx context.Context, ids []int) error
}

// Deps are the collaborators of a Service.
type Deps struct {
	History   HistorySource
	Live      live.Source
	Evaluator *Evaluator
	Tracker   *Tracker
	Notifier  Notifier
	Cache     cache.Cache
	Metrics   *Metrics
	Logger    *zap.Logger
}

// Service runs evaluation passes and exposes achievement progress.
type Service struct {
	cfg config.AchievementsConfig
	Deps

	hooks    *hook.Center
	passes   atomic.Int64
	dirty    atomic.Bool
	lastPass atomic.Time
	wg       sync.WaitGroup
}

func NewService(cfg config.AchievementsConfig, deps Deps) *Service {
	return &Service{cfg: cfg, Deps: deps}
}

// Enabled reports the achievements.enabled gate.
func (s *Service) Enabled() bool { return s.cfg.Enabled }

// Catalog is the catalog the evaluator runs over.
func (s *Service) Catalog() *Catalog { return s.Evaluator.Catalog() }

// RegisterHooks runs a pass after every completed quest or live update and makes the
// service fire OnAchievementAwarded on hc.
func (s *Service) RegisterHooks(hc *hook.Center) {
	s.hooks = hc
	hc.Register(hook.OnQuestComplete, 100, "achievements", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		s.CheckAsync()
		return data, nil
	})
	hc.Register(hook.OnLiveStateUpdate, 100, "achievements", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		s.CheckAsync()
		return data, nil
	})
}

// CheckAsync starts a pass in the background.
func (s *Service) CheckAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.lockTTL())
		defer cancel()
		if _, err := s.CheckForAchievements(ctx); err != nil {
			s.Logger.Error("achievement pass failed", zap.Error(err))
		}
	}()
}

// Wait blocks until background passes started so far have finished.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) lockTTL() time.Duration {
	if s.cfg.PassLockTTL > 0 {
		return s.cfg.PassLockTTL
	}
	return 30 * time.Second
}

// CheckForAchievements runs an evaluation pass and returns the IDs it
// awarded, ascending. It does nothing when achievements are disabled. When
// another pass holds the lock the call marks the engine dirty and returns;
// the holder then runs again after releasing the lock.
func (s *Service) CheckForAchievements(ctx context.Context) ([]int, error) {
	if !s.cfg.Enabled {
		return nil, nil
	}

	var all []int
	for {
		awarded, ran, err := s.lockedPass(ctx)
		all = append(all, awarded...)
		if err != nil {
			return all, err
		}
		if !ran || !s.dirty.Load() || ctx.Err() != nil {
			break
		}
		s.Logger.Debug("achievement pass requested while running, rerunning")
	}
	slices.Sort(all)
	return all, nil
}

// lockedPass runs one pass under the single-flight lock. ran is false when
// another holder had the lock.
func (s *Service) lockedPass(ctx context.Context) (awarded []int, ran bool, err error) {
	token := uuid.NewString()
	locked, err := s.Cache.SetNX(ctx, passLockKey, token, s.lockTTL())
	if err == nil && !locked {
		s.dirty.Store(true)
		// The holder may have released between the two calls.
		locked, err = s.Cache.SetNX(ctx, passLockKey, token, s.lockTTL())
		if err == nil && !locked {
			s.Metrics.Passes.WithLabelValues("skipped").Inc()
			s.Logger.Debug("achievement pass already running")
			return nil, false, nil
		}
	}
	if err != nil {
		s.Logger.Warn("pass lock unavailable, running unlocked", zap.Error(err))
	} else {
		defer func() {
			if _, err := s.Cache.CompareAndDel(context.WithoutCancel(ctx), passLockKey, token); err != nil {
				s.Logger.Warn("release pass lock", zap.Error(err))
			}
		}()
	}
	s.dirty.Store(false)

	start := time.Now()
	awarded, err = s.pass(ctx)
	s.Metrics.PassDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.Metrics.Passes.WithLabelValues("error").Inc()
		return awarded, true, err
	}
	s.Metrics.Passes.WithLabelValues("ok").Inc()
	s.passes.Inc()
	s.lastPass.Store(start)

	s.Logger.Info("achievement pass done",
		zap.Int("awarded", len(awarded)),
		zap.Duration("elapsed", time.Since(start)))
	return awarded, true, nil
}

func (s *Service) pass(ctx context.Context) ([]int, error) {
	snap, err := s.History.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot history: %w", err)
	}
	in := &Input{History: snap, Live: s.Live.Live()}

	satisfied, err := s.Evaluator.Evaluate(ctx, in, s.Tracker.Awarded())
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	var awarded []int
	for _, id := range satisfied {
		if ctx.Err() != nil {
			// The rest stay unawarded and are picked up by the next pass.
			break
		}
		ok, err := s.Tracker.RewardAchievement(ctx, id)
		if err != nil {
			s.Logger.Error("reward achievement", zap.Int("achievement_id", id), zap.Error(err))
		}
		if ok {
			awarded = append(awarded, id)
		}
	}
	s.announce(context.WithoutCancel(ctx), awarded)
	return awarded, nil
}

func (s *Service) announce(ctx context.Context, ids []int) {
	if len(ids) == 0 {
		return
	}
	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, ids); err != nil {
			s.Logger.Error("notify awards", zap.Ints("achievement_ids", ids), zap.Error(err))
		}
	}
	if s.hooks == nil {
		return
	}
	for _, id := range ids {
		a, _ := s.Catalog().Get(id)
		_, _ = s.hooks.Trigger(ctx, hook.OnAchievementAwarded, hook.AchievementAwarded{ID: id, Title: a.Title})
	}
}

// Grant awards id regardless of its rule. It reports false when id was
// already awarded.
func (s *Service) Grant(ctx context.Context, id int) (bool, error) {
	if _, ok := s.Catalog().Get(id); !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownAchievement, id)
	}
	ok, err := s.Tracker.RewardAchievement(ctx, id)
	if ok {
		s.announce(ctx, []int{id})
	}
	return ok, err
}

// RetryPending drains the award outbox.
func (s *Service) RetryPending(ctx context.Context) (int, error) {
	return s.Tracker.RetryPending(ctx)
}

// Progress lists every achievement with its completion date.
func (s *Service) Progress(ctx context.Context) ([]Entry, error) {
	times, err := s.History.AwardTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load award times: %w", err)
	}
	return s.Catalog().Progress(times), nil
}

// Completed lists only awarded achievements.
func (s *Service) Completed(ctx context.Context) ([]Entry, error) {
	p, err := s.Progress(ctx)
	if err != nil {
		return nil, err
	}
	return Completed(p), nil
}

// Get returns the progress entry for one achievement.
func (s *Service) Get(ctx context.Context, id int) (Entry, error) {
	if _, ok := s.Catalog().Get(id); !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownAchievement, id)
	}
	p, err := s.Progress(ctx)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range p {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %d", ErrUnknownAchievement, id)
}

// Stats summarises the engine for the admin API.
type Stats struct {
	Enabled  bool      `json:"enabled"`
	Catalog  int       `json:"catalog"`
	Awarded  int       `json:"awarded"`
	Passes   int64     `json:"passes"`
	LastPass time.Time `json:"last_pass"`
}

func (s *Service) Stats() Stats {
	return Stats{
		Enabled:  s.cfg.Enabled,
		Catalog:  s.Catalog().Len(),
		Awarded:  len(s.Tracker.Awarded()),
		Passes:   s.passes.Load(),
		LastPass: s.lastPass.Load(),
	}
}

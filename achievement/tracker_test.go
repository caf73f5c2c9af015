package achievement

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/model"
	"github.com/kasuganosora/hunterlog/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// memLedger is an in-memory Ledger that can be told to fail writes.
type memLedger struct {
	mu       sync.Mutex
	rows     map[int]time.Time
	pending  map[int]model.PendingAward
	stores   map[int]int
	failNext int
	failAll  bool
	// failPending makes AddPendingAward fail.
	failPending bool
}

func newMemLedger() *memLedger {
	return &memLedger{rows: map[int]time.Time{}, pending: map[int]model.PendingAward{}, stores: map[int]int{}}
}

func (l *memLedger) GetPlayerAchievementIDList(context.Context) ([]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]int, 0, len(l.rows))
	for id := range l.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (l *memLedger) StoreAchievement(_ context.Context, id int, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stores[id]++
	if l.failAll || l.failNext > 0 {
		l.failNext--
		return errors.New("ledger unavailable")
	}
	if _, ok := l.rows[id]; !ok {
		l.rows[id] = at
	}
	return nil
}

func (l *memLedger) AddPendingAward(_ context.Context, id int, at time.Time, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failPending {
		return errors.New("outbox unavailable")
	}
	p := l.pending[id]
	p.AchievementID, p.AwardedAt = id, at
	p.Attempts++
	if cause != nil {
		p.LastError = cause.Error()
	}
	l.pending[id] = p
	return nil
}

func (l *memLedger) PendingAwards(context.Context) ([]model.PendingAward, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.PendingAward, 0, len(l.pending))
	for _, p := range l.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AchievementID < out[j].AchievementID })
	return out, nil
}

func (l *memLedger) ClearPendingAward(_ context.Context, id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, id)
	return nil
}

func newTracker(l Ledger) *Tracker {
	return NewTracker(l, RetryPolicy{MaxTries: 3, BaseDelay: time.Millisecond}, NewMetrics(nil), testutil.Logger())
}

func TestReward_Idempotent(t *testing.T) {
	l := newMemLedger()
	tr := newTracker(l)
	ctx := context.Background()

	ok, err := tr.RewardAchievement(ctx, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.RewardAchievement(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, l.stores[10])
	assert.True(t, tr.IsAwarded(10))
}

func TestReward_ConcurrentSameID(t *testing.T) {
	l := newMemLedger()
	tr := newTracker(l)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := tr.RewardAchievement(context.Background(), 7)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, l.stores[7])
}

func TestReward_AtMostOnceAcrossRestart(t *testing.T) {
	l := newMemLedger()
	ctx := context.Background()

	first := newTracker(l)
	for _, id := range []int{1, 2, 3} {
		_, err := first.RewardAchievement(ctx, id)
		require.NoError(t, err)
	}
	before := first.Awarded()

	second := newTracker(l)
	require.NoError(t, second.Seed(ctx))
	assert.Equal(t, before, second.Awarded(), "reloaded set equals the set before restart")

	for _, id := range []int{1, 2, 3} {
		ok, err := second.RewardAchievement(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, l.stores[id])
	}
}

func TestReward_TransientFailureRetriedInline(t *testing.T) {
	l := newMemLedger()
	l.failNext = 2
	tr := newTracker(l)

	ok, err := tr.RewardAchievement(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, l.stores[5])
	assert.Contains(t, l.rows, 5)
	assert.Empty(t, l.pending)
}

func TestReward_PersistentFailureGoesToOutbox(t *testing.T) {
	l := newMemLedger()
	l.failAll = true
	tr := newTracker(l)
	ctx := context.Background()

	ok, err := tr.RewardAchievement(ctx, 9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, tr.IsAwarded(9), "in-memory award survives a ledger failure")
	assert.NotContains(t, l.rows, 9)
	require.Contains(t, l.pending, 9)

	restarted := newTracker(l)
	require.NoError(t, restarted.Seed(ctx))
	assert.True(t, restarted.IsAwarded(9), "pending awards are not re-awarded after restart")

	l.failAll = false
	n, err := restarted.RetryPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, l.rows, 9)
	assert.Empty(t, l.pending)
}

func TestRetryPending_StillFailing(t *testing.T) {
	l := newMemLedger()
	l.failAll = true
	tr := newTracker(l)
	ctx := context.Background()

	_, err := tr.RewardAchievement(ctx, 4)
	require.NoError(t, err)
	n, err := tr.RetryPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, l.pending[4].Attempts)
}

func TestRewardAchievement_CancelledContextStillPersists(t *testing.T) {
	store := history.NewStore(testutil.SetupTestDB(t), testutil.Logger())
	tr := NewTracker(store, RetryPolicy{MaxTries: 2, BaseDelay: time.Millisecond}, NewMetrics(nil), testutil.Logger())
	require.NoError(t, tr.Seed(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := tr.RewardAchievement(ctx, 607)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := store.GetPlayerAchievementIDList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{607}, ids)

	restarted := NewTracker(store, RetryPolicy{MaxTries: 2, BaseDelay: time.Millisecond}, NewMetrics(nil), testutil.Logger())
	require.NoError(t, restarted.Seed(context.Background()))
	assert.True(t, restarted.IsAwarded(607))
	ok, err = restarted.RewardAchievement(context.Background(), 607)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRetryPending_LogsOutboxBumpFailure(t *testing.T) {
	l := newMemLedger()
	l.failAll = true
	core, logs := observer.New(zap.WarnLevel)
	tr := NewTracker(l, RetryPolicy{MaxTries: 1, BaseDelay: time.Millisecond}, NewMetrics(nil), zap.New(core))
	ctx := context.Background()

	_, err := tr.RewardAchievement(ctx, 6)
	require.NoError(t, err)
	l.failPending = true
	n, err := tr.RetryPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, logs.FilterMessage("bump pending award failed").Len())
	assert.Equal(t, 1, l.pending[6].Attempts)
}

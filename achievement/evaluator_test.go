package achievement

import (
	"context"
	"testing"

	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func always(v bool) Predicate { return func(*Input) bool { return v } }

func newEvaluator(t *testing.T, rules []Rule, workers int) (*Evaluator, *Metrics) {
	t.Helper()
	cat, preds, err := Build(rules)
	require.NoError(t, err)
	m := NewMetrics(prometheus.NewRegistry())
	return NewEvaluator(cat, preds, workers, m, testutil.Logger()), m
}

func emptyInput() *Input { return &Input{History: &history.Snapshot{}} }

func TestEvaluate_AscendingAndExcludesAwarded(t *testing.T) {
	rules := []Rule{
		{Achievement: Achievement{ID: 40}, Check: always(true)},
		{Achievement: Achievement{ID: 3}, Check: always(true)},
		{Achievement: Achievement{ID: 17}, Check: always(false)},
		{Achievement: Achievement{ID: 25}, Check: always(true)},
		{Achievement: Achievement{ID: 8}, Check: always(true)},
	}
	for _, workers := range []int{1, 4, 16} {
		e, _ := newEvaluator(t, rules, workers)
		got, err := e.Evaluate(context.Background(), emptyInput(), IDSet{25: {}})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 8, 40}, got, "workers=%d", workers)
	}
}

func TestEvaluate_PanicIsIsolated(t *testing.T) {
	rules := []Rule{
		{Achievement: Achievement{ID: 1}, Check: always(true)},
		{Achievement: Achievement{ID: 2}, Check: func(in *Input) bool {
			var m map[int]int
			m[1] = 1
			return true
		}},
		{Achievement: Achievement{ID: 3}, Check: func(in *Input) bool {
			return in.History.Quests[10].QuestID == 1
		}},
		{Achievement: Achievement{ID: 4}, Check: always(true)},
	}
	e, m := newEvaluator(t, rules, 2)

	got, err := e.Evaluate(context.Background(), emptyInput(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, got)
	assert.Equal(t, 2.0, promtest.ToFloat64(m.PredicateFailures.WithLabelValues("panic")))
}

func TestEvaluate_UnknownRuleIsFalse(t *testing.T) {
	rules := []Rule{
		{Achievement: Achievement{ID: 1}, Check: always(true)},
		{Achievement: Achievement{ID: 2}},
	}
	e, m := newEvaluator(t, rules, 1)

	got, err := e.Evaluate(context.Background(), emptyInput(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.PredicateFailures.WithLabelValues("unknown")))
	assert.False(t, e.Check(12345, emptyInput()))
}

func TestEvaluate_MalformedSeriesDoesNotAffectOthers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := history.NewStore(db, testutil.Logger())
	ctx := context.Background()
	_, err := store.RecordQuest(ctx, &history.QuestRecord{})
	require.NoError(t, err)

	_, err = store.RecordQuest(ctx, &history.QuestRecord{})
	require.NoError(t, err)
	require.NoError(t, db.Exec("UPDATE quest_runs SET hits_taken_blocked = ?, party_size = 1", `{"30": "garbage"`).Error)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)

	cat, preds, err := Default()
	require.NoError(t, err)
	e := NewEvaluator(cat, preds, 4, NewMetrics(nil), testutil.Logger())
	got, err := e.Evaluate(ctx, &Input{History: snap}, nil)
	require.NoError(t, err)
	assert.NotContains(t, got, 700)
	assert.Contains(t, got, 607, "first quest achievement still evaluates")
}

func TestEvaluate_CancelledContext(t *testing.T) {
	e, _ := newEvaluator(t, []Rule{{Achievement: Achievement{ID: 1}, Check: always(true)}}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Evaluate(ctx, emptyInput(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

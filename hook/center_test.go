package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/kasuganosora/hunterlog/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCenter() *Center { return NewCenter(testutil.Logger()) }

func TestTrigger_NoHandlers(t *testing.T) {
	c := newCenter()
	out, err := c.Trigger(context.Background(), OnQuestComplete, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestTrigger_PayloadReachesHandler(t *testing.T) {
	c := newCenter()
	var got QuestCompleted
	c.Register(OnQuestComplete, 0, "probe", func(_ context.Context, event string, data interface{}) (interface{}, error) {
		assert.Equal(t, OnQuestComplete, event)
		got = data.(QuestCompleted)
		return data, nil
	})
	_, err := c.Trigger(context.Background(), OnQuestComplete, QuestCompleted{RunID: 3, QuestID: 23648})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.RunID)
}

func TestTrigger_PriorityAndDataFlow(t *testing.T) {
	c := newCenter()
	c.Register("ev", 1, "addTen", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		return data.(int) + 10, nil
	})
	c.Register("ev", 0, "double", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		return data.(int) * 2, nil
	})
	out, err := c.Trigger(context.Background(), "ev", 5)
	require.NoError(t, err)
	assert.Equal(t, 20, out)
}

func TestTrigger_Interrupt(t *testing.T) {
	c := newCenter()
	second := false
	c.Register("ev", 0, "stop", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		return "stopped", ErrInterrupt
	})
	c.Register("ev", 1, "after", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		second = true
		return data, nil
	})
	out, err := c.Trigger(context.Background(), "ev", "in")
	assert.True(t, errors.Is(err, ErrInterrupt))
	assert.Equal(t, "stopped", out)
	assert.False(t, second)
}

func TestTrigger_ErrorAndPanicDoNotStopChain(t *testing.T) {
	c := newCenter()
	reached := false
	c.Register("ev", 0, "fails", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		return nil, errors.New("boom")
	})
	c.Register("ev", 1, "panics", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		panic("bad handler")
	})
	c.Register("ev", 2, "last", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		reached = true
		return data, nil
	})
	out, err := c.Trigger(context.Background(), "ev", 7)
	require.NoError(t, err)
	assert.True(t, reached)
	assert.Equal(t, 7, out, "failed handlers must not replace the payload")
}

func TestUnregister(t *testing.T) {
	c := newCenter()
	noop := func(_ context.Context, _ string, data interface{}) (interface{}, error) { return data, nil }
	c.Register(OnQuestComplete, 0, "a", noop)
	c.Register(OnQuestComplete, 0, "b", noop)
	c.Register(OnAchievementAwarded, 0, "a", noop)

	c.Unregister(OnQuestComplete, "b")
	assert.Equal(t, 1, c.Count(OnQuestComplete))

	c.UnregisterAll("a")
	assert.Zero(t, c.Count(OnQuestComplete))
	assert.Zero(t, c.Count(OnAchievementAwarded))
}

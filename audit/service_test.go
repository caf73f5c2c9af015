package audit

import (
	"context"
	"testing"

	"github.com/kasuganosora/hunterlog/hook"
	"github.com/kasuganosora/hunterlog/model"
	"github.com/kasuganosora/hunterlog/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_FlushedOnStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.Logger())

	id := 42
	svc.Log(Entry{
		TraceID:       "trace-123",
		Action:        ActionAchievementGranted,
		AchievementID: &id,
		Detail:        map[string]string{"by": "admin"},
		IP:            "127.0.0.1",
	})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, ActionAchievementGranted, logs[0].Action)
	require.NotNil(t, logs[0].AchievementID)
	assert.Equal(t, 42, *logs[0].AchievementID)
	assert.JSONEq(t, `{"by":"admin"}`, string(logs[0].Detail))
}

func TestLog_ManyEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.Logger())
	for i := 0; i < batchSize+5; i++ {
		svc.Log(Entry{Action: ActionQuestRecorded})
	}
	svc.Stop(context.Background())

	var n int64
	require.NoError(t, db.Model(&model.AuditLog{}).Count(&n).Error)
	assert.EqualValues(t, batchSize+5, n)
}

func TestStop_Idempotent(t *testing.T) {
	svc := New(testutil.SetupTestDB(t), testutil.Logger())
	svc.Stop(context.Background())
	svc.Stop(context.Background())
}

func TestRegisterHooks_RecordsEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.Logger())
	hc := hook.NewCenter(testutil.Logger())
	svc.RegisterHooks(hc)

	ctx := context.Background()
	_, err := hc.Trigger(ctx, hook.OnQuestComplete, hook.QuestCompleted{RunID: 7, QuestID: 23648})
	require.NoError(t, err)
	_, err = hc.Trigger(ctx, hook.OnAchievementAwarded, hook.AchievementAwarded{ID: 10, Title: "Duremudira"})
	require.NoError(t, err)
	svc.Stop(ctx)

	rows, err := svc.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ActionAchievementAwarded, rows[0].Action)
	assert.Equal(t, 10, *rows[0].AchievementID)
	assert.Equal(t, ActionQuestRecorded, rows[1].Action)
	assert.EqualValues(t, 7, *rows[1].RunID)
}

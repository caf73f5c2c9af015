// Package audit writes an asynchronous trail of API actions and awards.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/hunterlog/hook"
	"github.com/kasuganosora/hunterlog/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Action names.
const (
	ActionQuestRecorded      = "quest_recorded"
	ActionAchievementAwarded = "achievement_awarded"
	ActionAchievementGranted = "achievement_granted"
	ActionAwardRetry         = "award_retry"
	ActionTokenIssued        = "token_issued"
)

const (
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Entry is one audit event.
type Entry struct {
	TraceID       string
	Action        string
	AchievementID *int
	RunID         *int64
	Detail        interface{}
	Error         string
	IP            string
}

// Service batches entries and writes them from a single worker.
type Service struct {
	db     *gorm.DB
	ch     chan *model.AuditLog
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	logger *zap.Logger
}

func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.AuditLog, 1024),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log queues entry. When the queue is full the entry is dropped with a warning.
func (svc *Service) Log(entry Entry) {
	rec := &model.AuditLog{
		TraceID:       entry.TraceID,
		Action:        entry.Action,
		AchievementID: entry.AchievementID,
		RunID:         entry.RunID,
		Error:         entry.Error,
		IP:            entry.IP,
	}
	if entry.Detail != nil {
		if b, err := json.Marshal(entry.Detail); err == nil {
			rec.Detail = datatypes.JSON(b)
		}
	}
	select {
	case svc.ch <- rec:
	default:
		svc.logger.Warn("audit channel full, dropping entry", zap.String("action", entry.Action))
	}
}

// RegisterHooks records quest completions and awards fired on hc.
func (svc *Service) RegisterHooks(hc *hook.Center) {
	hc.Register(hook.OnQuestComplete, 0, "audit", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		if q, ok := data.(hook.QuestCompleted); ok {
			runID := q.RunID
			svc.Log(Entry{Action: ActionQuestRecorded, RunID: &runID, Detail: map[string]int{"quest_id": q.QuestID}})
		}
		return data, nil
	})
	hc.Register(hook.OnAchievementAwarded, 0, "audit", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		if a, ok := data.(hook.AchievementAwarded); ok {
			id := a.ID
			svc.Log(Entry{Action: ActionAchievementAwarded, AchievementID: &id, Detail: map[string]string{"title": a.Title}})
		}
		return data, nil
	})
}

// Recent returns up to limit entries, newest first.
func (svc *Service) Recent(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []model.AuditLog
	err := svc.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// Stop flushes queued entries and waits for the worker to exit.
func (svc *Service) Stop(_ context.Context) {
	svc.once.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.AuditLog, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case rec := <-svc.ch:
			batch = append(batch, rec)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case rec := <-svc.ch:
					batch = append(batch, rec)
				default:
					flush()
					return
				}
			}
		}
	}
}

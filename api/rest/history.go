package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/hook"
	"github.com/kasuganosora/hunterlog/live"
	"github.com/kasuganosora/hunterlog/model"
	"go.uber.org/zap"
)

// HistoryHandler receives quest results and live counters from the overlay.
type HistoryHandler struct {
	store  *history.Store
	live   *live.Store
	hooks  *hook.Center
	logger *zap.Logger
}

func NewHistoryHandler(store *history.Store, liveStore *live.Store, hooks *hook.Center, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, live: liveStore, hooks: hooks, logger: logger}
}

// RecordQuest handles POST /api/quests.
func (h *HistoryHandler) RecordQuest(c *gin.Context) {
	var rec history.QuestRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if rec.Run.QuestID <= 0 || rec.Run.FinalTimeValue < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quest_id and final_time_value are required"})
		return
	}
	switch rec.Run.OverlayMode {
	case "", model.OverlayNormal, model.OverlayZen, model.OverlaySpeedrun:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid overlay_mode"})
		return
	}

	rec.Run.RunID = 0
	runID, err := h.store.RecordQuest(c.Request.Context(), &rec)
	if err != nil {
		h.logger.Error("record quest", zap.Int("quest_id", rec.Run.QuestID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	_, _ = h.hooks.Trigger(c.Request.Context(), hook.OnQuestComplete,
		hook.QuestCompleted{RunID: runID, QuestID: rec.Run.QuestID})
	c.JSON(http.StatusCreated, gin.H{"run_id": runID})
}

// RecordSession handles POST /api/sessions.
func (h *HistoryHandler) RecordSession(c *gin.Context) {
	if err := h.store.RecordOverlaySession(c.Request.Context()); err != nil {
		h.logger.Error("record session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	_, _ = h.hooks.Trigger(c.Request.Context(), hook.OnSessionStart, nil)
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

type attemptRequest struct {
	QuestID      int               `json:"quest_id" binding:"required"`
	WeaponTypeID int               `json:"weapon_type_id"`
	OverlayMode  model.OverlayMode `json:"overlay_mode"`
	PersonalBest bool              `json:"personal_best"`
}

// RecordAttempt handles POST /api/attempts.
func (h *HistoryHandler) RecordAttempt(c *gin.Context) {
	var req attemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.store.RecordAttempt(c.Request.Context(), req.QuestID, req.WeaponTypeID, req.OverlayMode, req.PersonalBest)
	if err != nil {
		h.logger.Error("record attempt", zap.Int("quest_id", req.QuestID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// RecordBingo handles POST /api/bingo.
func (h *HistoryHandler) RecordBingo(c *gin.Context) {
	var b model.Bingo
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b.ID = 0
	h.created(c, "record bingo", h.store.RecordBingo(c.Request.Context(), &b))
}

type gachaRequest struct {
	CardID int `json:"card_id" binding:"required"`
}

// RecordGacha handles POST /api/gacha.
func (h *HistoryHandler) RecordGacha(c *gin.Context) {
	var req gachaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.created(c, "record gacha", h.store.RecordGachaCard(c.Request.Context(), req.CardID))
}

// RecordMezFes handles POST /api/mezfes.
func (h *HistoryHandler) RecordMezFes(c *gin.Context) {
	var m model.MezFes
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m.ID = 0
	h.created(c, "record mezfes", h.store.RecordMezFes(c.Request.Context(), &m))
}

// RecordGauntlet handles POST /api/gauntlets/:kind.
func (h *HistoryHandler) RecordGauntlet(c *gin.Context) {
	var run model.GauntletRun
	if err := c.ShouldBindJSON(&run); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.store.RecordGauntlet(c.Request.Context(), history.GauntletKind(c.Param("kind")), run)
	if errors.Is(err, history.ErrUnknownGauntlet) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.created(c, "record gauntlet", err)
}

func (h *HistoryHandler) created(c *gin.Context, what string, err error) {
	if err != nil {
		h.logger.Error(what, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// UpdateLive handles PUT /api/live.
func (h *HistoryHandler) UpdateLive(c *gin.Context) {
	var snap live.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.live.Set(snap)
	_, _ = h.hooks.Trigger(c.Request.Context(), hook.OnLiveStateUpdate, h.live.Live())
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetLive handles GET /api/live.
func (h *HistoryHandler) GetLive(c *gin.Context) {
	c.JSON(http.StatusOK, h.live.Live())
}

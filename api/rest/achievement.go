package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/hunterlog/achievement"
	"go.uber.org/zap"
)

// AchievementHandler serves the achievement views.
type AchievementHandler struct {
	svc    *achievement.Service
	logger *zap.Logger
}

func NewAchievementHandler(svc *achievement.Service, logger *zap.Logger) *AchievementHandler {
	return &AchievementHandler{svc: svc, logger: logger}
}

// List handles GET /api/achievements.
func (h *AchievementHandler) List(c *gin.Context) {
	p, err := h.svc.Progress(c.Request.Context())
	if err != nil {
		h.logger.Error("list achievements", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	done := 0
	for _, e := range p {
		if e.Completed() {
			done++
		}
	}
	c.JSON(http.StatusOK, gin.H{"achievements": p, "completed": done, "total": len(p)})
}

// Completed handles GET /api/achievements/completed.
func (h *AchievementHandler) Completed(c *gin.Context) {
	done, err := h.svc.Completed(c.Request.Context())
	if err != nil {
		h.logger.Error("list completed achievements", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if done == nil {
		done = []achievement.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"achievements": done})
}

// Get handles GET /api/achievements/:id.
func (h *AchievementHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if errors.Is(err, achievement.ErrUnknownAchievement) {
		c.JSON(http.StatusNotFound, gin.H{"error": "achievement not found"})
		return
	}
	if err != nil {
		h.logger.Error("get achievement", zap.Int("achievement_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, e)
}

// Check handles POST /api/achievements/check. The pass runs on the request.
func (h *AchievementHandler) Check(c *gin.Context) {
	if !h.svc.Enabled() {
		c.JSON(http.StatusOK, gin.H{"awarded": []int{}, "enabled": false})
		return
	}
	ids, err := h.svc.CheckForAchievements(c.Request.Context())
	if err != nil {
		h.logger.Error("achievement pass", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if ids == nil {
		ids = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"awarded": ids, "enabled": true})
}

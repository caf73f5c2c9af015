package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/hunterlog/achievement"
	"github.com/kasuganosora/hunterlog/audit"
	"github.com/kasuganosora/hunterlog/config"
	mw "github.com/kasuganosora/hunterlog/middleware"
	"github.com/kasuganosora/hunterlog/scheduler"
	"go.uber.org/zap"
)

// AdminHandler serves the admin routes. Mount it behind mw.AdminAuth.
type AdminHandler struct {
	svc    *achievement.Service
	sched  *scheduler.Scheduler
	audit  *audit.Service
	sec    config.SecurityConfig
	logger *zap.Logger
}

func NewAdminHandler(
	svc *achievement.Service,
	sched *scheduler.Scheduler,
	auditSvc *audit.Service,
	sec config.SecurityConfig,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{svc: svc, sched: sched, audit: auditSvc, sec: sec, logger: logger}
}

// Metrics handles GET /api/admin/metrics.
func (h *AdminHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"achievements":    h.svc.Stats(),
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

// ListSchedulerTasks handles GET /api/admin/scheduler.
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.Jobs()})
}

// Grant handles POST /api/admin/achievements/:id/grant.
func (h *AdminHandler) Grant(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	granted, err := h.svc.Grant(c.Request.Context(), id)
	if errors.Is(err, achievement.ErrUnknownAchievement) {
		c.JSON(http.StatusNotFound, gin.H{"error": "achievement not found"})
		return
	}
	entry := audit.Entry{
		TraceID:       mw.GetTraceID(c),
		Action:        audit.ActionAchievementGranted,
		AchievementID: &id,
		Detail:        gin.H{"granted": granted},
		IP:            c.ClientIP(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	h.audit.Log(entry)
	if err != nil {
		h.logger.Error("grant achievement", zap.Int("achievement_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "granted": granted})
}

// RetryPending handles POST /api/admin/achievements/retry.
func (h *AdminHandler) RetryPending(c *gin.Context) {
	n, err := h.svc.RetryPending(c.Request.Context())
	entry := audit.Entry{
		TraceID: mw.GetTraceID(c),
		Action:  audit.ActionAwardRetry,
		Detail:  gin.H{"written": n},
		IP:      c.ClientIP(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	h.audit.Log(entry)
	if err != nil {
		h.logger.Error("retry pending awards", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "written": n})
}

type tokenRequest struct {
	Client string `json:"client" binding:"required,min=1,max=64"`
}

// IssueToken handles POST /api/admin/token and returns a presenter JWT.
func (h *AdminHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tok, err := mw.GenerateToken(req.Client, mw.ScopePresenter, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		h.logger.Error("sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.audit.Log(audit.Entry{
		TraceID: mw.GetTraceID(c),
		Action:  audit.ActionTokenIssued,
		Detail:  gin.H{"client": req.Client},
		IP:      c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"token": tok, "expires_in": int(h.sec.JWTTTLH.Seconds())})
}

// Audit handles GET /api/admin/audit?limit=N.
func (h *AdminHandler) Audit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rows, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list audit", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": rows})
}

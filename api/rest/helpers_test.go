package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/hunterlog/achievement"
	"github.com/kasuganosora/hunterlog/api/rest"
	"github.com/kasuganosora/hunterlog/audit"
	"github.com/kasuganosora/hunterlog/config"
	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/hook"
	"github.com/kasuganosora/hunterlog/live"
	"github.com/kasuganosora/hunterlog/locale"
	mw "github.com/kasuganosora/hunterlog/middleware"
	"github.com/kasuganosora/hunterlog/notify"
	"github.com/kasuganosora/hunterlog/scheduler"
	"github.com/kasuganosora/hunterlog/testutil"
	"github.com/stretchr/testify/require"
)

const adminKey = "secret"

var sec = config.SecurityConfig{JWTSecret: "rest-secret", JWTTTLH: time.Hour}

type env struct {
	r     *gin.Engine
	store *history.Store
	live  *live.Store
	svc   *achievement.Service
	queue *notify.MemoryQueue
	audit *audit.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)
	c, _ := testutil.SetupTestCache(t)
	log := testutil.Logger()
	cfg := config.Default()

	e := &env{
		store: history.NewStore(db, log),
		live:  live.NewStore(),
		queue: notify.NewMemoryQueue(256),
		audit: audit.New(db, log),
	}
	t.Cleanup(func() { e.audit.Stop(context.Background()) })

	cat, preds, err := achievement.Default()
	require.NoError(t, err)
	m := achievement.NewMetrics(nil)
	tracker := achievement.NewTracker(e.store, achievement.RetryPolicy{MaxTries: 1, BaseDelay: time.Millisecond}, m, log)
	require.NoError(t, tracker.Seed(context.Background()))
	tr, err := locale.New("en", log)
	require.NoError(t, err)

	e.svc = achievement.NewService(cfg.Achievements, achievement.Deps{
		History:   e.store,
		Live:      e.live,
		Evaluator: achievement.NewEvaluator(cat, preds, 2, m, log),
		Tracker:   tracker,
		Notifier:  notify.NewDispatcher(cat, e.queue, tr, cfg.Achievements, log),
		Cache:     c,
		Metrics:   m,
		Logger:    log,
	})
	hc := hook.NewCenter(log)
	e.svc.RegisterHooks(hc)
	t.Cleanup(e.svc.Wait)

	sched, err := scheduler.New(log)
	require.NoError(t, err)
	t.Cleanup(sched.Stop)
	require.NoError(t, sched.AddTicker("award_retry", time.Hour, func() {}))

	hist := rest.NewHistoryHandler(e.store, e.live, hc, log)
	ach := rest.NewAchievementHandler(e.svc, log)
	admin := rest.NewAdminHandler(e.svc, sched, e.audit, sec, log)

	r := gin.New()
	r.Use(mw.TraceID())
	api := r.Group("/api")
	api.POST("/quests", hist.RecordQuest)
	api.POST("/sessions", hist.RecordSession)
	api.POST("/attempts", hist.RecordAttempt)
	api.POST("/bingo", hist.RecordBingo)
	api.POST("/gacha", hist.RecordGacha)
	api.POST("/mezfes", hist.RecordMezFes)
	api.POST("/gauntlets/:kind", hist.RecordGauntlet)
	api.GET("/live", hist.GetLive)
	api.PUT("/live", hist.UpdateLive)
	api.GET("/achievements", ach.List)
	api.GET("/achievements/completed", ach.Completed)
	api.GET("/achievements/:id", ach.Get)
	api.POST("/achievements/check", ach.Check)

	adminG := api.Group("/admin", mw.AdminAuth(adminKey))
	adminG.GET("/metrics", admin.Metrics)
	adminG.GET("/scheduler", admin.ListSchedulerTasks)
	adminG.POST("/achievements/:id/grant", admin.Grant)
	adminG.POST("/achievements/retry", admin.RetryPending)
	adminG.POST("/token", admin.IssueToken)
	adminG.GET("/audit", admin.Audit)

	e.r = r
	return e
}

func (e *env) do(method, path, key, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if key != "" {
		req.Header.Set("X-Admin-Key", key)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

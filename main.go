package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/hunterlog/achievement"
	apirest "github.com/kasuganosora/hunterlog/api/rest"
	"github.com/kasuganosora/hunterlog/api/sse"
	"github.com/kasuganosora/hunterlog/audit"
	"github.com/kasuganosora/hunterlog/cache"
	"github.com/kasuganosora/hunterlog/config"
	dbadapter "github.com/kasuganosora/hunterlog/db"
	"github.com/kasuganosora/hunterlog/history"
	"github.com/kasuganosora/hunterlog/hook"
	"github.com/kasuganosora/hunterlog/live"
	"github.com/kasuganosora/hunterlog/locale"
	"github.com/kasuganosora/hunterlog/logging"
	mw "github.com/kasuganosora/hunterlog/middleware"
	"github.com/kasuganosora/hunterlog/model"
	"github.com/kasuganosora/hunterlog/notify"
	"github.com/kasuganosora/hunterlog/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	boot := logging.Fallback()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Fatal("config", zap.String("path", cfgPath), zap.Error(err))
	}

	// ---- Logger ----
	logger, err := logging.New(cfg.Server.Debug, cfg.Log)
	if err != nil {
		boot.Fatal("logger", zap.Error(err))
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}
	if cfg.Security.JWTSecret == "" {
		logger.Warn("security.jwt_secret is not set; presenter tokens cannot be issued")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	if err := model.AutoMigrate(db); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:      cfg.Cache.RedisAddr,
		RedisPassword:  cfg.Cache.RedisPassword,
		RedisDB:        cfg.Cache.RedisDB,
		LocalPubSubBuf: cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		logger.Fatal("cache", zap.Error(err))
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		logger.Fatal("pubsub", zap.Error(err))
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Metrics ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := achievement.NewMetrics(reg)
	notifyMetrics := notify.NewMetrics(reg)
	if dc, ok := pubsub.(cache.DropCounter); ok {
		reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "hunterlog",
			Name:      "pubsub_dropped_total",
			Help:      "Messages dropped for slow in-process subscribers.",
		}, func() float64 { return float64(dc.Dropped()) }))
	}

	// ---- Hooks / Audit ----
	hooks := hook.NewCenter(logger)
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())
	auditSvc.RegisterHooks(hooks)

	// ---- Achievements ----
	tr, err := locale.New(cfg.Locale.Lang, logger)
	if err != nil {
		logger.Fatal("locale", zap.Error(err))
	}
	catalog, preds, err := achievement.Default()
	if err != nil {
		logger.Fatal("achievement catalog", zap.Error(err))
	}
	store := history.NewStore(db, logger)
	// The pass only touches the in-process FIFO; the relay owns the broker.
	presenterQueue := notify.NewMemoryQueue(cfg.Cache.LocalPubSubBuf)
	reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "hunterlog",
		Name:      "notification_queue_full_total",
		Help:      "Notifications refused because the presenter queue was full.",
	}, func() float64 { return float64(presenterQueue.Dropped()) }))
	liveStore := live.NewStore()

	tracker := achievement.NewTracker(store, achievement.RetryPolicy{
		MaxTries:  cfg.Achievements.RetryMaxTries,
		BaseDelay: cfg.Achievements.RetryBaseDelay,
	}, metrics, logger)
	if err := tracker.Seed(context.Background()); err != nil {
		logger.Fatal("seed awards", zap.Error(err))
	}

	achSvc := achievement.NewService(cfg.Achievements, achievement.Deps{
		History:   store,
		Live:      liveStore,
		Evaluator: achievement.NewEvaluator(catalog, preds, cfg.Achievements.Workers, metrics, logger),
		Tracker:   tracker,
		Notifier:  notify.NewDispatcher(catalog, presenterQueue, tr, cfg.Achievements, logger),
		Cache:     c,
		Metrics:   metrics,
		Logger:    logger,
	})
	achSvc.RegisterHooks(hooks)
	logger.Info("Achievements initialized",
		zap.Int("catalog", catalog.Len()),
		zap.Int("awarded", len(tracker.Awarded())),
		zap.Bool("enabled", achSvc.Enabled()),
		zap.String("lang", tr.Lang()))

	// ---- Scheduler ----
	sched, err := scheduler.New(logger)
	if err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}
	defer sched.Stop()

	limiter := mw.NewRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)

	if err := sched.AddTicker("award_retry", cfg.Achievements.RetryInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := achSvc.RetryPending(ctx)
		if err != nil {
			logger.Warn("award retry", zap.Int("written", n), zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("award retry", zap.Int("written", n))
		}
	}); err != nil {
		logger.Fatal("scheduler award_retry", zap.Error(err))
	}
	if err := sched.AddTicker("ratelimit_prune", 5*time.Minute, func() {
		if n := limiter.Prune(10 * time.Minute); n > 0 {
			logger.Debug("pruned rate limiters", zap.Int("count", n))
		}
	}); err != nil {
		logger.Fatal("scheduler ratelimit_prune", zap.Error(err))
	}
	// One pass at startup so live-only achievements are not left waiting
	// for the first quest.
	if err := sched.AddDelay("startup_pass", 5*time.Second, achSvc.CheckAsync); err != nil {
		logger.Fatal("scheduler startup_pass", zap.Error(err))
	}

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger, "/health", "/metrics", "/sse"), mw.Recovery(logger))
	r.Use(limiter.Handler())

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	histH := apirest.NewHistoryHandler(store, liveStore, hooks, logger)
	achH := apirest.NewAchievementHandler(achSvc, logger)
	adminH := apirest.NewAdminHandler(achSvc, sched, auditSvc, cfg.Security, logger)

	api := r.Group("/api")
	{
		api.POST("/quests", histH.RecordQuest)
		api.POST("/sessions", histH.RecordSession)
		api.POST("/attempts", histH.RecordAttempt)
		api.POST("/bingo", histH.RecordBingo)
		api.POST("/gacha", histH.RecordGacha)
		api.POST("/mezfes", histH.RecordMezFes)
		api.POST("/gauntlets/:kind", histH.RecordGauntlet)
		api.GET("/live", histH.GetLive)
		api.PUT("/live", histH.UpdateLive)

		achG := api.Group("/achievements")
		achG.GET("", achH.List)
		achG.GET("/completed", achH.Completed)
		achG.GET("/:id", achH.Get)
		achG.POST("/check", achH.Check)

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Server.AdminIPs, logger), mw.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
		adminG.GET("/audit", adminH.Audit)
		adminG.POST("/token", adminH.IssueToken)
		adminG.POST("/achievements/retry", adminH.RetryPending)
		adminG.POST("/achievements/:id/grant", adminH.Grant)
	}

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, logger)
	r.GET("/sse", mw.PresenterAuth(cfg.Security), sseH.ServeSSE)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayCtx, stopRelay := context.WithCancel(context.Background())
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		notify.NewRelay(presenterQueue, notify.NewPubSubQueue(pubsub), notifyMetrics, logger).Run(relayCtx)
	}()

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	achSvc.Wait()
	stopRelay()
	<-relayDone
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/ryotaku/taskforge/api/rest"
	"github.com/ryotaku/taskforge/api/sse"
	"github.com/ryotaku/taskforge/cache"
	"github.com/ryotaku/taskforge/config"
	dbadapter "github.com/ryotaku/taskforge/db"
	"github.com/ryotaku/taskforge/gamify/achievement"
	"github.com/ryotaku/taskforge/gamify/activity"
	"github.com/ryotaku/taskforge/gamify/challenge"
	"github.com/ryotaku/taskforge/gamify/engine"
	"github.com/ryotaku/taskforge/gamify/hook"
	"github.com/ryotaku/taskforge/gamify/points"
	"github.com/ryotaku/taskforge/gamify/streak"
	mw "github.com/ryotaku/taskforge/middleware"
	"github.com/ryotaku/taskforge/model"
	"github.com/ryotaku/taskforge/notify"
	"github.com/ryotaku/taskforge/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Notifier ----
	notifier := notify.NewWebhooks(db, pubsub, notify.Options{
		Timeout:   cfg.Notify.WebhookTimeout,
		QueueSize: cfg.Notify.QueueSize,
	}, logger)
	defer notifier.Stop(context.Background())

	// ---- Gamification services ----
	pointsSvc := points.NewService(db, c, logger)
	activitySvc := activity.NewService(db, logger)
	streakSvc := streak.NewService(db, activitySvc, logger)
	achievementSvc := achievement.NewService(db, pointsSvc, activitySvc, notifier, logger)
	challengeSvc := challenge.NewService(db, pointsSvc, notifier, logger)
	eng := engine.New(db, pointsSvc, activitySvc, streakSvc, achievementSvc, challengeSvc, notifier, logger)

	// Creations reach the live feed through a pipeline hook; the notifier
	// only carries webhook-worthy events.
	feed := notify.FeedMirror(pubsub, logger)
	eng.Hooks().Register(hook.TaskCreated, 0, "activity_feed", feed)
	eng.Hooks().Register(hook.ProjectCreated, 0, "activity_feed", feed)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- Gin HTTP server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	leaderboardH := apirest.Mount(r, apirest.Deps{
		DB:               db,
		Cache:            c,
		Sec:              cfg.Security,
		Engine:           eng,
		Activity:         activitySvc,
		Sched:            sched,
		Logger:           logger,
		AdminKey:         cfg.Server.AdminKey,
		AdminIPWhitelist: cfg.Security.AdminIPWhitelist,
	})

	sseH := sse.NewHandler(pubsub, c, cfg.Security, logger)
	r.GET("/sse", sseH.ServeSSE)

	// ---- Periodic tasks ----
	sched.AddTicker("challenge_sweep", cfg.Gamification.ChallengeSweepInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if n, err := challengeSvc.ActivateDue(ctx); err != nil {
			logger.Error("challenge activation sweep failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("challenges activated", zap.Int64("count", n))
		}
		if n, err := challengeSvc.ExpireEnded(ctx); err != nil {
			logger.Error("challenge expiry sweep failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("challenges expired", zap.Int64("count", n))
		}
	})
	sched.AddTicker("leaderboard_refresh", cfg.Gamification.LeaderboardRefreshInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := leaderboardH.Refresh(ctx); err != nil {
			logger.Error("leaderboard refresh failed", zap.Error(err))
		}
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

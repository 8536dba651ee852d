package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/ryotaku/taskforge/cache"
	"github.com/ryotaku/taskforge/config"
	"github.com/ryotaku/taskforge/gamify/activity"
	"github.com/ryotaku/taskforge/gamify/engine"
	mw "github.com/ryotaku/taskforge/middleware"
	"github.com/ryotaku/taskforge/scheduler"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the REST surface needs. Mount builds the handlers
// from it and registers the full /api route tree.
type Deps struct {
	DB       *gorm.DB
	Cache    cache.Cache
	Sec      config.SecurityConfig
	Engine   *engine.Engine
	Activity *activity.Service
	Sched    *scheduler.Scheduler
	Logger   *zap.Logger

	// AdminKey empty disables admin routes (503). The whitelist, when
	// set, additionally restricts admin routes by client IP.
	AdminKey         string
	AdminIPWhitelist []string
}

// Mount registers all REST routes on r. The returned LeaderboardHandler
// lets the caller schedule periodic Refresh runs.
func Mount(r *gin.Engine, d Deps) *LeaderboardHandler {
	authH := NewAuthHandler(d.DB, d.Cache, d.Sec)
	projectH := NewProjectHandler(d.DB, d.Engine, d.Logger)
	taskH := NewTaskHandler(d.DB, d.Engine, d.Logger)
	teamH := NewTeamHandler(d.DB, d.Engine, d.Logger)
	achievementH := NewAchievementHandler(d.DB)
	challengeH := NewChallengeHandler(d.DB)
	leaderboardH := NewLeaderboardHandler(d.DB, d.Cache, d.Logger)
	activityH := NewActivityHandler(d.DB, d.Activity)
	statsH := NewStatsHandler(d.DB)
	adminH := NewAdminHandler(d.DB, d.Sched, d.Logger)

	auth := mw.Auth(d.Sec, d.Cache)
	api := r.Group("/api")

	authG := api.Group("/auth")
	authG.POST("/register", authH.Register)
	authG.POST("/login", authH.Login)
	authG.POST("/logout", auth, authH.Logout)
	authG.GET("/me", auth, authH.Me)

	projectsG := api.Group("/projects", auth)
	projectsG.POST("", projectH.Create)
	projectsG.GET("", projectH.List)
	projectsG.GET("/:id", projectH.Detail)

	tasksG := api.Group("/tasks", auth)
	tasksG.POST("", taskH.Create)
	tasksG.GET("", taskH.List)
	tasksG.GET("/:id", taskH.Detail)
	tasksG.POST("/:id/assign", taskH.Assign)
	tasksG.POST("/:id/start", taskH.Start)
	tasksG.POST("/:id/complete", taskH.Complete)

	teamsG := api.Group("/teams", auth)
	teamsG.POST("", teamH.Create)
	teamsG.GET("", teamH.List)
	teamsG.GET("/:id", teamH.Detail)
	teamsG.POST("/:id/join", teamH.Join)
	teamsG.POST("/:id/leave", teamH.Leave)
	teamsG.GET("/:id/challenges", challengeH.ListForTeam)
	teamsG.GET("/:id/leaderboard", leaderboardH.Team)

	achievementsG := api.Group("/achievements", auth)
	achievementsG.GET("", achievementH.List)
	achievementsG.GET("/mine", achievementH.Mine)

	challengesG := api.Group("/challenges", auth)
	challengesG.POST("", challengeH.Create)
	challengesG.GET("/:id", challengeH.Detail)

	api.GET("/leaderboard", auth, leaderboardH.Global)
	api.GET("/activity", auth, activityH.Recent)
	api.GET("/stats", auth, statsH.Me)

	adminG := api.Group("/admin", AdminAuth(d.AdminKey))
	if len(d.AdminIPWhitelist) > 0 {
		adminG.Use(mw.IPWhitelist(d.AdminIPWhitelist))
	}
	adminG.POST("/seed", adminH.Seed)
	adminG.POST("/webhooks", adminH.CreateWebhook)
	adminG.GET("/webhooks", adminH.ListWebhooks)
	adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	adminG.POST("/leaderboard/refresh", leaderboardH.RefreshHTTP)

	return leaderboardH
}

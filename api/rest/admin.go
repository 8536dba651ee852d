package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ryotaku/taskforge/model"
	"github.com/ryotaku/taskforge/scheduler"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	db     *gorm.DB
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, sched: sched, logger: logger}
}

// Seed inserts the default categories, achievements and rule configuration.
// Existing rows (matched by name) are left untouched, so re-running is safe.
// POST /api/admin/seed
func (h *AdminHandler) Seed(c *gin.Context) {
	var created struct {
		Categories   int `json:"categories"`
		Achievements int `json:"achievements"`
		Configs      int `json:"configs"`
	}

	for _, cat := range defaultCategories() {
		res := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&cat)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "seed failed"})
			return
		}
		created.Categories += int(res.RowsAffected)
	}
	for _, a := range defaultAchievements() {
		var count int64
		h.db.Model(&model.Achievement{}).Where("name = ?", a.Name).Count(&count)
		if count > 0 {
			continue
		}
		if err := h.db.Create(&a).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "seed failed"})
			return
		}
		created.Achievements++
	}
	for _, cfg := range defaultConfigs() {
		res := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&cfg)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "seed failed"})
			return
		}
		created.Configs += int(res.RowsAffected)
	}

	h.logger.Info("seed completed",
		zap.Int("categories", created.Categories),
		zap.Int("achievements", created.Achievements),
		zap.Int("configs", created.Configs))
	c.JSON(http.StatusOK, created)
}

type createWebhookRequest struct {
	Name       string `json:"name"        binding:"required,min=2,max=100"`
	Platform   string `json:"platform"    binding:"required,oneof=discord teams"`
	WebhookURL string `json:"webhook_url" binding:"required,url,max=500"`
	TeamID     *int64 `json:"team_id"`
}

// CreateWebhook handles POST /api/admin/webhooks.
func (h *AdminHandler) CreateWebhook(c *gin.Context) {
	var req createWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TeamID != nil {
		var team model.Team
		if err := h.db.First(&team, *req.TeamID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
			return
		}
	}

	cfg := model.WebhookConfig{
		Name:                 req.Name,
		Platform:             req.Platform,
		WebhookURL:           req.WebhookURL,
		TeamID:               req.TeamID,
		NotifyTaskCompletion: true,
		NotifyAchievements:   true,
		NotifyTeamChallenges: true,
		NotifyMilestones:     true,
		IsActive:             true,
	}
	if err := h.db.Create(&cfg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// ListWebhooks handles GET /api/admin/webhooks.
func (h *AdminHandler) ListWebhooks(c *gin.Context) {
	var configs []model.WebhookConfig
	if err := h.db.Find(&configs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": configs})
}

// ListSchedulerTasks returns names of all registered ticker tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.ListTickers()})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

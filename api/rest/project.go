package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ryotaku/taskforge/gamify/engine"
	mw "github.com/ryotaku/taskforge/middleware"
	"github.com/ryotaku/taskforge/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectHandler handles project REST endpoints.
type ProjectHandler struct {
	db     *gorm.DB
	engine *engine.Engine
	logger *zap.Logger
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(db *gorm.DB, eng *engine.Engine, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{db: db, engine: eng, logger: logger}
}

type createProjectRequest struct {
	Name        string `json:"name"        binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=2000"`
	Emoji       string `json:"emoji"       binding:"max=10"`
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := model.Project{
		Name:        req.Name,
		Description: req.Description,
		Emoji:       req.Emoji,
		OwnerID:     userID,
		IsActive:    true,
	}
	if err := h.db.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	if err := h.engine.OnProjectCreated(c.Request.Context(), &project); err != nil {
		h.logger.Warn("project creation event failed",
			zap.Int64("project_id", project.ID), zap.Error(err))
	}
	c.JSON(http.StatusCreated, project)
}

// List handles GET /api/projects. Returns the caller's projects.
func (h *ProjectHandler) List(c *gin.Context) {
	userID := mw.GetUserID(c)

	var projects []model.Project
	if err := h.db.Where("owner_id = ?", userID).
		Order("start_date DESC").
		Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Detail handles GET /api/projects/:id. Returns the project and its tasks.
func (h *ProjectHandler) Detail(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var project model.Project
	if err := h.db.First(&project, projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	var tasks []model.Task
	h.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&tasks)

	c.JSON(http.StatusOK, gin.H{"project": project, "tasks": tasks})
}

package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ryotaku/taskforge/gamify/engine"
	mw "github.com/ryotaku/taskforge/middleware"
	"github.com/ryotaku/taskforge/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskHandler handles task REST endpoints.
type TaskHandler struct {
	db     *gorm.DB
	engine *engine.Engine
	logger *zap.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(db *gorm.DB, eng *engine.Engine, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{db: db, engine: eng, logger: logger}
}

type createTaskRequest struct {
	ProjectID   int64  `json:"project_id"  binding:"required"`
	Name        string `json:"name"        binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=2000"`
	Priority    string `json:"priority"    binding:"omitempty,oneof=low medium high"`
	AssignedTo  *int64 `json:"assigned_to"`
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Priority == "" {
		req.Priority = model.TaskPriorityMedium
	}

	var project model.Project
	if err := h.db.First(&project, req.ProjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	task := model.Task{
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Status:      model.TaskStatusTodo,
		Priority:    req.Priority,
		CreatedBy:   userID,
		AssignedTo:  req.AssignedTo,
	}
	if err := h.db.Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	if err := h.engine.OnTaskCreated(c.Request.Context(), &task); err != nil {
		h.logger.Warn("task creation event failed",
			zap.Int64("task_id", task.ID), zap.Error(err))
	}
	c.JSON(http.StatusCreated, task)
}

// List handles GET /api/tasks?project_id=N.
func (h *TaskHandler) List(c *gin.Context) {
	q := h.db.Order("created_at DESC")
	if pid, err := strconv.ParseInt(c.Query("project_id"), 10, 64); err == nil {
		q = q.Where("project_id = ?", pid)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var tasks []model.Task
	if err := q.Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Detail handles GET /api/tasks/:id.
func (h *TaskHandler) Detail(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var task model.Task
	if err := h.db.First(&task, taskID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

type assignTaskRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// Assign handles POST /api/tasks/:id/assign.
func (h *TaskHandler) Assign(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req assignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var assignee model.User
	if err := h.db.First(&assignee, req.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	res := h.db.Model(&model.Task{}).
		Where("id = ? AND status <> ?", taskID, model.TaskStatusCompleted).
		Update("assigned_to", req.UserID)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "task missing or already completed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "assigned"})
}

// Complete handles POST /api/tasks/:id/complete.
//
// The status write is guarded so only the first todo/in_progress→completed
// transition succeeds; repeated calls get 409 and never re-run the reward
// pipeline.
func (h *TaskHandler) Complete(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var task model.Task
	if err := h.db.First(&task, taskID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	now := time.Now()
	res := h.db.Model(&model.Task{}).
		Where("id = ? AND status IN ?", taskID,
			[]string{model.TaskStatusTodo, model.TaskStatusInProgress}).
		Updates(map[string]interface{}{
			"status":       model.TaskStatusCompleted,
			"completed_at": now,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
		return
	}

	task.Status = model.TaskStatusCompleted
	task.CompletedAt = &now
	if err := h.engine.OnTaskCompleted(c.Request.Context(), &task); err != nil {
		// The transition is already committed; the pipeline failure is
		// surfaced but the task stays completed.
		h.logger.Error("task completion pipeline failed",
			zap.Int64("task_id", task.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "completion processing failed"})
		return
	}

	var updated model.Task
	_ = h.db.First(&updated, taskID).Error
	c.JSON(http.StatusOK, updated)
}

// Start handles POST /api/tasks/:id/start (todo → in_progress).
func (h *TaskHandler) Start(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.Model(&model.Task{}).
		Where("id = ? AND status = ?", taskID, model.TaskStatusTodo).
		Update("status", model.TaskStatusInProgress)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "task not in todo state"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "started"})
}

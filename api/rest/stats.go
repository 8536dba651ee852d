package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/ryotaku/taskforge/middleware"
	"github.com/ryotaku/taskforge/model"
	"gorm.io/gorm"
)

// StatsHandler serves per-user gamification summaries.
type StatsHandler struct {
	db *gorm.DB
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// Me handles GET /api/stats. Returns the caller's gamification summary.
func (h *StatsHandler) Me(c *gin.Context) {
	userID := mw.GetUserID(c)

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var tasksCompleted int64
	h.db.Model(&model.Task{}).
		Where("assigned_to = ? AND status = ?", userID, model.TaskStatusCompleted).
		Count(&tasksCompleted)

	var achievementsEarned int64
	h.db.Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).
		Count(&achievementsEarned)

	var teamsJoined int64
	h.db.Model(&model.TeamMembership{}).
		Where("user_id = ?", userID).
		Count(&teamsJoined)

	// Rank = 1 + number of users with strictly more points.
	var ahead int64
	h.db.Model(&model.User{}).
		Where("points > ?", user.Points).
		Count(&ahead)

	c.JSON(http.StatusOK, gin.H{
		"user_id":             user.ID,
		"username":            user.Username,
		"points":              user.Points,
		"current_streak":      user.CurrentStreak,
		"longest_streak":      user.LongestStreak,
		"last_activity_date":  user.LastActivityDate,
		"tasks_completed":     tasksCompleted,
		"achievements_earned": achievementsEarned,
		"teams_joined":        teamsJoined,
		"rank":                ahead + 1,
	})
}

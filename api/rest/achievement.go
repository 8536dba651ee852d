package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	mw "github.com/ryotaku/taskforge/middleware"
	"github.com/ryotaku/taskforge/model"
	"gorm.io/gorm"
)

// AchievementHandler handles achievement REST endpoints.
type AchievementHandler struct {
	db *gorm.DB
}

// NewAchievementHandler creates an AchievementHandler.
func NewAchievementHandler(db *gorm.DB) *AchievementHandler {
	return &AchievementHandler{db: db}
}

// List handles GET /api/achievements. Hidden achievements are only listed
// for callers who already earned them.
func (h *AchievementHandler) List(c *gin.Context) {
	userID := mw.GetUserID(c)

	var earnedIDs []int64
	h.db.Model(&model.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &earnedIDs)

	q := h.db.Where("is_active = ?", true)
	if len(earnedIDs) > 0 {
		q = q.Where("is_hidden = ? OR id IN ?", false, earnedIDs)
	} else {
		q = q.Where("is_hidden = ?", false)
	}

	var achievements []model.Achievement
	if err := q.Order("required_value ASC").Find(&achievements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}

// earnedEntry is one earned achievement with its badge details.
type earnedEntry struct {
	model.UserAchievement
	Name       string `json:"name"`
	BadgeIcon  string `json:"badge_icon"`
	BadgeColor string `json:"badge_color"`
}

// Mine handles GET /api/achievements/mine. Returns the caller's earned
// achievements, newest first.
func (h *AchievementHandler) Mine(c *gin.Context) {
	userID := mw.GetUserID(c)

	var rows []model.UserAchievement
	if err := h.db.Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.AchievementID
	}
	byID := make(map[int64]model.Achievement, len(ids))
	if len(ids) > 0 {
		var achievements []model.Achievement
		h.db.Where("id IN ?", ids).Find(&achievements)
		for _, a := range achievements {
			byID[a.ID] = a
		}
	}

	entries := make([]earnedEntry, len(rows))
	for i, r := range rows {
		entries[i] = earnedEntry{UserAchievement: r}
		if a, ok := byID[r.AchievementID]; ok {
			entries[i].Name = a.Name
			entries[i].BadgeIcon = a.BadgeIcon
			entries[i].BadgeColor = a.BadgeColor
		}
	}
	c.JSON(http.StatusOK, gin.H{"achievements": entries})
}

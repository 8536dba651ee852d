package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ryotaku/taskforge/cache"
	"github.com/ryotaku/taskforge/gamify/points"
	"github.com/ryotaku/taskforge/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LeaderboardHandler handles leaderboard REST endpoints.
type LeaderboardHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(db *gorm.DB, c cache.Cache, logger *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{db: db, cache: c, logger: logger}
}

const leaderboardTop = 100

// BoardEntry is one row in the points leaderboard.
type BoardEntry struct {
	Rank          int    `json:"rank"`
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
	Points        int    `json:"points"`
	CurrentStreak int    `json:"current_streak"`
}

// Global returns the top users sorted by points.
// GET /api/leaderboard?limit=20
func (h *LeaderboardHandler) Global(c *gin.Context) {
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= leaderboardTop {
		limit = l
	}

	// Try the cached sorted set first.
	ctx := c.Request.Context()
	members, err := h.cache.ZRevRange(ctx, points.LeaderboardKey, 0, int64(limit-1))
	if err == nil && len(members) > 0 {
		entries := make([]BoardEntry, 0, len(members))
		for i, m := range members {
			userID, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				continue
			}
			score, _ := h.cache.ZScore(ctx, points.LeaderboardKey, m)
			entries = append(entries, BoardEntry{
				Rank:   i + 1,
				UserID: userID,
				Points: int(score),
			})
		}
		h.enrichNames(entries)
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
		return
	}

	// Fall back to a DB query and warm the cache as we go.
	var users []model.User
	h.db.Select("id, username, points, current_streak").
		Order("points DESC").
		Limit(limit).
		Find(&users)

	entries := make([]BoardEntry, len(users))
	for i, u := range users {
		entries[i] = BoardEntry{
			Rank:          i + 1,
			UserID:        u.ID,
			Username:      u.Username,
			Points:        u.Points,
			CurrentStreak: u.CurrentStreak,
		}
		_ = h.cache.ZAdd(ctx, points.LeaderboardKey, float64(u.Points), strconv.FormatInt(u.ID, 10))
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// Team returns a team's members ranked by points.
// GET /api/teams/:id/leaderboard
func (h *LeaderboardHandler) Team(c *gin.Context) {
	teamID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var memberIDs []int64
	h.db.Model(&model.TeamMembership{}).
		Where("team_id = ?", teamID).
		Pluck("user_id", &memberIDs)
	if len(memberIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"leaderboard": []BoardEntry{}})
		return
	}

	var users []model.User
	h.db.Select("id, username, points, current_streak").
		Where("id IN ?", memberIDs).
		Order("points DESC").
		Find(&users)

	entries := make([]BoardEntry, len(users))
	for i, u := range users {
		entries[i] = BoardEntry{
			Rank:          i + 1,
			UserID:        u.ID,
			Username:      u.Username,
			Points:        u.Points,
			CurrentStreak: u.CurrentStreak,
		}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// Refresh rebuilds the leaderboard sorted set from the DB. Called
// periodically by the scheduler; also exposed as POST /api/admin/leaderboard/refresh.
func (h *LeaderboardHandler) Refresh(ctx context.Context) (int, error) {
	var users []model.User
	if err := h.db.WithContext(ctx).
		Select("id, points").
		Order("points DESC").
		Limit(leaderboardTop).
		Find(&users).Error; err != nil {
		return 0, err
	}
	for _, u := range users {
		_ = h.cache.ZAdd(ctx, points.LeaderboardKey, float64(u.Points), strconv.FormatInt(u.ID, 10))
	}
	return len(users), nil
}

// RefreshHTTP handles POST /api/admin/leaderboard/refresh.
func (h *LeaderboardHandler) RefreshHTTP(c *gin.Context) {
	n, err := h.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": n})
}

func (h *LeaderboardHandler) enrichNames(entries []BoardEntry) {
	if len(entries) == 0 {
		return
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	var users []model.User
	h.db.Select("id, username, points, current_streak").Where("id IN ?", ids).Find(&users)
	byID := make(map[int64]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range entries {
		if u, ok := byID[entries[i].UserID]; ok {
			entries[i].Username = u.Username
			entries[i].Points = u.Points
			entries[i].CurrentStreak = u.CurrentStreak
		}
	}
}

package points

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/ryotaku/taskforge/cache"
	"github.com/ryotaku/taskforge/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Recognized config names and their fallback values. streak_multiplier is
// seeded alongside the rest but nothing reads it yet.
const (
	CfgTaskCreated         = "task_created"
	CfgTaskCompleted       = "task_completed"
	CfgHighPriorityBonus   = "high_priority_bonus"
	CfgMediumPriorityBonus = "medium_priority_bonus"
	CfgTeamJoined          = "team_joined"
	CfgProjectCreated      = "project_created"
	CfgStreakMultiplier    = "streak_multiplier"
)

const (
	DefaultTaskCreated         = 25
	DefaultTaskCompleted       = 100
	DefaultHighPriorityBonus   = 50
	DefaultMediumPriorityBonus = 25
	DefaultTeamJoined          = 50
	DefaultProjectCreated      = 200
)

// LeaderboardKey is the sorted set holding user points for the leaderboard.
const LeaderboardKey = "leaderboard:points"

// Service owns the rule configuration lookup and the points ledger.
// Credit is the only path that changes a user's point total.
type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

// NewService creates a points Service.
func NewService(db *gorm.DB, c cache.Cache, logger *zap.Logger) *Service {
	return &Service{db: db, cache: c, logger: logger}
}

// ConfigInt returns the active config value for name, or def when the row is
// missing, inactive, or not a number. Missing config is not an error.
func (svc *Service) ConfigInt(ctx context.Context, name string, def int) int {
	var row model.GamificationConfig
	err := svc.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			svc.logger.Warn("config lookup failed", zap.String("name", name), zap.Error(err))
		}
		return def
	}
	var v float64
	if err := json.Unmarshal(row.Value, &v); err != nil {
		return def
	}
	return int(v)
}

// ConfigFloat is ConfigInt for fractional values (multipliers).
func (svc *Service) ConfigFloat(ctx context.Context, name string, def float64) float64 {
	var row model.GamificationConfig
	err := svc.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&row).Error
	if err != nil {
		return def
	}
	var v float64
	if err := json.Unmarshal(row.Value, &v); err != nil {
		return def
	}
	return v
}

// CompletionPoints computes the payout for completing the given task:
// the base value plus a priority bonus.
func (svc *Service) CompletionPoints(ctx context.Context, task *model.Task) int {
	pts := svc.ConfigInt(ctx, CfgTaskCompleted, DefaultTaskCompleted)
	switch task.Priority {
	case model.TaskPriorityHigh:
		pts += svc.ConfigInt(ctx, CfgHighPriorityBonus, DefaultHighPriorityBonus)
	case model.TaskPriorityMedium:
		pts += svc.ConfigInt(ctx, CfgMediumPriorityBonus, DefaultMediumPriorityBonus)
	}
	return pts
}

// Credit adds amount to the user's point total with an atomic in-database
// increment, then refreshes the leaderboard entry (best-effort).
func (svc *Service) Credit(ctx context.Context, userID int64, amount int) error {
	res := svc.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	var user model.User
	if err := svc.db.WithContext(ctx).Select("id, points").First(&user, userID).Error; err == nil {
		if err := svc.cache.ZAdd(ctx, LeaderboardKey, float64(user.Points), strconv.FormatInt(userID, 10)); err != nil {
			svc.logger.Debug("leaderboard refresh skipped", zap.Error(err))
		}
	}
	return nil
}

package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ryotaku/taskforge/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry describes one activity to record.
type Entry struct {
	UserID        int64
	Action        model.ActionType
	Points        int
	TaskID        *int64
	ProjectID     *int64
	TeamID        *int64
	AchievementID *int64
	Metadata      map[string]interface{}
}

// Service appends immutable activity records. Writes are synchronous: the
// streak tracker reads today's rows within the same request, so the row must
// be visible before the pipeline moves on.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates an activity Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Log appends one activity row and returns it.
func (svc *Service) Log(ctx context.Context, e Entry) (*model.ActivityLog, error) {
	row := &model.ActivityLog{
		UserID:        e.UserID,
		ActionType:    e.Action,
		PointsEarned:  e.Points,
		TaskID:        e.TaskID,
		ProjectID:     e.ProjectID,
		TeamID:        e.TeamID,
		AchievementID: e.AchievementID,
	}
	if len(e.Metadata) > 0 {
		raw, _ := json.Marshal(e.Metadata)
		row.Metadata = datatypes.JSON(raw)
	}
	if err := svc.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// HasActivityOn reports whether the user has at least one row with the given
// action dated on day (local calendar date).
func (svc *Service) HasActivityOn(ctx context.Context, userID int64, action model.ActionType, day time.Time) (bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var rows []model.ActivityLog
	err := svc.db.WithContext(ctx).
		Select("id").
		Where("user_id = ? AND action_type = ? AND timestamp >= ? AND timestamp < ?",
			userID, action, start, end).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Recent returns the user's newest activity rows, newest first.
func (svc *Service) Recent(ctx context.Context, userID int64, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []model.ActivityLog
	err := svc.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

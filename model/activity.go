package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActionType categorizes an activity log entry.
type ActionType = string

const (
	ActionTaskCreated       ActionType = "task_created"
	ActionTaskCompleted     ActionType = "task_completed"
	ActionTaskAssigned      ActionType = "task_assigned"
	ActionProjectCreated    ActionType = "project_created"
	ActionTeamJoined        ActionType = "team_joined"
	ActionAchievementEarned ActionType = "achievement_earned"
	ActionStreakMaintained  ActionType = "streak_maintained"
)

// ActivityLog is the append-only audit trail of point-earning actions.
// Rows are never mutated or deleted; queries read newest first.
type ActivityLog struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64      `gorm:"index:idx_activity_user;not null" json:"user_id"`
	ActionType   ActionType `gorm:"size:20;index:idx_activity_action;not null" json:"action_type"`
	PointsEarned int        `gorm:"default:0" json:"points_earned"`

	TaskID        *int64 `json:"task_id"`
	ProjectID     *int64 `json:"project_id"`
	TeamID        *int64 `json:"team_id"`
	AchievementID *int64 `json:"achievement_id"`

	Metadata  datatypes.JSON `json:"metadata"`
	Timestamp time.Time      `gorm:"index:idx_activity_ts;autoCreateTime" json:"timestamp"`
}

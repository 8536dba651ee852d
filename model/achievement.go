package model

import "time"

// AchievementType selects the progress formula used by the evaluator.
// CategorySpecific and TeamChallenge have no automatic formula; they are
// awarded explicitly.
type AchievementType = string

const (
	AchievementTaskCompletion   AchievementType = "task_completion"
	AchievementStreak           AchievementType = "streak"
	AchievementCollaboration    AchievementType = "collaboration"
	AchievementLeadership       AchievementType = "leadership"
	AchievementCategorySpecific AchievementType = "category_specific"
	AchievementTeamChallenge    AchievementType = "team_challenge"
)

// Achievement is a named milestone with a numeric threshold.
type Achievement struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Type        AchievementType `gorm:"size:20;index:idx_achievement_type;not null" json:"type"`
	CategoryID  *int64          `json:"category_id"`

	RequiredValue int `gorm:"not null" json:"required_value"`
	PointsReward  int `gorm:"default:100" json:"points_reward"`

	BadgeIcon  string `gorm:"size:10;default:🏆" json:"badge_icon"`
	BadgeColor string `gorm:"size:7;default:#FFD700" json:"badge_color"`

	IsActive bool `gorm:"default:true" json:"is_active"`
	IsHidden bool `gorm:"default:false" json:"is_hidden"` // hidden until unlocked

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement records one user's progress toward one achievement.
// The composite unique index is what makes awarding race-safe: a row is
// created at most once per (user, achievement), and creation is the earn
// event. EarnedAt is set at creation and never moves afterwards.
type UserAchievement struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	AchievementID int64     `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`
	Progress      int       `gorm:"default:0" json:"progress"`
	EarnedAt      time.Time `gorm:"autoCreateTime" json:"earned_at"`
}

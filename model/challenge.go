package model

import "time"

// ChallengeStatus is the team challenge state machine:
// upcoming → active → completed | cancelled.
type ChallengeStatus = string

const (
	ChallengeStatusUpcoming  ChallengeStatus = "upcoming"
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusCompleted ChallengeStatus = "completed"
	ChallengeStatusCancelled ChallengeStatus = "cancelled"
)

// ChallengeTarget is what a challenge counts. Only TargetTasksCompleted has
// an automatic aggregation trigger; the other targets need an explicit
// external trigger.
type ChallengeTarget = string

const (
	TargetTasksCompleted     ChallengeTarget = "tasks_completed"
	TargetProjectsFinished   ChallengeTarget = "projects_finished"
	TargetPointsEarned       ChallengeTarget = "points_earned"
	TargetCollaborationScore ChallengeTarget = "collaboration_score"
)

// TeamChallenge is a time-boxed team goal with a one-time completion reward.
// CurrentProgress only moves while Status is active and now is inside
// [StartDate, EndDate]; the active→completed transition pays out exactly once.
type TeamChallenge struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	TeamID      int64  `gorm:"index:idx_challenge_team;not null" json:"team_id"`

	TargetType      ChallengeTarget `gorm:"size:50;not null" json:"target_type"`
	TargetValue     int             `gorm:"not null" json:"target_value"`
	CurrentProgress int             `gorm:"default:0" json:"current_progress"`

	StartDate time.Time       `gorm:"not null" json:"start_date"`
	EndDate   time.Time       `gorm:"not null" json:"end_date"`
	Status    ChallengeStatus `gorm:"size:20;default:upcoming;index:idx_challenge_status" json:"status"`

	PointsReward  int    `gorm:"default:500" json:"points_reward"`
	BadgeRewardID *int64 `json:"badge_reward_id"`

	CreatedBy int64     `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

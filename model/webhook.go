package model

import "time"

// WebhookPlatform selects the outbound payload format.
type WebhookPlatform = string

const (
	PlatformDiscord WebhookPlatform = "discord"
	PlatformTeams   WebhookPlatform = "teams"
)

// WebhookConfig is one outbound notification target for a team.
type WebhookConfig struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	Platform   WebhookPlatform `gorm:"size:20;not null" json:"platform"`
	WebhookURL string          `gorm:"size:500;not null" json:"webhook_url"`
	TeamID     *int64          `gorm:"index:idx_webhook_team" json:"team_id"`

	NotifyTaskCompletion bool `gorm:"default:true" json:"notify_task_completion"`
	NotifyAchievements   bool `gorm:"default:true" json:"notify_achievements"`
	NotifyTeamChallenges bool `gorm:"default:true" json:"notify_team_challenges"`
	NotifyMilestones     bool `gorm:"default:true" json:"notify_milestones"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

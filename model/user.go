package model

import "time"

// User is an application account plus its gamification counters.
// Points and streak fields are mutated only through the gamify services.
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Username     string `gorm:"size:32;not null" json:"username"`
	PasswordHash string `gorm:"size:64;not null" json:"-"`
	Status       int    `gorm:"default:1" json:"status"` // 0=banned 1=normal

	Points           int        `gorm:"default:0" json:"points"`
	CurrentStreak    int        `gorm:"default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"default:0" json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

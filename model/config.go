package model

import (
	"time"

	"gorm.io/datatypes"
)

// GamificationConfig is a named rule value (point amounts, bonuses).
// Lookups fall back to a caller-supplied default when the row is missing or
// inactive, so the system runs without seed data.
type GamificationConfig struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Value       datatypes.JSON `json:"value"`
	Description string         `gorm:"type:text" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

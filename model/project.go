package model

import "time"

// Project groups tasks under an owner.
type Project struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	OwnerID     int64      `gorm:"index:idx_project_owner;not null" json:"owner_id"`
	Emoji       string     `gorm:"size:10" json:"emoji"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	StartDate   time.Time  `gorm:"autoCreateTime" json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

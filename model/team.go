package model

import "time"

// Category classifies teams (classroom, software, sales, ...).
type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	DisplayName string    `gorm:"size:100" json:"display_name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:50;default:📚" json:"icon"`
	Color       string    `gorm:"size:7;default:#3B82F6" json:"color"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Team is a group of users competing together.
type Team struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	CategoryID      int64     `gorm:"index" json:"category_id"`
	AdministratorID int64     `gorm:"not null" json:"administrator_id"`
	Avatar          string    `gorm:"size:10;default:👥" json:"avatar"`
	MaxMembers      int       `gorm:"default:50" json:"max_members"`
	IsPublic        bool      `gorm:"default:true" json:"is_public"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TeamRole is a member's role within a team.
type TeamRole = string

const (
	TeamRoleMember    TeamRole = "member"
	TeamRoleModerator TeamRole = "moderator"
	TeamRoleAdmin     TeamRole = "admin"
)

// TeamMembership links a user to a team. The composite unique index makes
// concurrent joins collapse into a single row instead of duplicating members.
type TeamMembership struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64     `gorm:"uniqueIndex:idx_member_user_team;not null" json:"user_id"`
	TeamID            int64     `gorm:"uniqueIndex:idx_member_user_team;index:idx_member_team;not null" json:"team_id"`
	Role              TeamRole  `gorm:"size:20;default:member" json:"role"`
	PointsContributed int       `gorm:"default:0" json:"points_contributed"`
	JoinedAt          time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

package model

import "gorm.io/gorm"

// allModels lists every model to be auto-migrated.
var allModels = []interface{}{
	&User{},
	&Project{},
	&Task{},
	&Category{},
	&Team{},
	&TeamMembership{},
	&Achievement{},
	&UserAchievement{},
	&TeamChallenge{},
	&GamificationConfig{},
	&WebhookConfig{},
	&ActivityLog{},
}

// AutoMigrate creates or updates all tables in the given database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}

package rest

import (
	"github.com/ryotaku/taskforge/model"
	"gorm.io/datatypes"
)

func defaultCategories() []model.Category {
	return []model.Category{
		{
			Name:        "classroom",
			DisplayName: "Classroom Team",
			Description: "Educational teams and academic projects",
			Icon:        "📚",
			Color:       "#3B82F6",
		},
		{
			Name:        "software",
			DisplayName: "Software Development Team",
			Description: "Software development and engineering teams",
			Icon:        "💻",
			Color:       "#10B981",
		},
		{
			Name:        "sales",
			DisplayName: "Sales Team",
			Description: "Sales and business development teams",
			Icon:        "💼",
			Color:       "#F59E0B",
		},
	}
}

func defaultAchievements() []model.Achievement {
	return []model.Achievement{
		{
			Name: "First Steps", Description: "Complete your first task",
			Type: model.AchievementTaskCompletion, RequiredValue: 1,
			PointsReward: 100, BadgeIcon: "🎯", BadgeColor: "#10B981", IsActive: true,
		},
		{
			Name: "Getting Started", Description: "Complete 10 tasks",
			Type: model.AchievementTaskCompletion, RequiredValue: 10,
			PointsReward: 250, BadgeIcon: "🚀", BadgeColor: "#3B82F6", IsActive: true,
		},
		{
			Name: "Task Master", Description: "Complete 50 tasks",
			Type: model.AchievementTaskCompletion, RequiredValue: 50,
			PointsReward: 500, BadgeIcon: "👑", BadgeColor: "#F59E0B", IsActive: true,
		},
		{
			Name: "Legendary Contributor", Description: "Complete 100 tasks",
			Type: model.AchievementTaskCompletion, RequiredValue: 100,
			PointsReward: 1000, BadgeIcon: "🏆", BadgeColor: "#EF4444", IsActive: true,
		},
		{
			Name: "Consistent", Description: "Maintain a 3-day streak",
			Type: model.AchievementStreak, RequiredValue: 3,
			PointsReward: 150, BadgeIcon: "🔥", BadgeColor: "#F97316", IsActive: true,
		},
		{
			Name: "Dedicated", Description: "Maintain a 7-day streak",
			Type: model.AchievementStreak, RequiredValue: 7,
			PointsReward: 300, BadgeIcon: "⚡", BadgeColor: "#8B5CF6", IsActive: true,
		},
		{
			Name: "Unstoppable", Description: "Maintain a 30-day streak",
			Type: model.AchievementStreak, RequiredValue: 30,
			PointsReward: 1000, BadgeIcon: "💎", BadgeColor: "#06B6D4", IsActive: true,
		},
		{
			Name: "Team Player", Description: "Join your first team",
			Type: model.AchievementCollaboration, RequiredValue: 1,
			PointsReward: 200, BadgeIcon: "🤝", BadgeColor: "#10B981", IsActive: true,
		},
		{
			Name: "Master Collaborator", Description: "Complete 25 assigned tasks",
			Type: model.AchievementCollaboration, RequiredValue: 25,
			PointsReward: 500, BadgeIcon: "🌟", BadgeColor: "#F59E0B", IsActive: true,
		},
		{
			Name: "Leader", Description: "Create your first project",
			Type: model.AchievementLeadership, RequiredValue: 1,
			PointsReward: 300, BadgeIcon: "📋", BadgeColor: "#8B5CF6", IsActive: true,
		},
		{
			Name: "Project Master", Description: "Complete 5 projects",
			Type: model.AchievementLeadership, RequiredValue: 5,
			PointsReward: 750, BadgeIcon: "🎖️", BadgeColor: "#EF4444", IsActive: true,
		},
	}
}

func defaultConfigs() []model.GamificationConfig {
	return []model.GamificationConfig{
		{Name: "task_created", Value: datatypes.JSON("25"), Description: "Points awarded for creating a task", IsActive: true},
		{Name: "task_completed", Value: datatypes.JSON("100"), Description: "Base points for completing a task", IsActive: true},
		{Name: "high_priority_bonus", Value: datatypes.JSON("50"), Description: "Bonus points for completing high priority tasks", IsActive: true},
		{Name: "medium_priority_bonus", Value: datatypes.JSON("25"), Description: "Bonus points for completing medium priority tasks", IsActive: true},
		{Name: "team_joined", Value: datatypes.JSON("50"), Description: "Points for joining a team", IsActive: true},
		{Name: "project_created", Value: datatypes.JSON("200"), Description: "Points for creating a project", IsActive: true},
		{Name: "streak_multiplier", Value: datatypes.JSON("1.5"), Description: "Multiplier for maintaining streaks", IsActive: true},
	}
}

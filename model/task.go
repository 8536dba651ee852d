package model

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus = string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority influences the points awarded on completion.
type TaskPriority = string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task is a unit of work inside a project. AssignedTo is nil until the task
// is picked up; only the assignee earns completion points.
type Task struct {
	ID          int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   int64        `gorm:"index:idx_task_project;not null" json:"project_id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"size:20;default:todo" json:"status"`
	Priority    TaskPriority `gorm:"size:10;default:medium" json:"priority"`
	CreatedBy   int64        `gorm:"not null" json:"created_by"`
	AssignedTo  *int64       `gorm:"index:idx_task_assignee" json:"assigned_to"`

	// ExperienceReward records the points paid out when the task was completed.
	ExperienceReward int        `gorm:"default:0" json:"experience_reward"`
	CompletedAt      *time.Time `json:"completed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

package models

import "time"

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
	TaskStatusOnHold     = "on-hold"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task belongs to a project and is removed with it.
type Task struct {
	ID           string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title        string      `gorm:"size:300;not null" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	ProjectID    string      `gorm:"type:varchar(36);index;not null" json:"project_id"`
	Project      *Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AssignedToID *string     `gorm:"type:varchar(36);index" json:"assigned_to_id"`
	AssignedTo   *TeamMember `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	CreatedByID  string      `gorm:"type:varchar(36);index;not null" json:"created_by_id"`
	CreatedBy    *TeamMember `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Priority     string      `gorm:"size:20;default:medium" json:"priority"` // low, medium, high
	Status       string      `gorm:"size:20;default:pending" json:"status"`  // pending, in-progress, completed, on-hold
	DueDate      *time.Time  `gorm:"type:date" json:"due_date"`
	Issues       []Issue     `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"issues,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// AssigneeID returns the assignee id or "" when unassigned.
func (t *Task) AssigneeID() string {
	if t.AssignedToID == nil {
		return ""
	}
	return *t.AssignedToID
}

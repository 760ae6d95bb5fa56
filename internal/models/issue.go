package models

import "time"

const (
	IssueStatusOpen     = "open"
	IssueStatusInReview = "in-review"
	IssueStatusResolved = "resolved"
	IssueStatusWontFix  = "wont-fix"

	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Issue is reported against a task and removed with it.
type Issue struct {
	ID           string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title        string      `gorm:"size:300;not null" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	TaskID       string      `gorm:"type:varchar(36);index;not null" json:"task_id"`
	Task         *Task       `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Severity     string      `gorm:"size:20;default:medium" json:"severity"` // low, medium, high, critical
	Status       string      `gorm:"size:20;default:open" json:"status"`     // open, in-review, resolved, wont-fix
	ReportedByID string      `gorm:"type:varchar(36);index;not null" json:"reported_by_id"`
	ReportedBy   *TeamMember `gorm:"foreignKey:ReportedByID" json:"reported_by,omitempty"`
	AssignedToID *string     `gorm:"type:varchar(36);index" json:"assigned_to_id"`
	AssignedTo   *TeamMember `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"assigned_to,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	ResolvedAt   *time.Time  `json:"resolved_at"`
}

func (Issue) TableName() string { return "issues" }

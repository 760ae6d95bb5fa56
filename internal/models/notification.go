package models

import "time"

// Notification types emitted by the mutation services.
const (
	NotificationTaskAssigned    = "task-assigned"
	NotificationTaskCompleted   = "task-completed"
	NotificationScheduleUpdated = "schedule-updated"
	NotificationIssueAssigned   = "issue-assigned"
	NotificationIssueReported   = "issue-reported"
	NotificationIssueResolved   = "issue-resolved"
	NotificationProjectCreated  = "project-created"
)

// Notification is a persisted message for a single recipient. Only IsRead is
// ever updated after creation.
type Notification struct {
	ID                 string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID             string      `gorm:"type:varchar(36);index;not null" json:"user_id"`
	User               *TeamMember `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Type               string      `gorm:"size:50;not null" json:"type"`
	Title              string      `gorm:"size:300;not null" json:"title"`
	Message            string      `gorm:"type:text" json:"message"`
	RelatedToTaskID    *string     `gorm:"type:varchar(36)" json:"related_to_task_id"`
	RelatedToTask      *Task       `gorm:"foreignKey:RelatedToTaskID;constraint:OnDelete:SET NULL" json:"related_to_task,omitempty"`
	RelatedToProjectID *string     `gorm:"type:varchar(36)" json:"related_to_project_id"`
	RelatedToProject   *Project    `gorm:"foreignKey:RelatedToProjectID;constraint:OnDelete:SET NULL" json:"related_to_project,omitempty"`
	IsRead             bool        `gorm:"default:false;index" json:"is_read"`
	CreatedAt          time.Time   `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

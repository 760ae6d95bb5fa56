package models

import (
	"math"
	"time"
)

const (
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on-hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// Project groups tasks. Progress is derived from the task list and is never
// written by clients.
type Project struct {
	ID          string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string      `gorm:"size:200;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Progress    int         `gorm:"default:0" json:"progress"`
	Status      string      `gorm:"size:20;default:active" json:"status"` // active, on-hold, completed, archived
	Deadline    *time.Time  `gorm:"type:date" json:"deadline"`
	CreatedByID string      `gorm:"type:varchar(36);index;not null" json:"created_by_id"`
	CreatedBy   *TeamMember `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Tasks       []Task      `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// ComputeProgress returns the rounded percentage of completed tasks, 0 when
// there are none.
func ComputeProgress(tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == TaskStatusCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(tasks)) * 100))
}

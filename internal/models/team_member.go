package models

import (
	"time"
)

const (
	MemberStatusActive  = "active"
	MemberStatusAway    = "away"
	MemberStatusOffline = "offline"
)

// TeamMember is a user of the system. Role is stored as entered (e.g. "Manager",
// "Developer"); privilege tiers are derived from it by the access package.
type TeamMember struct {
	ID              string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name            string     `gorm:"size:200;not null" json:"name"`
	Email           string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone           *string    `gorm:"size:50" json:"phone"`
	Role            string     `gorm:"size:50;not null" json:"role"`
	Status          string     `gorm:"size:20;default:active" json:"status"` // active, away, offline
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	LastLogin       *time.Time `json:"last_login"`
	AssignedTasks   []Task     `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"assigned_tasks,omitempty"`
	CreatedProjects []Project  `gorm:"foreignKey:CreatedByID" json:"created_projects,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (TeamMember) TableName() string { return "team_members" }

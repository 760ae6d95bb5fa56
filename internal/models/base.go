package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID returns a fresh UUID string for primary keys.
func newID() string {
	return uuid.New().String()
}

func assignID(id *string) {
	if *id == "" {
		*id = newID()
	}
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	assignID(&n.ID)
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog records a destructive action taken by an administrator.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    uuid.UUID `gorm:"type:uuid;index" json:"actorId"`
	Action     string    `gorm:"type:varchar(32);not null" json:"action"`
	EntityType string    `gorm:"type:varchar(32);not null" json:"entityType"`
	EntityID   string    `gorm:"type:varchar(255);not null" json:"entityId"`
	Details    string    `gorm:"type:text" json:"details,omitempty"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

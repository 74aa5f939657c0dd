package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLog records admin mutations for the audit trail.
type ActivityLog struct {
	gorm.Model

	ActorID    uint   `gorm:"not null;index"`
	Action     string `gorm:"not null"` // e.g. "registration.update_status"
	EntityType string `gorm:"not null"`
	EntityID   uint
	Metadata   datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Actor User `gorm:"foreignKey:ActorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// CheckIn is an append-oriented log: each mark creates a new row, nothing
// is updated in place.
type CheckIn struct {
	gorm.Model

	UserID     uint   `gorm:"not null;index"`
	Type       string `gorm:"not null"` // "conference" or "accommodation"
	Status     string `gorm:"not null"` // "checked-in" or "checked-out"
	MarkedByID uint   `gorm:"not null"`
	MarkedAt   time.Time
	Location   string
	Notes      string

	// Relationships
	User     User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	MarkedBy User `gorm:"foreignKey:MarkedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a schedule entry (opening ceremony, committee session, social).
type Event struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Day         int `gorm:"not null;default:1"`
	Venue       string
	StartsAt    time.Time `gorm:"not null"`
	EndsAt      time.Time `gorm:"not null"`
	Active      bool      `gorm:"not null;default:true"`
	CreatedByID uint      `gorm:"not null"`

	// Relationships
	CreatedBy User `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

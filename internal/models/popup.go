package models

import (
	"time"

	"gorm.io/gorm"
)

// Popup is an announcement banner shown on the public site.
type Popup struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Body        string
	ImagePath   string
	LinkURL     string
	Active      bool `gorm:"not null;default:false"`
	StartsAt    *time.Time
	EndsAt      *time.Time
	CreatedByID uint `gorm:"not null"`

	// Relationships
	CreatedBy User `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

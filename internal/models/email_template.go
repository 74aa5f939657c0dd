package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EmailTemplate struct {
	gorm.Model

	Name     string `gorm:"uniqueIndex;not null"`
	Subject  string `gorm:"not null"`
	HTMLBody string
	TextBody string
	// Names of the {{placeholders}} the bodies expect, for admin UI hints.
	Variables datatypes.JSON `gorm:"type:jsonb"`
	Active    bool           `gorm:"not null;default:true"`
}

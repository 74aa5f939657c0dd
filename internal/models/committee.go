package models

import "gorm.io/gorm"

type Committee struct {
	gorm.Model

	Name            string `gorm:"uniqueIndex;not null"`
	Abbreviation    string
	Agenda          string
	Description     string
	Capacity        int  `gorm:"not null;default:0"`
	RegisteredCount int  `gorm:"not null;default:0"`
	Active          bool `gorm:"not null;default:true"`
	CreatedByID     uint `gorm:"not null"`

	// Relationships
	CreatedBy  User        `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Portfolios []Portfolio `gorm:"foreignKey:CommitteeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

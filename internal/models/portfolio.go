package models

import "gorm.io/gorm"

type Portfolio struct {
	gorm.Model

	CommitteeID uint   `gorm:"not null;uniqueIndex:idx_committee_portfolio"`
	Name        string `gorm:"not null;uniqueIndex:idx_committee_portfolio"`
	Allocated   bool   `gorm:"not null;default:false"`

	// Relationships
	Committee Committee `gorm:"foreignKey:CommitteeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

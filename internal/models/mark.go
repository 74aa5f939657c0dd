package models

import "gorm.io/gorm"

// Mark is a judge's score for a delegate in a committee.
type Mark struct {
	gorm.Model

	UserID      uint    `gorm:"not null;uniqueIndex:idx_mark_user_committee"`
	CommitteeID uint    `gorm:"not null;uniqueIndex:idx_mark_user_committee"`
	Score       float64 `gorm:"not null"`
	Note        string
	MarkedByID  uint `gorm:"not null"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Committee Committee `gorm:"foreignKey:CommitteeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	MarkedBy  User      `gorm:"foreignKey:MarkedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

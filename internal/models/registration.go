package models

import "gorm.io/gorm"

type Registration struct {
	gorm.Model

	UserID uint `gorm:"not null;uniqueIndex"`

	Gender      string `gorm:"not null"`
	Institution string `gorm:"not null"`
	IsInternal  bool   `gorm:"not null;default:false"`

	// Three ranked committee/portfolio preferences, in order.
	Preference1Committee string `gorm:"not null"`
	Preference1Portfolio string `gorm:"not null"`
	Preference2Committee string `gorm:"not null"`
	Preference2Portfolio string `gorm:"not null"`
	Preference3Committee string `gorm:"not null"`
	Preference3Portfolio string `gorm:"not null"`

	IDDocumentPath string `gorm:"not null"`
	MUNResumePath  string

	Status        string `gorm:"not null;default:pending;index"`
	PaymentStatus string `gorm:"not null;default:pending;index"`

	NeedsAccommodation    bool `gorm:"not null;default:false"`
	AccommodationApproved bool `gorm:"not null;default:false"`

	AllocatedCommitteeID *uint
	AllocatedPortfolioID *uint

	// Relationships
	User               User       `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AllocatedCommittee *Committee `gorm:"foreignKey:AllocatedCommitteeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	AllocatedPortfolio *Portfolio `gorm:"foreignKey:AllocatedPortfolioID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}

package models

import "gorm.io/gorm"

// Pricing rows are append-only: the latest row is the current fee schedule
// and older rows remain as history. All amounts are in minor units.
type Pricing struct {
	gorm.Model

	InternalDelegateFee int64 `gorm:"not null"`
	ExternalDelegateFee int64 `gorm:"not null"`
	AccommodationCharge int64 `gorm:"not null;default:0"`
	EarlyBirdDiscount   int64 `gorm:"not null;default:0"`
	GroupDiscount       int64 `gorm:"not null;default:0"`
	Currency            string `gorm:"not null;default:INR"`
	CreatedByID         uint   `gorm:"not null"`

	// Relationships
	CreatedBy User `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

package models

import "gorm.io/gorm"

type Payment struct {
	gorm.Model

	UserID         uint  `gorm:"not null;index"`
	RegistrationID *uint `gorm:"index"`

	// Amount in the currency's minor unit (paise for INR).
	Amount   int64  `gorm:"not null"`
	Currency string `gorm:"not null;default:INR"`
	Status   string `gorm:"not null;default:pending;index"`

	GatewayOrderID   string `gorm:"index"`
	GatewayPaymentID string
	GatewaySignature string
	Receipt          string
	InvoiceURL       string

	RefundID     string
	RefundReason string

	// Relationships
	User         User          `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Registration *Registration `gorm:"foreignKey:RegistrationID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}

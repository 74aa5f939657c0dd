package models

import "gorm.io/gorm"

type ContactMessage struct {
	gorm.Model

	Name    string `gorm:"not null"`
	Email   string `gorm:"not null"`
	Phone   string
	Subject string
	Message string `gorm:"not null"`
	Status  string `gorm:"not null;default:new;index"` // "new", "seen", "resolved"
}

package models

import "gorm.io/gorm"

type Attendance struct {
	gorm.Model

	UserID      uint `gorm:"not null;uniqueIndex:idx_attendance_session"`
	CommitteeID uint `gorm:"not null;uniqueIndex:idx_attendance_session"`
	Session     int  `gorm:"not null;uniqueIndex:idx_attendance_session"`
	Present     bool `gorm:"not null;default:false"`
	MarkedByID  uint `gorm:"not null"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Committee Committee `gorm:"foreignKey:CommitteeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	MarkedBy  User      `gorm:"foreignKey:MarkedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

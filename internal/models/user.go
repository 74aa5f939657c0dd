package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	FirstName    string `gorm:"not null"`
	LastName     string
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Phone        string
	Role         string `gorm:"not null;default:DELEGATE;index"`
	Institution  string
	IsInternal   bool `gorm:"not null;default:false"`
	Active       bool `gorm:"not null;default:true"`

	// Relationships
	Registration *Registration `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Payments     []Payment     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CheckIns     []CheckIn     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

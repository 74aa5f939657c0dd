package models

import "gorm.io/gorm"

// Resource is an uploaded file shown to delegates (background guides,
// rules of procedure, logos).
type Resource struct {
	gorm.Model

	Title        string `gorm:"not null"`
	Description  string
	Purpose      string `gorm:"not null"` // storage purpose the file was saved under
	FilePath     string `gorm:"not null"`
	ContentType  string
	SizeBytes    int64
	CommitteeID  *uint `gorm:"index"` // nil for conference-wide resources
	Visible      bool  `gorm:"not null;default:true"`
	UploadedByID uint  `gorm:"not null"`

	// Relationships
	Committee  *Committee `gorm:"foreignKey:CommitteeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	UploadedBy User       `gorm:"foreignKey:UploadedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

package models

import "time"

// BusinessProfile groups the connections and mappings of one business.
type BusinessProfile struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:255;not null"`
	Description  string
	ContactEmail string `gorm:"size:255"`
	ContactPhone string `gorm:"size:50"`
	IsActive     bool   `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	PlatformConnections []PlatformConnection `gorm:"constraint:OnDelete:CASCADE"`
	DatabaseConnections []DatabaseConnection `gorm:"constraint:OnDelete:CASCADE"`
}

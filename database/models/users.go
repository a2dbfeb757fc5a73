package models

import "time"

type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"size:100;uniqueIndex;not null"`
	Email          string `gorm:"size:255;uniqueIndex;not null"`
	HashedPassword string `gorm:"size:255;not null"`
	FullName       string `gorm:"size:255"`

	IsActive    bool `gorm:"default:true"`
	IsSuperuser bool `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

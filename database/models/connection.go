package models

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

type PlatformType string

const (
	Shopify     PlatformType = "shopify"
	WooCommerce PlatformType = "woocommerce"
)

type ConnectionStatus string

const (
	ConnActive   ConnectionStatus = "active"
	ConnInactive ConnectionStatus = "inactive"
	ConnError    ConnectionStatus = "error"
)

type PlatformConnection struct {
	ID                uint `gorm:"primaryKey"`
	BusinessProfileID uint `gorm:"index;not null"`

	Name         string       `gorm:"size:255;not null"`
	PlatformType PlatformType `gorm:"size:50;not null"`

	ShopURL string `gorm:"size:500;not null"`
	// Credentials are encrypted at rest. APISecret is WooCommerce-only,
	// AccessToken is Shopify-only.
	APIKey      string
	APISecret   string
	AccessToken string

	Status   ConnectionStatus `gorm:"size:50;default:'active'"`
	LastSync sql.NullTime
	IsActive bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type DatabaseConnection struct {
	ID                uint `gorm:"primaryKey"`
	BusinessProfileID uint `gorm:"index;not null"`

	Name   string `gorm:"size:255;not null"`
	Engine string `gorm:"size:50;not null"` // postgres, mysql, mssql, sqlite

	Host         string `gorm:"size:500;not null"`
	Port         int
	DatabaseName string `gorm:"size:255;not null"`
	Username     string // encrypted
	Password     string // encrypted

	Params datatypes.JSONMap

	Status   ConnectionStatus `gorm:"size:50;default:'active'"`
	IsActive bool             `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

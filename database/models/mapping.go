package models

import (
	"database/sql"
	"sort"
	"time"

	"gorm.io/datatypes"
)

type SyncDirection string

const (
	FromPlatform  SyncDirection = "from_platform" // platform -> SQL
	ToPlatform    SyncDirection = "to_platform"   // SQL -> platform
	Bidirectional SyncDirection = "bidirectional"
)

// FieldMapping pairs one database table with one platform resource.
type FieldMapping struct {
	ID                   uint `gorm:"primaryKey"`
	PlatformConnectionID uint `gorm:"index;not null"`
	DatabaseConnectionID uint `gorm:"index;not null"`

	PlatformConnection PlatformConnection
	DatabaseConnection DatabaseConnection

	Name string `gorm:"size:255;not null"`

	// Database side
	DBTable  string            `gorm:"size:255;not null"`
	DBFields datatypes.JSONMap `gorm:"not null"` // db column -> platform field

	// Platform side
	PlatformResource string            `gorm:"size:100;not null"`
	PlatformFields   datatypes.JSONMap `gorm:"not null"` // platform field -> db column

	SyncDirection       SyncDirection `gorm:"size:50;default:'bidirectional'"`
	SyncIntervalMinutes int           `gorm:"default:60"`
	TransformationRules datatypes.JSONMap

	IsActive bool `gorm:"default:true"`
	LastSync sql.NullTime

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlatformFieldMap returns the platform->db field table as plain strings.
func (m *FieldMapping) PlatformFieldMap() map[string]string {
	return fieldMap(m.PlatformFields)
}

// DBFieldMap returns the db->platform field table as plain strings.
func (m *FieldMapping) DBFieldMap() map[string]string {
	return fieldMap(m.DBFields)
}

// DBColumns returns the mapped database columns in a stable order, used as
// the projection for database-side fetches.
func (m *FieldMapping) DBColumns() []string {
	cols := make([]string, 0, len(m.DBFields))
	for col := range m.DBFields {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func fieldMap(raw datatypes.JSONMap) map[string]string {
	out := make(map[string]string, len(raw))
	for src, dst := range raw {
		if s, ok := dst.(string); ok {
			out[src] = s
		}
	}
	return out
}

package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SyncStatus string

const (
	SyncRunning   SyncStatus = "running"
	SyncCompleted SyncStatus = "completed"
	SyncFailed    SyncStatus = "failed"
)

// SyncLog is the durable record of one sync execution. A row is created in
// the running state before any I/O and sealed exactly once to completed or
// failed; it is never mutated afterward.
type SyncLog struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	FieldMappingID       uint      `gorm:"index;not null"`
	PlatformConnectionID uint      `gorm:"index;not null"`

	SyncDirection SyncDirection `gorm:"size:50;not null"`
	StartedAt     time.Time
	CompletedAt   sql.NullTime

	RecordsProcessed  int `gorm:"default:0"`
	RecordsSuccessful int `gorm:"default:0"`
	RecordsFailed     int `gorm:"default:0"`

	Status       SyncStatus `gorm:"size:50;not null"`
	ErrorMessage sql.NullString
	ErrorDetails datatypes.JSON // {"errors": [...]}
}

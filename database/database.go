package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	_ "github.com/joho/godotenv/autoload"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
)

// DB is the store for configuration entities and sync logs.
type DB interface {
	WithTx(fn func(tx DB) error) error

	// Profiles
	CreateProfile(ctx context.Context, p *models.BusinessProfile) error
	GetProfiles(ctx context.Context) ([]models.BusinessProfile, error)
	GetProfileByID(ctx context.Context, id uint) (*models.BusinessProfile, error)
	UpdateProfile(ctx context.Context, p *models.BusinessProfile) error
	DeleteProfile(ctx context.Context, id uint) error

	// Platform connections
	CreatePlatformConnection(ctx context.Context, c *models.PlatformConnection) error
	GetPlatformConnections(ctx context.Context, profileID uint) ([]models.PlatformConnection, error)
	GetPlatformConnectionByID(ctx context.Context, id uint) (*models.PlatformConnection, error)
	UpdatePlatformConnection(ctx context.Context, c *models.PlatformConnection) error
	DeletePlatformConnection(ctx context.Context, id uint) error

	// Database connections
	CreateDatabaseConnection(ctx context.Context, c *models.DatabaseConnection) error
	GetDatabaseConnections(ctx context.Context, profileID uint) ([]models.DatabaseConnection, error)
	GetDatabaseConnectionByID(ctx context.Context, id uint) (*models.DatabaseConnection, error)
	UpdateDatabaseConnection(ctx context.Context, c *models.DatabaseConnection) error
	DeleteDatabaseConnection(ctx context.Context, id uint) error

	// Field mappings
	CreateFieldMapping(ctx context.Context, m *models.FieldMapping) error
	GetFieldMappings(ctx context.Context, platformConnID, dbConnID uint) ([]models.FieldMapping, error)
	GetFieldMappingByID(ctx context.Context, id uint) (*models.FieldMapping, error)
	GetActiveFieldMappings(ctx context.Context) ([]models.FieldMapping, error)
	UpdateFieldMapping(ctx context.Context, m *models.FieldMapping) error
	DeleteFieldMapping(ctx context.Context, id uint) error
	CountMappingsForConnection(ctx context.Context, platformConnID, dbConnID uint) (int64, error)
	UpdateLastSync(ctx context.Context, mappingID uint, at time.Time) error

	// Sync logs
	CreateSyncLog(ctx context.Context, l *models.SyncLog) error
	UpdateSyncLog(ctx context.Context, l *models.SyncLog) error
	GetSyncLogsForMapping(ctx context.Context, mappingID uint, limit int) ([]models.SyncLog, error)
	GetRecentSyncLogs(ctx context.Context, limit int) ([]models.SyncLog, error)

	// Users
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpsertUser(ctx context.Context, u *models.User) error

	// Dashboard
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// DashboardStats aggregates entity and run counts for the dashboard endpoint.
type DashboardStats struct {
	BusinessProfiles    int64 `json:"business_profiles"`
	PlatformConnections int64 `json:"platform_connections"`
	DatabaseConnections int64 `json:"database_connections"`
	FieldMappings       int64 `json:"field_mappings"`
	ActiveFieldMappings int64 `json:"active_field_mappings"`
	SyncRuns            int64 `json:"sync_runs"`
	SyncRunsToday       int64 `json:"sync_runs_today"`
	FailedRunsToday     int64 `json:"failed_runs_today"`
}

type service struct {
	db *gorm.DB
}

var (
	dbName     = os.Getenv("DB_DATABASE")
	password   = os.Getenv("DB_PASSWORD")
	username   = os.Getenv("DB_USERNAME")
	port       = os.Getenv("DB_PORT")
	host       = os.Getenv("DB_HOST")
	schema     = os.Getenv("DB_SCHEMA")
	dbInstance *service
)

func New() DB {
	// Reuse Connection
	if dbInstance != nil {
		return dbInstance
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s", username, password, host, port, dbName, schema)

	db, err := gorm.Open(postgres.Open(connStr))
	if err != nil {
		log.Fatal(err)
	}
	err = db.AutoMigrate(
		&models.BusinessProfile{},
		&models.PlatformConnection{},
		&models.DatabaseConnection{},
		&models.FieldMapping{},
		&models.SyncLog{},
		&models.User{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	dbInstance = &service{
		db: db,
	}
	return dbInstance
}

func (s *service) WithTx(fn func(tx DB) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&service{db: tx})
	})
}

func (s *service) CreateProfile(ctx context.Context, p *models.BusinessProfile) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *service) GetProfiles(ctx context.Context) ([]models.BusinessProfile, error) {
	var profiles []models.BusinessProfile
	if err := s.db.WithContext(ctx).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *service) GetProfileByID(ctx context.Context, id uint) (*models.BusinessProfile, error) {
	var p models.BusinessProfile
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *service) UpdateProfile(ctx context.Context, p *models.BusinessProfile) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *service) DeleteProfile(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.BusinessProfile{}, id).Error
}

func (s *service) CreatePlatformConnection(ctx context.Context, c *models.PlatformConnection) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *service) GetPlatformConnections(ctx context.Context, profileID uint) ([]models.PlatformConnection, error) {
	q := s.db.WithContext(ctx).Model(&models.PlatformConnection{})
	if profileID != 0 {
		q = q.Where("business_profile_id = ?", profileID)
	}
	var conns []models.PlatformConnection
	if err := q.Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (s *service) GetPlatformConnectionByID(ctx context.Context, id uint) (*models.PlatformConnection, error) {
	var c models.PlatformConnection
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *service) UpdatePlatformConnection(ctx context.Context, c *models.PlatformConnection) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *service) DeletePlatformConnection(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.PlatformConnection{}, id).Error
}

func (s *service) CreateDatabaseConnection(ctx context.Context, c *models.DatabaseConnection) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *service) GetDatabaseConnections(ctx context.Context, profileID uint) ([]models.DatabaseConnection, error) {
	q := s.db.WithContext(ctx).Model(&models.DatabaseConnection{})
	if profileID != 0 {
		q = q.Where("business_profile_id = ?", profileID)
	}
	var conns []models.DatabaseConnection
	if err := q.Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (s *service) GetDatabaseConnectionByID(ctx context.Context, id uint) (*models.DatabaseConnection, error) {
	var c models.DatabaseConnection
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *service) UpdateDatabaseConnection(ctx context.Context, c *models.DatabaseConnection) error {
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *service) DeleteDatabaseConnection(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.DatabaseConnection{}, id).Error
}

func (s *service) CreateFieldMapping(ctx context.Context, m *models.FieldMapping) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *service) GetFieldMappings(ctx context.Context, platformConnID, dbConnID uint) ([]models.FieldMapping, error) {
	q := s.db.WithContext(ctx).Model(&models.FieldMapping{})
	if platformConnID != 0 {
		q = q.Where("platform_connection_id = ?", platformConnID)
	}
	if dbConnID != 0 {
		q = q.Where("database_connection_id = ?", dbConnID)
	}
	var mappings []models.FieldMapping
	if err := q.Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

func (s *service) GetFieldMappingByID(ctx context.Context, id uint) (*models.FieldMapping, error) {
	var m models.FieldMapping
	if err := s.db.WithContext(ctx).
		Preload("PlatformConnection").
		Preload("DatabaseConnection").
		First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *service) GetActiveFieldMappings(ctx context.Context) ([]models.FieldMapping, error) {
	var mappings []models.FieldMapping
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

func (s *service) UpdateFieldMapping(ctx context.Context, m *models.FieldMapping) error {
	return s.db.WithContext(ctx).Save(m).Error
}

func (s *service) DeleteFieldMapping(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.FieldMapping{}, id).Error
}

func (s *service) CountMappingsForConnection(ctx context.Context, platformConnID, dbConnID uint) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.FieldMapping{})
	if platformConnID != 0 {
		q = q.Where("platform_connection_id = ?", platformConnID)
	}
	if dbConnID != 0 {
		q = q.Where("database_connection_id = ?", dbConnID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (s *service) UpdateLastSync(ctx context.Context, mappingID uint, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.FieldMapping{}).
		Where("id = ?", mappingID).
		Update("last_sync", at).Error
}

func (s *service) CreateSyncLog(ctx context.Context, l *models.SyncLog) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *service) UpdateSyncLog(ctx context.Context, l *models.SyncLog) error {
	return s.db.WithContext(ctx).Save(l).Error
}

func (s *service) GetSyncLogsForMapping(ctx context.Context, mappingID uint, limit int) ([]models.SyncLog, error) {
	var logs []models.SyncLog
	if err := s.db.WithContext(ctx).
		Where("field_mapping_id = ?", mappingID).
		Order("started_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *service) GetRecentSyncLogs(ctx context.Context, limit int) ([]models.SyncLog, error) {
	var logs []models.SyncLog
	if err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).
		Where("username = ?", username).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *service) UpsertUser(ctx context.Context, u *models.User) error {
	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", u.Username).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.WithContext(ctx).Create(u).Error
	}
	if err != nil {
		return err
	}
	u.ID = existing.ID
	u.CreatedAt = existing.CreatedAt
	return s.db.WithContext(ctx).Save(u).Error
}

func (s *service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.BusinessProfiles, db.Model(&models.BusinessProfile{})},
		{&stats.PlatformConnections, db.Model(&models.PlatformConnection{})},
		{&stats.DatabaseConnections, db.Model(&models.DatabaseConnection{})},
		{&stats.FieldMappings, db.Model(&models.FieldMapping{})},
		{&stats.ActiveFieldMappings, db.Model(&models.FieldMapping{}).Where("is_active = ?", true)},
		{&stats.SyncRuns, db.Model(&models.SyncLog{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if err := db.Model(&models.SyncLog{}).
		Where("started_at >= ?", today).
		Count(&stats.SyncRunsToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.SyncLog{}).
		Where("started_at >= ? AND status = ?", today, models.SyncFailed).
		Count(&stats.FailedRunsToday).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// Package engine runs sync executions for field mappings and records their
// outcomes.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/databases"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/platform"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/secrets"
)

var (
	ErrMappingNotFound = errors.New("field mapping not found")
	ErrMappingInactive = errors.New("field mapping is not active")
	ErrSyncInProgress  = errors.New("sync already running for mapping")
)

// Stats accumulates the outcome of one sync pass.
type Stats struct {
	Processed  int
	Successful int
	Failed     int
	Errors     []string
}

func (s *Stats) add(other Stats) {
	s.Processed += other.Processed
	s.Successful += other.Successful
	s.Failed += other.Failed
	s.Errors = append(s.Errors, other.Errors...)
}

// ClientFactory constructs source/sink clients for a run. Injected so tests
// can substitute fakes.
type ClientFactory interface {
	Platform(ctx context.Context, conn *models.PlatformConnection) (connector.Client, error)
	Database(ctx context.Context, conn *models.DatabaseConnection) (connector.Client, error)
}

type clientFactory struct {
	secrets *secrets.Manager
}

// NewClientFactory builds the production factory, resolving stored
// credentials through the secrets manager.
func NewClientFactory(sec *secrets.Manager) ClientFactory {
	return &clientFactory{secrets: sec}
}

func (f *clientFactory) Platform(_ context.Context, conn *models.PlatformConnection) (connector.Client, error) {
	return platform.New(conn, f.secrets)
}

func (f *clientFactory) Database(ctx context.Context, conn *models.DatabaseConnection) (connector.Client, error) {
	username, err := f.secrets.Decrypt(conn.Username)
	if err != nil {
		return nil, &connector.ConnectionError{Side: "database", Err: err}
	}
	password, err := f.secrets.Decrypt(conn.Password)
	if err != nil {
		return nil, &connector.ConnectionError{Side: "database", Err: err}
	}
	return databases.Open(ctx, conn.Engine, conn.Host, conn.Port, conn.DatabaseName, username, password, conn.Params)
}

// Engine executes sync runs. At most one run per mapping is in flight at any
// time, no matter where the run was triggered from.
type Engine struct {
	store   database.DB
	clients ClientFactory
	logger  *slog.Logger

	mu       sync.Mutex
	inFlight map[uint]struct{}
}

func New(store database.DB, clients ClientFactory, logger *slog.Logger) *Engine {
	return &Engine{
		store:    store,
		clients:  clients,
		logger:   logger,
		inFlight: make(map[uint]struct{}),
	}
}

// acquire marks a mapping as running, or reports that another run holds it.
func (e *Engine) acquire(mappingID uint) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[mappingID]; busy {
		return false
	}
	e.inFlight[mappingID] = struct{}{}
	return true
}

func (e *Engine) release(mappingID uint) {
	e.mu.Lock()
	delete(e.inFlight, mappingID)
	e.mu.Unlock()
}

// ExecuteSync runs one sync for a mapping and returns its durable log row.
// A missing or inactive mapping fails before any SyncLog is created, as does
// a call that overlaps a run already in flight for the same mapping; every
// other outcome is recorded on the returned log.
func (e *Engine) ExecuteSync(ctx context.Context, mappingID uint) (*models.SyncLog, error) {
	if !e.acquire(mappingID) {
		return nil, fmt.Errorf("%w: id %d", ErrSyncInProgress, mappingID)
	}
	defer e.release(mappingID)

	m, err := e.store.GetFieldMappingByID(ctx, mappingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrMappingNotFound, mappingID)
		}
		return nil, err
	}
	if !m.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrMappingInactive, m.Name)
	}

	syncLog := &models.SyncLog{
		ID:                   uuid.New(),
		FieldMappingID:       m.ID,
		PlatformConnectionID: m.PlatformConnectionID,
		SyncDirection:        m.SyncDirection,
		StartedAt:            time.Now().UTC(),
		Status:               models.SyncRunning,
	}
	if err := e.store.CreateSyncLog(ctx, syncLog); err != nil {
		return nil, err
	}

	e.logger.Info("sync started",
		"mapping_id", m.ID,
		"mapping", m.Name,
		"direction", string(m.SyncDirection),
	)

	var stats Stats
	var runErr error
	switch m.SyncDirection {
	case models.FromPlatform:
		stats, runErr = e.syncFromPlatform(ctx, m)
	case models.ToPlatform:
		stats, runErr = e.syncToPlatform(ctx, m)
	case models.Bidirectional:
		stats, runErr = e.syncBidirectional(ctx, m)
	default:
		runErr = fmt.Errorf("invalid sync direction: %s", m.SyncDirection)
	}

	now := time.Now().UTC()
	syncLog.CompletedAt.Time = now
	syncLog.CompletedAt.Valid = true
	syncLog.RecordsProcessed = stats.Processed
	syncLog.RecordsSuccessful = stats.Successful
	syncLog.RecordsFailed = stats.Failed
	if len(stats.Errors) > 0 {
		if details, err := json.Marshal(map[string][]string{"errors": stats.Errors}); err == nil {
			syncLog.ErrorDetails = details
		}
	}

	if runErr != nil {
		syncLog.Status = models.SyncFailed
		syncLog.ErrorMessage.String = runErr.Error()
		syncLog.ErrorMessage.Valid = true
		e.logger.Error("sync failed", "mapping_id", m.ID, "err", runErr)
	} else {
		syncLog.Status = models.SyncCompleted
		if err := e.store.UpdateLastSync(ctx, m.ID, now); err != nil {
			e.logger.Error("failed to stamp last_sync", "mapping_id", m.ID, "err", err)
		}
		e.logger.Info("sync completed",
			"mapping_id", m.ID,
			"processed", stats.Processed,
			"successful", stats.Successful,
			"failed", stats.Failed,
		)
	}

	if err := e.store.UpdateSyncLog(ctx, syncLog); err != nil {
		return nil, err
	}
	return syncLog, nil
}

// syncFromPlatform pulls every record of the mapped resource and writes it
// into the database table.
func (e *Engine) syncFromPlatform(ctx context.Context, m *models.FieldMapping) (Stats, error) {
	var stats Stats

	source, err := e.clients.Platform(ctx, &m.PlatformConnection)
	if err != nil {
		return stats, err
	}
	defer source.Close()

	sink, err := e.clients.Database(ctx, &m.DatabaseConnection)
	if err != nil {
		return stats, err
	}
	defer sink.Close()

	records, err := source.Fetch(ctx, m.PlatformResource, nil, 0)
	if err != nil {
		return stats, err
	}

	fields := m.PlatformFieldMap()
	rules := ParseRules(m.TransformationRules)
	for _, rec := range records {
		stats.Processed++
		out := Transform(rec, fields, rules)
		if err := sink.Write(ctx, m.DBTable, out); err != nil {
			stats.Failed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("failed to sync record: %v", err))
			e.logger.Warn("record write failed", "mapping_id", m.ID, "table", m.DBTable, "err", err)
			continue
		}
		stats.Successful++
	}
	return stats, nil
}

// syncToPlatform pulls the mapped columns from the database table and
// creates each row on the platform resource.
func (e *Engine) syncToPlatform(ctx context.Context, m *models.FieldMapping) (Stats, error) {
	var stats Stats

	source, err := e.clients.Database(ctx, &m.DatabaseConnection)
	if err != nil {
		return stats, err
	}
	defer source.Close()

	sink, err := e.clients.Platform(ctx, &m.PlatformConnection)
	if err != nil {
		return stats, err
	}
	defer sink.Close()

	records, err := source.Fetch(ctx, m.DBTable, m.DBColumns(), 0)
	if err != nil {
		return stats, err
	}

	fields := m.DBFieldMap()
	rules := ParseRules(m.TransformationRules)
	for _, rec := range records {
		stats.Processed++
		out := Transform(rec, fields, rules)
		if err := sink.Write(ctx, m.PlatformResource, out); err != nil {
			stats.Failed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("failed to sync record: %v", err))
			e.logger.Warn("record write failed", "mapping_id", m.ID, "resource", m.PlatformResource, "err", err)
			continue
		}
		stats.Successful++
	}
	return stats, nil
}

// syncBidirectional runs the platform->database pass to completion, then the
// database->platform pass, and sums their statistics. The passes are
// independent: an abort in one does not keep the other from running.
func (e *Engine) syncBidirectional(ctx context.Context, m *models.FieldMapping) (Stats, error) {
	fromStats, fromErr := e.syncFromPlatform(ctx, m)
	toStats, toErr := e.syncToPlatform(ctx, m)

	total := fromStats
	total.add(toStats)
	return total, errors.Join(fromErr, toErr)
}

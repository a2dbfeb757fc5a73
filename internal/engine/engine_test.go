package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
)

// fakeStore implements the slice of database.DB the engine touches.
type fakeStore struct {
	database.DB

	mapping  *models.FieldMapping
	logs     []*models.SyncLog
	lastSync map[uint]time.Time
}

func newFakeStore(m *models.FieldMapping) *fakeStore {
	return &fakeStore{mapping: m, lastSync: make(map[uint]time.Time)}
}

func (s *fakeStore) GetFieldMappingByID(_ context.Context, id uint) (*models.FieldMapping, error) {
	if s.mapping == nil || s.mapping.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.mapping, nil
}

func (s *fakeStore) CreateSyncLog(_ context.Context, l *models.SyncLog) error {
	cp := *l
	s.logs = append(s.logs, &cp)
	return nil
}

func (s *fakeStore) UpdateSyncLog(_ context.Context, l *models.SyncLog) error {
	cp := *l
	s.logs = append(s.logs, &cp)
	return nil
}

func (s *fakeStore) UpdateLastSync(_ context.Context, id uint, at time.Time) error {
	s.lastSync[id] = at
	return nil
}

type fakeClient struct {
	records  []connector.Record
	fetchErr error
	// fetchHook runs at the start of every Fetch.
	fetchHook func()
	// failWrite returns an error for the given 1-based write ordinal.
	failWrite func(n int) error

	writes []connector.Record
	closed bool
}

func (c *fakeClient) TestConnection(context.Context) error { return nil }

func (c *fakeClient) Fetch(context.Context, string, []string, int) ([]connector.Record, error) {
	if c.fetchHook != nil {
		c.fetchHook()
	}
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	return c.records, nil
}

func (c *fakeClient) Write(_ context.Context, _ string, rec connector.Record) error {
	c.writes = append(c.writes, rec)
	if c.failWrite != nil {
		if err := c.failWrite(len(c.writes)); err != nil {
			return err
		}
	}
	return nil
}

func (c *fakeClient) Close() error {
	c.closed = true
	return nil
}

type fakeFactory struct {
	platform    *fakeClient
	db          *fakeClient
	platformErr error
	dbErr       error
}

func (f *fakeFactory) Platform(context.Context, *models.PlatformConnection) (connector.Client, error) {
	if f.platformErr != nil {
		return nil, f.platformErr
	}
	return f.platform, nil
}

func (f *fakeFactory) Database(context.Context, *models.DatabaseConnection) (connector.Client, error) {
	if f.dbErr != nil {
		return nil, f.dbErr
	}
	return f.db, nil
}

func testMapping(direction models.SyncDirection) *models.FieldMapping {
	return &models.FieldMapping{
		ID:                   7,
		PlatformConnectionID: 1,
		DatabaseConnectionID: 2,
		Name:                 "products sync",
		DBTable:              "products",
		DBFields:             datatypes.JSONMap{"title": "title", "sku": "sku"},
		PlatformResource:     "products",
		PlatformFields:       datatypes.JSONMap{"title": "title", "sku": "sku"},
		SyncDirection:        direction,
		SyncIntervalMinutes:  60,
		IsActive:             true,
	}
}

func testEngine(store database.DB, f ClientFactory) *Engine {
	return New(store, f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func platformRecords(n int) []connector.Record {
	recs := make([]connector.Record, n)
	for i := range recs {
		recs[i] = connector.Record{"title": fmt.Sprintf("p%d", i+1), "sku": fmt.Sprintf("S-%d", i+1)}
	}
	return recs
}

func TestExecuteSyncMappingNotFound(t *testing.T) {
	store := newFakeStore(nil)
	e := testEngine(store, &fakeFactory{})

	_, err := e.ExecuteSync(context.Background(), 99)
	require.ErrorIs(t, err, ErrMappingNotFound)
	require.Empty(t, store.logs)
}

func TestExecuteSyncInactiveMapping(t *testing.T) {
	m := testMapping(models.FromPlatform)
	m.IsActive = false
	store := newFakeStore(m)
	e := testEngine(store, &fakeFactory{})

	_, err := e.ExecuteSync(context.Background(), m.ID)
	require.ErrorIs(t, err, ErrMappingInactive)
	require.Empty(t, store.logs)
}

func TestExecuteSyncFromPlatform(t *testing.T) {
	m := testMapping(models.FromPlatform)
	store := newFakeStore(m)
	f := &fakeFactory{
		platform: &fakeClient{records: platformRecords(3)},
		db:       &fakeClient{},
	}
	e := testEngine(store, f)

	syncLog, err := e.ExecuteSync(context.Background(), m.ID)
	require.NoError(t, err)
	require.Equal(t, models.SyncCompleted, syncLog.Status)
	require.Equal(t, 3, syncLog.RecordsProcessed)
	require.Equal(t, 3, syncLog.RecordsSuccessful)
	require.Equal(t, 0, syncLog.RecordsFailed)
	require.True(t, syncLog.CompletedAt.Valid)

	// Running row persisted before any I/O, then the sealed row.
	require.Len(t, store.logs, 2)
	require.Equal(t, models.SyncRunning, store.logs[0].Status)
	require.Contains(t, store.lastSync, m.ID)

	require.Len(t, f.db.writes, 3)
	require.True(t, f.platform.closed)
	require.True(t, f.db.closed)
}

func TestExecuteSyncPartialFailure(t *testing.T) {
	m := testMapping(models.FromPlatform)
	store := newFakeStore(m)
	f := &fakeFactory{
		platform: &fakeClient{records: platformRecords(5)},
		db: &fakeClient{failWrite: func(n int) error {
			if n == 3 {
				return &connector.WriteError{Collection: "products", Err: errors.New("constraint violation")}
			}
			return nil
		}},
	}
	e := testEngine(store, f)

	syncLog, err := e.ExecuteSync(context.Background(), m.ID)
	require.NoError(t, err)
	require.Equal(t, models.SyncCompleted, syncLog.Status)
	require.Equal(t, 5, syncLog.RecordsProcessed)
	require.Equal(t, 4, syncLog.RecordsSuccessful)
	require.Equal(t, 1, syncLog.RecordsFailed)
	require.Contains(t, string(syncLog.ErrorDetails), "constraint violation")

	// One bad record never aborts the batch.
	require.Len(t, f.db.writes, 5)
}

func TestExecuteSyncSinkConstructionFailureAbortsRun(t *testing.T) {
	m := testMapping(models.FromPlatform)
	store := newFakeStore(m)
	f := &fakeFactory{
		platform: &fakeClient{records: platformRecords(2)},
		dbErr:    &connector.ConnectionError{Side: "database", Err: errors.New("refused")},
	}
	e := testEngine(store, f)

	syncLog, err := e.ExecuteSync(context.Background(), m.ID)
	require.NoError(t, err)
	require.Equal(t, models.SyncFailed, syncLog.Status)
	require.True(t, syncLog.ErrorMessage.Valid)
	require.Contains(t, syncLog.ErrorMessage.String, "refused")
	require.Zero(t, syncLog.RecordsProcessed)
	require.NotContains(t, store.lastSync, m.ID)
	require.True(t, f.platform.closed)
}

func TestExecuteSyncFetchFailureAbortsRun(t *testing.T) {
	m := testMapping(models.FromPlatform)
	store := newFakeStore(m)
	f := &fakeFactory{
		platform: &fakeClient{fetchErr: &connector.StatusError{Code: 500, Body: "boom"}},
		db:       &fakeClient{},
	}
	e := testEngine(store, f)

	syncLog, err := e.ExecuteSync(context.Background(), m.ID)
	require.NoError(t, err)
	require.Equal(t, models.SyncFailed, syncLog.Status)
	require.Empty(t, f.db.writes)
	require.True(t, f.db.closed)
}

func TestExecuteSyncToPlatformProjectsColumns(t *testing.T) {
	m := testMapping(models.ToPlatform)
	store := newFakeStore(m)
	f := &fakeFactory{
		platform: &fakeClient{},
		db:       &fakeClient{records: platformRecords(2)},
	}
	e := testEngine(store, f)

	syncLog, err := e.ExecuteSync(context.Background(), m.ID)
	require.NoError(t, err)
	require.Equal(t, models.SyncCompleted, syncLog.Status)
	require.Equal(t, 2, syncLog.RecordsSuccessful)
	require.Len(t, f.platform.writes, 2)
}

func TestExecuteSyncBidirectionalOrdering(t *testing.T) {
	m := testMapping(models.Bidirectional)
	store := newFakeStore(m)

	var order []string
	platformClient := &fakeClient{records: platformRecords(2)}
	dbClient := &fakeClient{records: platformRecords(3)}
	platformClient.failWrite = func(int) error {
		order = append(order, "to_platform")
		return nil
	}
	dbClient.failWrite = func(int) error {
		order = append(order, "from_platform")
		return nil
	}

	f := &fakeFactory{platform: platformClient, db: dbClient}
	e := testEngine(store, f)

	syncLog, err := e.ExecuteSync(context.Background(), m.ID)
	require.NoError(t, err)
	require.Equal(t, models.SyncCompleted, syncLog.Status)
	// Stats are summed across both passes.
	require.Equal(t, 5, syncLog.RecordsProcessed)
	require.Equal(t, 5, syncLog.RecordsSuccessful)

	// Every platform->database write happens before any database->platform
	// write.
	require.Equal(t, []string{"from_platform", "from_platform", "to_platform", "to_platform", "to_platform"}, order)
}

func TestExecuteSyncBidirectionalOneSideAborts(t *testing.T) {
	m := testMapping(models.Bidirectional)
	store := newFakeStore(m)
	f := &fakeFactory{
		platform: &fakeClient{fetchErr: errors.New("platform unreachable")},
		db:       &fakeClient{records: platformRecords(2)},
	}
	e := testEngine(store, f)

	syncLog, err := e.ExecuteSync(context.Background(), m.ID)
	require.NoError(t, err)
	// The database->platform pass still ran.
	require.Equal(t, 2, len(f.platform.writes))
	require.Equal(t, models.SyncFailed, syncLog.Status)
	require.Contains(t, syncLog.ErrorMessage.String, "platform unreachable")
}

func TestExecuteSyncOverlappingRunRejected(t *testing.T) {
	m := testMapping(models.FromPlatform)
	store := newFakeStore(m)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f := &fakeFactory{
		platform: &fakeClient{
			records: platformRecords(1),
			fetchHook: func() {
				once.Do(func() { close(started) })
				<-release
			},
		},
		db: &fakeClient{},
	}
	e := testEngine(store, f)

	done := make(chan error, 1)
	go func() {
		_, err := e.ExecuteSync(context.Background(), m.ID)
		done <- err
	}()
	<-started

	// A second call while the first run is mid-fetch must not open a second
	// SyncLog for the same mapping.
	_, err := e.ExecuteSync(context.Background(), m.ID)
	require.ErrorIs(t, err, ErrSyncInProgress)

	close(release)
	require.NoError(t, <-done)

	// Exactly one run happened: its running row, then its sealed row.
	require.Len(t, store.logs, 2)
	require.Equal(t, models.SyncRunning, store.logs[0].Status)
	require.Equal(t, models.SyncCompleted, store.logs[1].Status)

	// The mapping is runnable again once the first run finished.
	_, err = e.ExecuteSync(context.Background(), m.ID)
	require.NoError(t, err)
}

func TestExecuteSyncUnknownDirection(t *testing.T) {
	m := testMapping(models.SyncDirection("sideways"))
	store := newFakeStore(m)
	e := testEngine(store, &fakeFactory{platform: &fakeClient{}, db: &fakeClient{}})

	syncLog, err := e.ExecuteSync(context.Background(), m.ID)
	require.NoError(t, err)
	require.Equal(t, models.SyncFailed, syncLog.Status)
	require.Contains(t, syncLog.ErrorMessage.String, "invalid sync direction")
}

// Package scheduler keeps one recurring sync job per active field mapping.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/engine"
)

// Runner executes one sync for a mapping. Satisfied by *engine.Engine.
type Runner interface {
	ExecuteSync(ctx context.Context, mappingID uint) (*models.SyncLog, error)
}

// JobInfo describes one scheduled job for observability.
type JobInfo struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run_time"`
	Trigger string    `json:"trigger"`
}

type jobEntry struct {
	entryID  cron.EntryID
	name     string
	interval time.Duration
}

// Scheduler owns the per-mapping timers. Constructed once at the composition
// root and handed to whatever needs it; there is no package-level instance.
type Scheduler struct {
	cron   *cron.Cron
	store  database.DB
	runner Runner
	logger *slog.Logger

	mu   sync.Mutex
	jobs map[uint]jobEntry
}

func New(store database.DB, runner Runner, logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		// SkipIfStillRunning drops an overlapping fire of an entry instead
		// of queueing it; the engine's per-mapping guard covers overlap with
		// runs triggered elsewhere.
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cl),
			cron.Recover(cl),
		)),
		store:  store,
		runner: runner,
		logger: logger,
		jobs:   make(map[uint]jobEntry),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("sync scheduler started")
}

// Stop halts the timers and returns a context that is done once in-flight
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("sync scheduler stopping")
	return s.cron.Stop()
}

// AddJob schedules a mapping, replacing any existing timer for it. Inactive
// mappings are not scheduled. The first fire happens one interval after
// registration.
func (s *Scheduler) AddJob(m *models.FieldMapping) bool {
	if !m.IsActive {
		s.logger.Warn("not scheduling inactive mapping", "mapping_id", m.ID, "mapping", m.Name)
		return false
	}

	interval := time.Duration(m.SyncIntervalMinutes) * time.Minute
	mappingID := m.ID

	// Remove, schedule and store under one lock, so concurrent calls for the
	// same mapping cannot each leave a live timer behind.
	s.mu.Lock()
	s.removeLocked(m.ID)
	entryID := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		s.runSync(mappingID)
	}))
	s.jobs[m.ID] = jobEntry{entryID: entryID, name: m.Name, interval: interval}
	s.mu.Unlock()

	s.logger.Info("scheduled sync job",
		"mapping_id", m.ID,
		"mapping", m.Name,
		"interval_minutes", m.SyncIntervalMinutes,
	)
	return true
}

// UpdateJob re-registers a mapping after a change, dropping the timer when
// the mapping went inactive.
func (s *Scheduler) UpdateJob(m *models.FieldMapping) bool {
	s.RemoveJob(m.ID)
	return s.AddJob(m)
}

// RemoveJob drops a mapping's timer. Removing an absent job is a no-op.
func (s *Scheduler) RemoveJob(mappingID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(mappingID)
}

func (s *Scheduler) removeLocked(mappingID uint) {
	entry, ok := s.jobs[mappingID]
	if !ok {
		return
	}
	s.cron.Remove(entry.entryID)
	delete(s.jobs, mappingID)
	s.logger.Info("removed sync job", "mapping_id", mappingID)
}

// RescheduleAll rebuilds the schedule from every active mapping in the
// store. Called at process start so the schedule survives restarts.
func (s *Scheduler) RescheduleAll(ctx context.Context) error {
	mappings, err := s.store.GetActiveFieldMappings(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("rescheduling active mappings", "count", len(mappings))
	for i := range mappings {
		s.AddJob(&mappings[i])
	}
	return nil
}

// Jobs lists the scheduled jobs with their next fire times.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]JobInfo, 0, len(s.jobs))
	for mappingID, entry := range s.jobs {
		jobs = append(jobs, JobInfo{
			ID:      fmt.Sprintf("sync_mapping_%d", mappingID),
			Name:    entry.name,
			NextRun: s.cron.Entry(entry.entryID).Next,
			Trigger: fmt.Sprintf("every %s", entry.interval),
		})
	}
	return jobs
}

// runSync executes one fire. Errors are logged and swallowed: an unattended
// timer must never take the process down.
func (s *Scheduler) runSync(mappingID uint) {
	syncLog, err := s.runner.ExecuteSync(context.Background(), mappingID)
	if err != nil {
		if errors.Is(err, engine.ErrSyncInProgress) {
			s.logger.Info("sync fire skipped, previous run still in flight", "mapping_id", mappingID)
			return
		}
		s.logger.Error("sync job failed", "mapping_id", mappingID, "err", err)
		return
	}
	s.logger.Info("sync job finished",
		"mapping_id", mappingID,
		"status", string(syncLog.Status),
		"successful", syncLog.RecordsSuccessful,
		"failed", syncLog.RecordsFailed,
	)
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.logger.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logger.Error(msg, append([]any{"err", err}, keysAndValues...)...)
}

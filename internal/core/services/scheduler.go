package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is the number of results kept per task.
const historyRetention = 100

// CatalogRefresher reloads a resource listing on demand.
type CatalogRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// SchedulerDeps holds the collaborators of the scheduled tasks.
// A task whose collaborator is nil is not registered.
type SchedulerDeps struct {
	Store   driven.SchedulerStore
	Catalog CatalogRefresher
	Syncer  driven.IndexSyncer
	Index   driven.IndexStore
	DataDir string
}

// Scheduler runs catalog refresh and index sync on cron schedules.
// It is a pure core service with no external control API.
type Scheduler struct {
	settings domain.SchedulerSettings
	deps     SchedulerDeps

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(settings domain.SchedulerSettings, deps SchedulerDeps) *Scheduler {
	return &Scheduler{
		settings: settings,
		deps:     deps,
		entries:  make(map[string]cron.EntryID),
	}
}

// taskDef describes one registrable task.
type taskDef struct {
	id   string
	name string
	spec string
}

// tasks returns the tasks whose collaborators are configured.
func (s *Scheduler) tasks() []taskDef {
	var defs []taskDef
	if s.deps.Catalog != nil && s.settings.CatalogRefresh != "" {
		defs = append(defs, taskDef{domain.TaskIDCatalogRefresh, "Catalog Refresh", s.settings.CatalogRefresh})
	}
	if s.deps.Syncer != nil && s.settings.IndexSync != "" {
		defs = append(defs, taskDef{domain.TaskIDIndexSync, "Index Sync", s.settings.IndexSync})
	}
	return defs
}

// Start registers the tasks and blocks until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	if !s.settings.Enabled {
		s.mu.Unlock()
		logger.Info("Scheduler disabled")
		return nil
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{logger.With("component", "scheduler")}),
		cron.SkipIfStillRunning(cronLogger{logger.With("component", "scheduler")}),
	))
	for _, def := range s.tasks() {
		id := def.id
		entry, err := c.AddFunc(def.spec, func() { s.runTask(ctx, id) })
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("%w: schedule %s %q: %v", domain.ErrInvalidInput, def.id, def.spec, err)
		}
		s.entries[def.id] = entry
	}

	s.cron = c
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	c.Start()
	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}
	logger.Info("Scheduler started with %d task(s)", len(c.Entries()))

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-stopCh:
	}

	<-c.Stop().Done()
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return err
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	close(s.stopCh)
	return nil
}

// initialiseTasks ensures every registered task exists in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if s.deps.Store == nil {
		return nil
	}
	var errs []error
	for _, def := range s.tasks() {
		errs = append(errs, s.ensureTask(ctx, def))
	}
	return errors.Join(errs...)
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, def taskDef) error {
	task, err := s.deps.Store.GetTask(ctx, def.id)
	if err != nil {
		return err
	}
	if task == nil {
		task = &domain.ScheduledTask{ID: def.id, Name: def.name}
	}
	task.Spec = def.spec
	task.Enabled = true
	task.NextRun = s.nextRun(def.id)

	return s.deps.Store.SaveTask(ctx, task)
}

// nextRun returns the next activation of a registered task.
func (s *Scheduler) nextRun(id string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return time.Time{}
	}
	entryID, ok := s.entries[id]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(entryID).Next
}

// RunNow executes a task immediately and records its result.
func (s *Scheduler) RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error) {
	for _, def := range s.tasks() {
		if def.id == taskID {
			return s.runTask(ctx, taskID), nil
		}
	}
	return nil, fmt.Errorf("%w: task %s", domain.ErrNotFound, taskID)
}

// runTask executes a single task and persists its outcome.
func (s *Scheduler) runTask(ctx context.Context, taskID string) *domain.TaskResult {
	result := &domain.TaskResult{
		TaskID:    taskID,
		StartedAt: time.Now(),
	}

	var err error
	switch taskID {
	case domain.TaskIDCatalogRefresh:
		result.ItemsProcessed, err = s.deps.Catalog.Refresh(ctx)
	case domain.TaskIDIndexSync:
		result.ItemsProcessed, err = s.runIndexSync(ctx)
	default:
		err = fmt.Errorf("%w: task %s", domain.ErrNotFound, taskID)
	}

	result.EndedAt = time.Now()
	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
		logger.Warn("scheduler: task %s failed: %v", taskID, err)
	} else {
		logger.Info("scheduler: task %s processed %d item(s)", taskID, result.ItemsProcessed)
	}

	s.persist(ctx, result)
	return result
}

// runIndexSync downloads changed databases and reloads the index.
func (s *Scheduler) runIndexSync(ctx context.Context) (int, error) {
	files, err := s.deps.Syncer.SyncDatabases(ctx, s.deps.DataDir)
	if err != nil {
		return len(files), err
	}
	if len(files) > 0 && s.deps.Index != nil {
		if err := s.deps.Index.Reload(ctx); err != nil {
			return len(files), fmt.Errorf("reload index: %w", err)
		}
	}
	return len(files), nil
}

// persist updates task state and history.
func (s *Scheduler) persist(ctx context.Context, result *domain.TaskResult) {
	store := s.deps.Store
	if store == nil {
		return
	}

	task, err := store.GetTask(ctx, result.TaskID)
	if err != nil || task == nil {
		task = &domain.ScheduledTask{ID: result.TaskID, Name: result.TaskID, Enabled: true}
	}
	task.LastRun = result.StartedAt
	task.NextRun = s.nextRun(result.TaskID)
	if result.Success {
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	} else {
		task.LastError = result.Error
	}

	if err := store.SaveTask(ctx, task); err != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, err)
	}
	if err := store.RecordResult(ctx, result); err != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, err)
	}
	if err := store.PruneHistory(ctx, historyRetention); err != nil {
		logger.Warn("scheduler: failed to prune history: %v", err)
	}
}

// cronLogger adapts a structured logger to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}

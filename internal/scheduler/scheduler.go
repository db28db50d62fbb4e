// Package scheduler runs the periodic dashboard jobs on a cron.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"bookings/internal/core"
	applog "bookings/internal/log"
)

// DefaultRefreshSpec repeats the full load cycle every five minutes.
const DefaultRefreshSpec = "@every 5m"

// Job is one scheduled unit of work. It receives the scheduler's context,
// which is cancelled on Stop.
type Job func(ctx context.Context)

// Ticker is satisfied by the dashboard's periodic refresh.
type Ticker interface {
	Tick(ctx context.Context)
}

type Scheduler struct {
	cron   *cron.Cron
	logger *applog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	jobs   map[string]cron.EntryID
	jobsMu sync.RWMutex
}

func New(logger *applog.Logger) *Scheduler {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentScheduler)
	ctx, cancel := context.WithCancel(context.Background())
	adapter := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(core.Location),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]cron.EntryID),
	}
}

// Add schedules job under name, replacing an earlier job of the same name.
// spec accepts the cron descriptors (@every, @hourly) or a six-field
// expression with seconds.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if existing, ok := s.jobs[name]; ok {
		s.cron.Remove(existing)
		delete(s.jobs, name)
	}
	id, err := s.cron.AddFunc(spec, func() {
		started := time.Now()
		job(s.ctx)
		s.logger.Debug("Scheduled job finished", "job", name, applog.FieldDuration, time.Since(started).Milliseconds())
	})
	if err != nil {
		return fmt.Errorf("schedule %s with %q: %w", name, spec, err)
	}
	s.jobs[name] = id
	s.logger.Info("Job scheduled", "job", name, "spec", spec)
	return nil
}

// AddRefresh schedules the dashboard's full load cycle.
func (s *Scheduler) AddRefresh(spec string, t Ticker) error {
	return s.Add("refresh", spec, t.Tick)
}

// Remove unschedules name; unknown names are ignored.
func (s *Scheduler) Remove(name string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if id, ok := s.jobs[name]; ok {
		s.cron.Remove(id)
		delete(s.jobs, name)
	}
}

// Jobs returns the names of the scheduled jobs.
func (s *Scheduler) Jobs() []string {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// NextRun returns when name runs next, or the zero time when it is not
// scheduled or the scheduler has not started.
func (s *Scheduler) NextRun(name string) time.Time {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	id, ok := s.jobs[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

func (s *Scheduler) Start() {
	s.logger.Info("Scheduler starting", "jobs", len(s.Jobs()))
	s.cron.Start()
}

// Run starts the scheduler and blocks until ctx is done, then stops it.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop cancels running jobs' context and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// cronLogger forwards the cron library's logging to the component logger.
type cronLogger struct {
	logger *applog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, applog.FieldError, err)...)
}

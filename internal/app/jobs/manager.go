// Package jobs runs the scheduled maintenance work: completing elapsed
// consultations and purging stale sessions.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/uniconsult/internal/pkg/metrics"
)

// Job names, also used as metric labels
const (
	JobCompleteElapsed = "complete_elapsed"
	JobSessionCleanup  = "session_cleanup"
)

// jobTimeout bounds a single run
const jobTimeout = time.Minute

// Completer completes consultations whose slot has passed
type Completer interface {
	CompleteElapsed(ctx context.Context) (int64, error)
}

// SessionCleaner deletes expired sessions
type SessionCleaner interface {
	CleanupSessions(ctx context.Context) (int64, error)
}

// Schedules holds cron expressions with a seconds field
type Schedules struct {
	Completion     string
	SessionCleanup string
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	completer Completer
	sessions  SessionCleaner
	schedules Schedules
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewCronManager creates a new cron manager
func NewCronManager(completer Completer, sessions SessionCleaner, schedules Schedules, logger zerolog.Logger) *CronManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &CronManager{
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		completer: completer,
		sessions:  sessions,
		schedules: schedules,
		logger:    logger.With().Str("component", "jobs").Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start registers all jobs and starts the scheduler
func (m *CronManager) Start() error {
	if err := m.registerJobs(); err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info().
		Str("completion", m.schedules.Completion).
		Str("sessionCleanup", m.schedules.SessionCleanup).
		Msg("Cron jobs started")
	return nil
}

// Stop cancels running jobs and waits for them to return
func (m *CronManager) Stop() {
	m.once.Do(func() {
		m.cancel()
		<-m.cron.Stop().Done()
		m.logger.Info().Msg("Cron jobs stopped")
	})
}

func (m *CronManager) registerJobs() error {
	jobs := []struct {
		name     string
		schedule string
		run      func(context.Context) (int64, error)
	}{
		{JobCompleteElapsed, m.schedules.Completion, m.completer.CompleteElapsed},
		{JobSessionCleanup, m.schedules.SessionCleanup, m.sessions.CleanupSessions},
	}

	for _, j := range jobs {
		if j.schedule == "" {
			continue
		}
		j := j
		if _, err := m.cron.AddFunc(j.schedule, func() { m.RunNow(j.name, j.run) }); err != nil {
			return fmt.Errorf("schedule %s %q: %w", j.name, j.schedule, err)
		}
	}
	return nil
}

// RunNow executes one job run synchronously with logging and metrics
func (m *CronManager) RunNow(name string, run func(context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(m.ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := run(ctx)
	if err != nil {
		metrics.JobRunsTotal.WithLabelValues(name, "error").Inc()
		m.logger.Error().Err(err).Str("job", name).Msg("Job failed")
		return
	}
	metrics.JobRunsTotal.WithLabelValues(name, "success").Inc()
	m.logger.Debug().Str("job", name).Int64("affected", n).Dur("took", time.Since(start)).Msg("Job finished")
}

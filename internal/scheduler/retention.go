// Package scheduler runs recurring maintenance jobs on cron schedules.
// Its only job today is session history retention.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jmylchreest/playarr/internal/repository"
)

// RetentionConfig holds the retention job's schedule and window.
type RetentionConfig struct {
	// Cron is a six-field (seconds-resolution) cron expression, or an
	// @-descriptor such as "@daily" or "@every 1h".
	Cron string

	// MaxAge is how long playback session records are kept.
	MaxAge time.Duration

	// CheckInterval is how often the loop checks whether a run is due.
	// Default: 1 minute.
	CheckInterval time.Duration
}

// DefaultRetentionConfig returns the default retention schedule: prune
// sessions older than 30 days at 03:00 every night.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Cron:          "0 0 3 * * *",
		MaxAge:        30 * 24 * time.Hour,
		CheckInterval: time.Minute,
	}
}

// Retention periodically deletes playback session records older than the
// configured window.
type Retention struct {
	mu sync.Mutex

	sessions repository.SessionRepository
	logger   *slog.Logger

	parser   cron.Parser
	schedule cron.Schedule
	maxAge   time.Duration
	interval time.Duration

	// now is injectable for tests.
	now func() time.Time

	nextRun time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRetention creates a retention job. The cron expression is validated
// here so misconfiguration surfaces at startup, not at 3am.
func NewRetention(sessions repository.SessionRepository, cfg RetentionConfig) (*Retention, error) {
	if cfg.Cron == "" {
		cfg.Cron = DefaultRetentionConfig().Cron
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultRetentionConfig().MaxAge
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultRetentionConfig().CheckInterval
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("invalid retention cron expression %q: %w", cfg.Cron, err)
	}

	return &Retention{
		sessions: sessions,
		logger:   slog.Default(),
		parser:   parser,
		schedule: schedule,
		maxAge:   cfg.MaxAge,
		interval: cfg.CheckInterval,
		now:      time.Now,
	}, nil
}

// WithLogger sets a custom logger.
func (r *Retention) WithLogger(logger *slog.Logger) *Retention {
	r.logger = logger
	return r
}

// Start begins the background check loop.
func (r *Retention) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx != nil {
		return fmt.Errorf("retention job already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)
	r.nextRun = r.schedule.Next(r.now())

	r.wg.Add(1)
	go r.loop()

	r.logger.Info("session retention started",
		slog.Duration("max_age", r.maxAge),
		slog.Time("next_run", r.nextRun))

	return nil
}

// Stop stops the check loop and waits for any in-flight run to finish.
func (r *Retention) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	r.ctx = nil
	r.cancel = nil
	r.mu.Unlock()

	r.logger.Info("session retention stopped")
}

func (r *Retention) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.runIfDue(r.ctx)
		}
	}
}

// runIfDue runs the prune when the schedule's next fire time has passed,
// then advances it. Errors are logged; the schedule still advances so a
// persistent failure does not turn into a hot loop.
func (r *Retention) runIfDue(ctx context.Context) {
	now := r.now()

	r.mu.Lock()
	due := !now.Before(r.nextRun)
	if due {
		r.nextRun = r.schedule.Next(now)
	}
	r.mu.Unlock()

	if !due {
		return
	}

	if _, err := r.RunOnce(ctx); err != nil {
		r.logger.Error("session retention run failed", slog.Any("error", err))
	}
}

// RunOnce prunes sessions older than the retention window immediately and
// returns the number of deleted records.
func (r *Retention) RunOnce(ctx context.Context) (int64, error) {
	cutoff := r.now().Add(-r.maxAge)

	deleted, err := r.sessions.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning sessions before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if deleted > 0 {
		r.logger.Info("pruned playback sessions",
			slog.Int64("deleted", deleted),
			slog.Time("cutoff", cutoff))
	} else {
		r.logger.Debug("no sessions to prune", slog.Time("cutoff", cutoff))
	}
	return deleted, nil
}

// NextRun returns the next scheduled fire time.
func (r *Retention) NextRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextRun
}

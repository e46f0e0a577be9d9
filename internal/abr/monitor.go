// Package abr implements the adaptive bitrate monitor: a background sampling
// loop that watches the live player's buffering state during a transcode or
// direct-stream session and publishes quality downgrade recommendations.
//
// The monitor never drives playback. Its only output is a single current
// recommendation slot; acting on it (re-invoking the decision engine at a
// lower quality) is the caller's job, and a newer recommendation always
// overwrites an unconsumed one.
package abr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/playarr/internal/models"
	"github.com/jmylchreest/playarr/internal/preferences"
)

// PlayerState is the coarse player condition sampled each interval.
type PlayerState string

// Player state constants.
const (
	StateBuffering PlayerState = "buffering"
	StateReady     PlayerState = "ready"
	StateOther     PlayerState = "other"
)

// PlayerStateSource is the live player handle the monitor samples.
type PlayerStateSource interface {
	// State returns the player's current playback state. Errors other than
	// context cancellation are logged and the sampling loop continues.
	State(ctx context.Context) (PlayerState, error)
}

// Config holds the monitor's timing parameters.
type Config struct {
	// SampleInterval is the fixed sampling period.
	SampleInterval time.Duration
	// SustainedBufferThreshold is the single-episode buffering duration that
	// triggers a High-severity recommendation.
	SustainedBufferThreshold time.Duration
	// DowngradeCooldown is the minimum gap between emitted recommendations.
	DowngradeCooldown time.Duration
	// BufferEventLimit is the consecutive buffering event count that triggers
	// a Medium-severity recommendation.
	BufferEventLimit int
}

// DefaultConfig returns the reference monitor timings.
func DefaultConfig() Config {
	return Config{
		SampleInterval:           time.Second,
		SustainedBufferThreshold: 5 * time.Second,
		DowngradeCooldown:        60 * time.Second,
		BufferEventLimit:         3,
	}
}

// Monitor watches one playback session at a time.
type Monitor struct {
	cfg    Config
	prefs  preferences.Reader
	logger *slog.Logger

	// now is injectable for tests.
	now func() time.Time

	mu             sync.Mutex
	running        bool
	cancel         context.CancelFunc
	done           chan struct{}
	player         PlayerStateSource
	sessionQuality models.TranscodingQuality
	isTranscoding  bool

	lastState      PlayerState
	bufferingStart time.Time
	eventCount     int
	lastDowngrade  time.Time
	recommendation *models.QualityRecommendation
}

// NewMonitor creates a monitor.
func NewMonitor(cfg Config, prefs preferences.Reader, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = time.Second
	}
	return &Monitor{
		cfg:    cfg,
		prefs:  prefs,
		logger: logger,
		now:    time.Now,
	}
}

// Start begins sampling the player. quality is the session's effective tier
// and isTranscoding whether the session is a transcode or direct stream
// (direct play sessions have nothing to downgrade). Returns an error if the
// monitor is already running.
func (m *Monitor) Start(ctx context.Context, player PlayerStateSource, quality models.TranscodingQuality, isTranscoding bool) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("monitor already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	m.player = player
	m.sessionQuality = quality
	m.isTranscoding = isTranscoding
	m.lastState = StateReady
	m.bufferingStart = time.Time{}
	m.eventCount = 0
	done := m.done
	m.mu.Unlock()

	m.logger.Info("adaptive bitrate monitor started",
		slog.String("quality", quality.String()),
		slog.Bool("transcoding", isTranscoding),
	)

	go m.run(runCtx, done)
	return nil
}

// Stop halts sampling, clears all tracking state, and clears any pending
// recommendation.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done

	m.mu.Lock()
	m.running = false
	m.cancel = nil
	m.done = nil
	m.player = nil
	m.lastState = StateReady
	m.bufferingStart = time.Time{}
	m.eventCount = 0
	m.recommendation = nil
	m.mu.Unlock()

	m.logger.Info("adaptive bitrate monitor stopped")
}

// Running reports whether the sampling loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Current returns the current recommendation, nil when there is none.
func (m *Monitor) Current() *models.QualityRecommendation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recommendation == nil {
		return nil
	}
	cp := *m.recommendation
	return &cp
}

// ClearRecommendation empties the recommendation slot.
func (m *Monitor) ClearRecommendation() {
	m.mu.Lock()
	m.recommendation = nil
	m.mu.Unlock()
}

// ResetBufferingTracking clears the buffering episode start and the event
// counter without stopping the monitor or clearing the recommendation slot.
// Callers use it after applying a quality change.
func (m *Monitor) ResetBufferingTracking() {
	m.mu.Lock()
	m.bufferingStart = time.Time{}
	m.eventCount = 0
	m.mu.Unlock()
}

// run is the sampling loop. No sample is taken after cancellation.
func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.sample(ctx); err != nil {
				// Cancellation always ends the loop; anything else is
				// logged and sampling continues at the normal interval.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				m.logger.Warn("player state sample failed", slog.String("error", err.Error()))
			}
		}
	}
}

// sample takes one player state observation and applies the transition and
// emission rules.
func (m *Monitor) sample(ctx context.Context) error {
	m.mu.Lock()
	player := m.player
	m.mu.Unlock()
	if player == nil {
		return nil
	}

	state, err := player.State(ctx)
	if err != nil {
		return err
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	wasBuffering := m.lastState == StateBuffering
	isBuffering := state == StateBuffering
	m.lastState = state

	switch {
	case isBuffering && !wasBuffering:
		m.bufferingStart = now
		m.eventCount++
		m.logger.Debug("buffering started", slog.Int("event_count", m.eventCount))
	case !isBuffering && wasBuffering:
		if !m.bufferingStart.IsZero() {
			m.logger.Debug("buffering ended",
				slog.Duration("duration", now.Sub(m.bufferingStart)),
			)
		}
		m.bufferingStart = time.Time{}
	}

	if !m.eligibleLocked(now) {
		return nil
	}

	// Rule 1: sustained buffering.
	if isBuffering && !m.bufferingStart.IsZero() {
		elapsed := now.Sub(m.bufferingStart)
		if elapsed >= m.cfg.SustainedBufferThreshold {
			m.emitLocked(now, models.SeverityHigh,
				fmt.Sprintf("buffering for %ds", int(elapsed.Seconds())))
			return nil
		}
	}

	// Rule 2: frequent buffering events. The counter only resets here or via
	// an explicit tracking reset.
	if m.eventCount >= m.cfg.BufferEventLimit {
		m.emitLocked(now, models.SeverityMedium,
			fmt.Sprintf("frequent buffering (%d events)", m.eventCount))
		m.eventCount = 0
	}
	return nil
}

// eligibleLocked is the downgrade eligibility gate. Callers hold mu.
func (m *Monitor) eligibleLocked(now time.Time) bool {
	// Never override an explicit manual quality choice.
	if !m.prefs.Current().TranscodingQuality.IsAuto() {
		return false
	}
	// Direct play has nothing to downgrade.
	if !m.isTranscoding {
		return false
	}
	if !m.lastDowngrade.IsZero() && now.Sub(m.lastDowngrade) < m.cfg.DowngradeCooldown {
		return false
	}
	return m.sessionQuality != models.QualityLow
}

// emitLocked publishes a recommendation into the single slot. Callers hold mu.
func (m *Monitor) emitLocked(now time.Time, severity models.RecommendationSeverity, reason string) {
	target := m.sessionQuality.NextLower()
	m.recommendation = &models.QualityRecommendation{
		Quality:  target,
		Reason:   reason,
		Severity: severity,
	}
	m.lastDowngrade = now

	m.logger.Info("quality downgrade recommended",
		slog.String("target", target.String()),
		slog.String("severity", string(severity)),
		slog.String("reason", reason),
	)
}

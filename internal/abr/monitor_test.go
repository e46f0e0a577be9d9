package abr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/playarr/internal/models"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakePlayer returns a settable state.
type fakePlayer struct {
	mu      sync.Mutex
	state   PlayerState
	err     error
	samples atomic.Int64
}

func (p *fakePlayer) State(ctx context.Context) (PlayerState, error) {
	p.samples.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return p.state, nil
}

func (p *fakePlayer) set(state PlayerState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

type fixedPrefs struct {
	prefs models.PlaybackPreferences
}

func (f fixedPrefs) Current() models.PlaybackPreferences { return f.prefs }

func autoPrefs() fixedPrefs {
	return fixedPrefs{prefs: models.DefaultPlaybackPreferences()}
}

// newTestMonitor wires a monitor with a fake clock and player without
// starting the background loop; tests call sample directly.
func newTestMonitor(t *testing.T, prefs fixedPrefs, quality models.TranscodingQuality, transcoding bool) (*Monitor, *fakeClock, *fakePlayer) {
	t.Helper()
	clock := newFakeClock()
	player := &fakePlayer{state: StateReady}

	m := NewMonitor(DefaultConfig(), prefs, nil)
	m.now = clock.Now
	m.player = player
	m.sessionQuality = quality
	m.isTranscoding = transcoding
	m.lastState = StateReady
	return m, clock, player
}

// step advances the clock by the sample interval and takes one sample.
func step(t *testing.T, m *Monitor, clock *fakeClock) {
	t.Helper()
	clock.Advance(m.cfg.SampleInterval)
	require.NoError(t, m.sample(context.Background()))
}

func TestSustainedBufferingEmitsHigh(t *testing.T) {
	m, clock, player := newTestMonitor(t, autoPrefs(), models.QualityHigh, true)

	player.set(StateBuffering)
	for i := 0; i < 6; i++ {
		step(t, m, clock)
		if i < 5 {
			assert.Nil(t, m.Current(), "no recommendation before threshold (sample %d)", i)
		}
	}

	rec := m.Current()
	require.NotNil(t, rec)
	assert.Equal(t, models.SeverityHigh, rec.Severity)
	assert.Equal(t, models.QualityMedium, rec.Quality)
	assert.Equal(t, "buffering for 5s", rec.Reason)
}

func TestFrequentBufferingEmitsMediumAndResetsCounter(t *testing.T) {
	m, clock, player := newTestMonitor(t, autoPrefs(), models.QualityMaximum, true)

	// Three short buffer/recover cycles.
	for i := 0; i < 3; i++ {
		player.set(StateBuffering)
		step(t, m, clock)
		if i < 2 {
			assert.Nil(t, m.Current())
		}
		player.set(StateReady)
		step(t, m, clock)
	}

	rec := m.Current()
	require.NotNil(t, rec)
	assert.Equal(t, models.SeverityMedium, rec.Severity)
	assert.Equal(t, models.QualityHigh, rec.Quality)
	assert.Equal(t, "frequent buffering (3 events)", rec.Reason)
	assert.Equal(t, 0, m.eventCount, "counter resets after emission")
}

func TestManualQualityNeverRecommends(t *testing.T) {
	prefs := autoPrefs()
	prefs.prefs.TranscodingQuality = models.QualityHigh
	m, clock, player := newTestMonitor(t, prefs, models.QualityHigh, true)

	player.set(StateBuffering)
	for i := 0; i < 10; i++ {
		step(t, m, clock)
	}
	assert.Nil(t, m.Current())
}

func TestDirectPlayNeverRecommends(t *testing.T) {
	m, clock, player := newTestMonitor(t, autoPrefs(), models.QualityHigh, false)

	player.set(StateBuffering)
	for i := 0; i < 10; i++ {
		step(t, m, clock)
	}
	assert.Nil(t, m.Current())
}

func TestLowestTierNeverRecommends(t *testing.T) {
	m, clock, player := newTestMonitor(t, autoPrefs(), models.QualityLow, true)

	player.set(StateBuffering)
	for i := 0; i < 10; i++ {
		step(t, m, clock)
	}
	assert.Nil(t, m.Current())
}

func TestDowngradeCooldown(t *testing.T) {
	m, clock, player := newTestMonitor(t, autoPrefs(), models.QualityMaximum, true)

	player.set(StateBuffering)
	for i := 0; i < 6; i++ {
		step(t, m, clock)
	}
	first := m.Current()
	require.NotNil(t, first)
	m.ClearRecommendation()

	// Still buffering: within the cooldown nothing new is emitted even
	// though the sustained threshold stays exceeded.
	for i := 0; i < 10; i++ {
		step(t, m, clock)
	}
	assert.Nil(t, m.Current())

	// Once the cooldown elapses the ongoing episode emits again.
	clock.Advance(m.cfg.DowngradeCooldown)
	step(t, m, clock)
	second := m.Current()
	require.NotNil(t, second)
	assert.Equal(t, models.SeverityHigh, second.Severity)
}

func TestNewerRecommendationOverwrites(t *testing.T) {
	m, clock, player := newTestMonitor(t, autoPrefs(), models.QualityMaximum, true)

	player.set(StateBuffering)
	for i := 0; i < 6; i++ {
		step(t, m, clock)
	}
	require.NotNil(t, m.Current())
	assert.Equal(t, models.SeverityHigh, m.Current().Severity)

	// Recover, wait out the cooldown, then trip the frequency rule; the
	// Medium recommendation replaces the unconsumed High one.
	player.set(StateReady)
	step(t, m, clock)
	clock.Advance(m.cfg.DowngradeCooldown)

	for i := 0; i < 2; i++ {
		player.set(StateBuffering)
		step(t, m, clock)
		player.set(StateReady)
		step(t, m, clock)
	}

	rec := m.Current()
	require.NotNil(t, rec)
	assert.Equal(t, models.SeverityMedium, rec.Severity)
}

func TestOtherStateEndsBufferingEpisode(t *testing.T) {
	m, clock, player := newTestMonitor(t, autoPrefs(), models.QualityHigh, true)

	player.set(StateBuffering)
	step(t, m, clock)
	assert.False(t, m.bufferingStart.IsZero())

	player.set(StateOther)
	step(t, m, clock)
	assert.True(t, m.bufferingStart.IsZero())
	assert.Equal(t, 1, m.eventCount)
}

func TestResetBufferingTrackingKeepsRecommendation(t *testing.T) {
	m, clock, player := newTestMonitor(t, autoPrefs(), models.QualityHigh, true)

	player.set(StateBuffering)
	for i := 0; i < 6; i++ {
		step(t, m, clock)
	}
	require.NotNil(t, m.Current())

	m.ResetBufferingTracking()
	assert.True(t, m.bufferingStart.IsZero())
	assert.Equal(t, 0, m.eventCount)
	assert.NotNil(t, m.Current(), "reset keeps the pending recommendation")
}

func TestClearRecommendation(t *testing.T) {
	m, clock, player := newTestMonitor(t, autoPrefs(), models.QualityHigh, true)

	player.set(StateBuffering)
	for i := 0; i < 6; i++ {
		step(t, m, clock)
	}
	require.NotNil(t, m.Current())

	m.ClearRecommendation()
	assert.Nil(t, m.Current())
}

func TestSamplePropagatesCancellation(t *testing.T) {
	m, _, player := newTestMonitor(t, autoPrefs(), models.QualityHigh, true)
	player.err = context.Canceled

	err := m.sample(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSampleErrorDoesNotChangeState(t *testing.T) {
	m, _, player := newTestMonitor(t, autoPrefs(), models.QualityHigh, true)
	player.err = errors.New("player gone")

	err := m.sample(context.Background())
	require.Error(t, err)
	assert.Nil(t, m.Current())
	assert.Equal(t, 0, m.eventCount)
}

func TestStartStopLifecycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleInterval = time.Millisecond
	m := NewMonitor(cfg, autoPrefs(), nil)
	player := &fakePlayer{state: StateReady}

	require.NoError(t, m.Start(context.Background(), player, models.QualityHigh, true))
	assert.True(t, m.Running())
	assert.Error(t, m.Start(context.Background(), player, models.QualityHigh, true))

	// The loop is actually sampling.
	require.Eventually(t, func() bool {
		return player.samples.Load() >= 3
	}, time.Second, time.Millisecond)

	m.Stop()
	assert.False(t, m.Running())
	assert.Nil(t, m.Current())

	// Stop is idempotent and the monitor can be started again.
	m.Stop()
	require.NoError(t, m.Start(context.Background(), player, models.QualityMedium, true))
	m.Stop()
}

func TestStopClearsAllState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleInterval = time.Hour // loop never fires; samples driven by hand
	m := NewMonitor(cfg, autoPrefs(), nil)
	clock := newFakeClock()
	m.now = clock.Now
	player := &fakePlayer{state: StateBuffering}

	require.NoError(t, m.Start(context.Background(), player, models.QualityHigh, true))
	for i := 0; i < 6; i++ {
		clock.Advance(time.Second)
		require.NoError(t, m.sample(context.Background()))
	}
	require.NotNil(t, m.Current())
	require.Equal(t, 1, m.eventCount)

	m.Stop()
	assert.Nil(t, m.Current())
	assert.Equal(t, 0, m.eventCount)
	assert.True(t, m.bufferingStart.IsZero())
}

// Package preferences holds the user's playback preferences as an observable
// in-memory value backed by the database. The decision engine and the
// adaptive bitrate monitor read the current value on every evaluation; writes
// go through Update so the persisted row and the cached copy never diverge.
package preferences

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/jmylchreest/playarr/internal/models"
	"github.com/jmylchreest/playarr/internal/repository"
)

// Reader is the read-only view consumed by the decision engine and monitor.
type Reader interface {
	// Current returns a copy of the active preferences.
	Current() models.PlaybackPreferences
}

// Store is the observable preference store.
type Store struct {
	repo   repository.PreferencesRepository
	logger *slog.Logger

	mu        sync.RWMutex
	current   models.PlaybackPreferences
	listeners []func(models.PlaybackPreferences)
}

// NewStore creates a Store holding default preferences. Call Load to hydrate
// from the database.
func NewStore(repo repository.PreferencesRepository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		repo:    repo,
		logger:  logger,
		current: models.DefaultPlaybackPreferences(),
	}
}

// Load hydrates the store from the database. A missing row leaves the
// defaults in place without persisting them.
func (s *Store) Load(ctx context.Context) error {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}
	if stored == nil {
		s.logger.Debug("no stored preferences, using defaults")
		return nil
	}

	s.mu.Lock()
	s.current = *stored
	s.mu.Unlock()
	return nil
}

// Current implements Reader.
func (s *Store) Current() models.PlaybackPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates, persists, and publishes new preferences.
func (s *Store) Update(ctx context.Context, prefs models.PlaybackPreferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, &prefs); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}

	s.mu.Lock()
	s.current = prefs
	// Snapshot so listeners run without holding the lock; a listener may
	// subscribe or update in turn.
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.logger.Info("preferences updated",
		slog.String("quality", string(prefs.TranscodingQuality)),
		slog.Int64("max_bitrate_wifi", prefs.MaxBitrateWifi),
		slog.Int64("max_bitrate_cellular", prefs.MaxBitrateCellular),
		slog.Int("max_audio_channels", prefs.MaxAudioChannels),
	)

	for _, fn := range listeners {
		fn(prefs)
	}
	return nil
}

// Subscribe registers a listener invoked after every successful Update.
// Listeners run synchronously on the updating goroutine.
func (s *Store) Subscribe(fn func(models.PlaybackPreferences)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

var _ Reader = (*Store)(nil)

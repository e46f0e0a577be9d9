// Package repository defines data access interfaces for playarr entities.
// All database access goes through these interfaces, enabling easy testing
// and database backend switching.
package repository

import (
	"context"
	"time"

	"github.com/jmylchreest/playarr/internal/models"
)

// PreferencesRepository defines operations for playback preference persistence.
// Preferences are a singleton row: Get returns the current row (nil when none
// has been saved yet), Save creates or replaces it.
type PreferencesRepository interface {
	// Get retrieves the current preferences, or nil if none are stored.
	Get(ctx context.Context) (*models.PlaybackPreferences, error)
	// Save creates or updates the preferences row.
	Save(ctx context.Context, prefs *models.PlaybackPreferences) error
}

// SessionRepository defines operations for playback session history.
type SessionRepository interface {
	// Create records a playback decision.
	Create(ctx context.Context, session *models.PlaybackSession) error
	// GetByID retrieves a session by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.PlaybackSession, error)
	// GetRecent retrieves the most recent sessions, newest first.
	GetRecent(ctx context.Context, limit int) ([]*models.PlaybackSession, error)
	// GetByItemID retrieves all sessions for an item, newest first.
	GetByItemID(ctx context.Context, itemID string) ([]*models.PlaybackSession, error)
	// Count returns the total number of stored sessions.
	Count(ctx context.Context) (int64, error)
	// DeleteOlderThan hard-deletes sessions created before the cutoff and
	// returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

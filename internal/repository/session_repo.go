package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jmylchreest/playarr/internal/models"
)

// sessionRepository implements SessionRepository using GORM.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create records a playback decision.
func (r *sessionRepository) Create(ctx context.Context, session *models.PlaybackSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validating session: %w", err)
	}
	return r.db.WithContext(ctx).Create(session).Error
}

// GetByID retrieves a session by ID.
func (r *sessionRepository) GetByID(ctx context.Context, id models.ULID) (*models.PlaybackSession, error) {
	var session models.PlaybackSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// GetRecent retrieves the most recent sessions, newest first.
func (r *sessionRepository) GetRecent(ctx context.Context, limit int) ([]*models.PlaybackSession, error) {
	var sessions []*models.PlaybackSession
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetByItemID retrieves all sessions for an item, newest first.
func (r *sessionRepository) GetByItemID(ctx context.Context, itemID string) ([]*models.PlaybackSession, error) {
	var sessions []*models.PlaybackSession
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Count returns the total number of stored sessions.
func (r *sessionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PlaybackSession{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteOlderThan hard-deletes sessions created before the cutoff.
func (r *sessionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&models.PlaybackSession{})
	return result.RowsAffected, result.Error
}

var _ SessionRepository = (*sessionRepository)(nil)

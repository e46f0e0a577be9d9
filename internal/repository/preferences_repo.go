package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jmylchreest/playarr/internal/models"
)

// preferencesRepository implements PreferencesRepository using GORM.
type preferencesRepository struct {
	db *gorm.DB
}

// NewPreferencesRepository creates a new PreferencesRepository.
func NewPreferencesRepository(db *gorm.DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

// Get retrieves the current preferences row, nil when none has been saved.
func (r *preferencesRepository) Get(ctx context.Context) (*models.PlaybackPreferences, error) {
	var prefs models.PlaybackPreferences
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&prefs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prefs, nil
}

// Save creates or updates the singleton preferences row.
func (r *preferencesRepository) Save(ctx context.Context, prefs *models.PlaybackPreferences) error {
	if err := prefs.Validate(); err != nil {
		return fmt.Errorf("validating preferences: %w", err)
	}

	existing, err := r.Get(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		prefs.ID = existing.ID
		prefs.CreatedAt = existing.CreatedAt
	}
	return r.db.WithContext(ctx).Save(prefs).Error
}

var _ PreferencesRepository = (*preferencesRepository)(nil)

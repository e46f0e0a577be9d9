package models

import (
	"errors"
	"fmt"
)

// ErrValidation represents a validation error with field and message.
type ErrValidation struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ErrValidation) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Common errors for playback resolution and preference validation.
var (
	// ErrPlaybackInfoFetch indicates the media server playback-info call failed.
	ErrPlaybackInfoFetch = errors.New("failed to get playback info")

	// ErrNoMediaSources indicates the server returned zero candidate sources.
	ErrNoMediaSources = errors.New("no media sources available for playback")

	// ErrNoStreamURL indicates the server client could not construct a stream URL.
	ErrNoStreamURL = errors.New("unable to generate playback URL")

	// ErrItemIDRequired indicates a required item identifier is empty.
	ErrItemIDRequired = errors.New("item id is required")

	// ErrInvalidQuality indicates an unrecognized transcoding quality value.
	ErrInvalidQuality = errors.New("invalid transcoding quality: must be auto, low, medium, high, or maximum")

	// ErrInvalidBitrateCap indicates a non-positive per-network bitrate cap.
	ErrInvalidBitrateCap = errors.New("bitrate cap must be positive")

	// ErrInvalidAudioChannels indicates an out-of-range audio channel count.
	ErrInvalidAudioChannels = errors.New("audio channels must be between 1 and 8")
)

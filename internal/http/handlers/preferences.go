package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/playarr/internal/models"
)

// PreferenceStore is the preference surface the handler needs.
type PreferenceStore interface {
	Current() models.PlaybackPreferences
	Update(ctx context.Context, prefs models.PlaybackPreferences) error
}

// PreferencesHandler handles playback preference endpoints.
type PreferencesHandler struct {
	store PreferenceStore
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(store PreferenceStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// PreferencesBody is the wire shape for playback preferences.
type PreferencesBody struct {
	TranscodingQuality string `json:"transcoding_quality" enum:"auto,low,medium,high,maximum" doc:"Explicit quality tier, or auto to follow network quality"`
	MaxBitrateWifi     int64  `json:"max_bitrate_wifi" minimum:"1" doc:"Direct play/stream bitrate cap on wifi, bps"`
	MaxBitrateCellular int64  `json:"max_bitrate_cellular" minimum:"1" doc:"Direct play/stream bitrate cap on cellular, bps"`
	MaxAudioChannels   int    `json:"max_audio_channels" minimum:"1" maximum:"8" doc:"Audio channel cap on transcoded streams"`
}

// GetPreferencesInput is the input for the preferences read endpoint.
type GetPreferencesInput struct{}

// PreferencesOutput is the output for both preference endpoints.
type PreferencesOutput struct {
	Body PreferencesBody
}

// UpdatePreferencesInput is the input for the preferences update endpoint.
type UpdatePreferencesInput struct {
	Body PreferencesBody
}

// Register registers the preference routes with the API.
func (h *PreferencesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getPreferences",
		Method:      "GET",
		Path:        "/api/v1/preferences",
		Summary:     "Get playback preferences",
		Tags:        []string{"Preferences"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "updatePreferences",
		Method:      "PUT",
		Path:        "/api/v1/preferences",
		Summary:     "Update playback preferences",
		Description: "Validates and persists the playback preferences, then applies them to subsequent decisions",
		Tags:        []string{"Preferences"},
	}, h.Update)
}

// Get returns the current playback preferences.
func (h *PreferencesHandler) Get(ctx context.Context, input *GetPreferencesInput) (*PreferencesOutput, error) {
	return &PreferencesOutput{Body: toPreferencesBody(h.store.Current())}, nil
}

// Update validates and persists new playback preferences.
func (h *PreferencesHandler) Update(ctx context.Context, input *UpdatePreferencesInput) (*PreferencesOutput, error) {
	quality, ok := models.ParseTranscodingQuality(input.Body.TranscodingQuality)
	if !ok {
		return nil, huma.Error400BadRequest("invalid transcoding quality: " + input.Body.TranscodingQuality)
	}

	next := h.store.Current()
	next.TranscodingQuality = quality
	next.MaxBitrateWifi = input.Body.MaxBitrateWifi
	next.MaxBitrateCellular = input.Body.MaxBitrateCellular
	next.MaxAudioChannels = input.Body.MaxAudioChannels

	if err := h.store.Update(ctx, next); err != nil {
		if errors.Is(err, models.ErrInvalidQuality) ||
			errors.Is(err, models.ErrInvalidBitrateCap) ||
			errors.Is(err, models.ErrInvalidAudioChannels) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return nil, huma.Error500InternalServerError("failed to update preferences", err)
	}

	return &PreferencesOutput{Body: toPreferencesBody(h.store.Current())}, nil
}

func toPreferencesBody(p models.PlaybackPreferences) PreferencesBody {
	return PreferencesBody{
		TranscodingQuality: p.TranscodingQuality.String(),
		MaxBitrateWifi:     p.MaxBitrateWifi,
		MaxBitrateCellular: p.MaxBitrateCellular,
		MaxAudioChannels:   p.MaxAudioChannels,
	}
}

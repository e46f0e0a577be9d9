package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/playarr/internal/abr"
	"github.com/jmylchreest/playarr/internal/models"
)

// MonitorHandler exposes the adaptive bitrate monitor: session start/stop
// bound to the external player's playback lifecycle, the player state push
// the sampling loop observes, and the recommendation slot.
type MonitorHandler struct {
	monitor *abr.Monitor
	player  *abr.ReportedState
}

// NewMonitorHandler creates a new monitor handler.
func NewMonitorHandler(monitor *abr.Monitor, player *abr.ReportedState) *MonitorHandler {
	return &MonitorHandler{monitor: monitor, player: player}
}

// MonitorStatusInput is the input for the monitor status endpoint.
type MonitorStatusInput struct{}

// MonitorStatusOutput is the output for the monitor status endpoint.
type MonitorStatusOutput struct {
	Body struct {
		Running        bool                          `json:"running"`
		Recommendation *models.QualityRecommendation `json:"recommendation,omitempty"`
	}
}

// StartMonitorInput describes the playback session the monitor should watch.
type StartMonitorInput struct {
	Body struct {
		// Quality is the session's effective tier, from the playback decision.
		Quality string `json:"quality" enum:"low,medium,high,maximum" doc:"Effective quality tier of the session"`
		// Transcoding is true for transcode and direct-stream sessions.
		Transcoding bool `json:"transcoding" doc:"Whether the session is transcoded or direct-streamed"`
	}
}

// StartMonitorOutput is the output for the monitor start endpoint.
type StartMonitorOutput struct {
	Body struct {
		Running bool `json:"running"`
	}
}

// StopMonitorInput is the input for the monitor stop endpoint.
type StopMonitorInput struct{}

// StopMonitorOutput is the output for the monitor stop endpoint.
type StopMonitorOutput struct {
	Body struct {
		Running bool `json:"running"`
	}
}

// PlayerStateInput is the player's pushed state report.
type PlayerStateInput struct {
	Body struct {
		State string `json:"state" enum:"buffering,ready,other" doc:"Current player state"`
	}
}

// PlayerStateOutput is the output for the player state endpoint.
type PlayerStateOutput struct {
	Body struct {
		State string `json:"state"`
	}
}

// ClearRecommendationInput is the input for the recommendation clear endpoint.
type ClearRecommendationInput struct{}

// ClearRecommendationOutput is the output for the recommendation clear endpoint.
type ClearRecommendationOutput struct {
	Body struct {
		Cleared bool `json:"cleared"`
	}
}

// ResetTrackingInput is the input for the tracking reset endpoint.
type ResetTrackingInput struct{}

// ResetTrackingOutput is the output for the tracking reset endpoint.
type ResetTrackingOutput struct {
	Body struct {
		Reset bool `json:"reset"`
	}
}

// Register registers the monitor routes with the API.
func (h *MonitorHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getMonitorStatus",
		Method:      "GET",
		Path:        "/api/v1/monitor",
		Summary:     "Get monitor status",
		Description: "Returns whether the adaptive bitrate monitor is running and the pending quality recommendation, if any",
		Tags:        []string{"Monitor"},
	}, h.Status)

	huma.Register(api, huma.Operation{
		OperationID: "startMonitor",
		Method:      "POST",
		Path:        "/api/v1/monitor/start",
		Summary:     "Start monitoring a playback session",
		Description: "The player calls this when a transcoded or direct-streamed session begins, passing the decision's quality tier",
		Tags:        []string{"Monitor"},
	}, h.Start)

	huma.Register(api, huma.Operation{
		OperationID: "stopMonitor",
		Method:      "POST",
		Path:        "/api/v1/monitor/stop",
		Summary:     "Stop monitoring",
		Description: "The player calls this when the session ends; all tracking state and the recommendation slot are cleared",
		Tags:        []string{"Monitor"},
	}, h.Stop)

	huma.Register(api, huma.Operation{
		OperationID: "reportPlayerState",
		Method:      "PUT",
		Path:        "/api/v1/monitor/player-state",
		Summary:     "Report the player's current state",
		Description: "The player pushes state transitions here; the monitor samples the last reported state each interval",
		Tags:        []string{"Monitor"},
	}, h.ReportPlayerState)

	huma.Register(api, huma.Operation{
		OperationID: "clearRecommendation",
		Method:      "DELETE",
		Path:        "/api/v1/monitor/recommendation",
		Summary:     "Clear the pending recommendation",
		Description: "Used after the caller has consumed or dismissed the recommendation",
		Tags:        []string{"Monitor"},
	}, h.ClearRecommendation)

	huma.Register(api, huma.Operation{
		OperationID: "resetBufferingTracking",
		Method:      "POST",
		Path:        "/api/v1/monitor/reset",
		Summary:     "Reset buffering tracking",
		Description: "Clears buffering counters after a quality change has been applied",
		Tags:        []string{"Monitor"},
	}, h.ResetTracking)
}

// Status returns the monitor state and pending recommendation.
func (h *MonitorHandler) Status(ctx context.Context, input *MonitorStatusInput) (*MonitorStatusOutput, error) {
	out := &MonitorStatusOutput{}
	out.Body.Running = h.monitor.Running()
	out.Body.Recommendation = h.monitor.Current()
	return out, nil
}

// Start begins sampling for a new playback session.
func (h *MonitorHandler) Start(ctx context.Context, input *StartMonitorInput) (*StartMonitorOutput, error) {
	quality, ok := models.ParseTranscodingQuality(input.Body.Quality)
	if !ok || quality.IsAuto() {
		return nil, huma.Error400BadRequest("quality must be a concrete tier: " + input.Body.Quality)
	}

	// New sessions start from a clean player view.
	h.player.Report(abr.StateReady)

	// The sampling loop outlives this request; only Stop ends it.
	if err := h.monitor.Start(context.WithoutCancel(ctx), h.player, quality, input.Body.Transcoding); err != nil {
		return nil, huma.Error409Conflict(err.Error())
	}

	out := &StartMonitorOutput{}
	out.Body.Running = true
	return out, nil
}

// Stop ends the session's sampling loop and clears all monitor state.
func (h *MonitorHandler) Stop(ctx context.Context, input *StopMonitorInput) (*StopMonitorOutput, error) {
	h.monitor.Stop()
	out := &StopMonitorOutput{}
	out.Body.Running = false
	return out, nil
}

// ReportPlayerState records the player's pushed state.
func (h *MonitorHandler) ReportPlayerState(ctx context.Context, input *PlayerStateInput) (*PlayerStateOutput, error) {
	h.player.Report(abr.PlayerState(input.Body.State))
	out := &PlayerStateOutput{}
	out.Body.State = input.Body.State
	return out, nil
}

// ClearRecommendation empties the recommendation slot.
func (h *MonitorHandler) ClearRecommendation(ctx context.Context, input *ClearRecommendationInput) (*ClearRecommendationOutput, error) {
	h.monitor.ClearRecommendation()
	out := &ClearRecommendationOutput{}
	out.Body.Cleared = true
	return out, nil
}

// ResetTracking clears the buffering counters.
func (h *MonitorHandler) ResetTracking(ctx context.Context, input *ResetTrackingInput) (*ResetTrackingOutput, error) {
	h.monitor.ResetBufferingTracking()
	out := &ResetTrackingOutput{}
	out.Body.Reset = true
	return out, nil
}

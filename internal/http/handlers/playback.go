package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/playarr/internal/mediaserver"
	"github.com/jmylchreest/playarr/internal/models"
	"github.com/jmylchreest/playarr/internal/playback"
)

// PlaybackResolver is the decision engine surface the handler needs.
type PlaybackResolver interface {
	ResolveOptimalPlayback(ctx context.Context, req playback.Request) (models.PlaybackResult, error)
	ForceTranscode(ctx context.Context, req playback.Request) (models.PlaybackResult, error)
}

// PlaybackHandler handles playback decision endpoints.
type PlaybackHandler struct {
	engine PlaybackResolver
}

// NewPlaybackHandler creates a new playback handler.
func NewPlaybackHandler(engine PlaybackResolver) *PlaybackHandler {
	return &PlaybackHandler{engine: engine}
}

// ResolveRequest is the request body for playback resolution.
type ResolveRequest struct {
	ItemID              string `json:"item_id" minLength:"1" doc:"Media server item identifier"`
	AudioStreamIndex    *int   `json:"audio_stream_index,omitempty" doc:"Explicit audio stream selection"`
	SubtitleStreamIndex *int   `json:"subtitle_stream_index,omitempty" doc:"Explicit subtitle stream selection"`
}

// PlaybackDecision is the serialized decision: method plus exactly one of
// the three payloads.
type PlaybackDecision struct {
	Method     models.PlaybackMethod    `json:"method" enum:"direct_play,direct_stream,transcode,error"`
	DirectPlay *models.DirectPlayResult `json:"direct_play,omitempty"`
	Transcode  *models.TranscodeResult  `json:"transcode,omitempty"`
	Error      *models.ErrorResult      `json:"error,omitempty"`
}

// ResolveInput is the input for the resolve endpoints.
type ResolveInput struct {
	Body ResolveRequest
}

// ResolveOutput is the output for the resolve endpoints.
type ResolveOutput struct {
	Body PlaybackDecision
}

// Register registers the playback routes with the API.
func (h *PlaybackHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "resolvePlayback",
		Method:      "POST",
		Path:        "/api/v1/playback/resolve",
		Summary:     "Resolve optimal playback method",
		Description: "Decides between direct play, direct stream, and transcode for an item and returns a ready-to-use stream URL",
		Tags:        []string{"Playback"},
	}, h.Resolve)

	huma.Register(api, huma.Operation{
		OperationID: "forceTranscode",
		Method:      "POST",
		Path:        "/api/v1/playback/transcode",
		Summary:     "Force a transcode decision",
		Description: "Bypasses direct play and direct stream evaluation, used to recover from direct playback failures",
		Tags:        []string{"Playback"},
	}, h.ForceTranscode)
}

// Resolve runs the full decision sequence for an item.
func (h *PlaybackHandler) Resolve(ctx context.Context, input *ResolveInput) (*ResolveOutput, error) {
	return h.decide(ctx, input, h.engine.ResolveOptimalPlayback)
}

// ForceTranscode skips direct playback evaluation for an item.
func (h *PlaybackHandler) ForceTranscode(ctx context.Context, input *ResolveInput) (*ResolveOutput, error) {
	return h.decide(ctx, input, h.engine.ForceTranscode)
}

func (h *PlaybackHandler) decide(ctx context.Context, input *ResolveInput, fn func(context.Context, playback.Request) (models.PlaybackResult, error)) (*ResolveOutput, error) {
	req := playback.Request{
		ItemID: input.Body.ItemID,
		Selection: mediaserver.StreamSelection{
			AudioStreamIndex:    input.Body.AudioStreamIndex,
			SubtitleStreamIndex: input.Body.SubtitleStreamIndex,
		},
	}

	result, err := fn(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, huma.Error500InternalServerError("playback resolution failed", err)
	}

	return &ResolveOutput{Body: toDecision(result)}, nil
}

// toDecision maps the engine's result variants onto the wire shape.
func toDecision(result models.PlaybackResult) PlaybackDecision {
	decision := PlaybackDecision{Method: result.Method()}

	switch r := result.(type) {
	case models.DirectPlayResult:
		decision.DirectPlay = &r
	case *models.DirectPlayResult:
		decision.DirectPlay = r
	case models.TranscodeResult:
		decision.Transcode = &r
	case *models.TranscodeResult:
		decision.Transcode = r
	case models.ErrorResult:
		decision.Error = &r
	case *models.ErrorResult:
		decision.Error = r
	}

	return decision
}

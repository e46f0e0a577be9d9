// Package mediaserver talks to the upstream media server: it fetches playback
// info for an item and builds direct-stream and transcoded-stream URLs. All
// wire-format concerns live here; the decision engine only sees the Client
// interface and the models types.
package mediaserver

import (
	"context"

	"github.com/jmylchreest/playarr/internal/models"
)

// StreamSelection carries optional explicit track choices for a playback
// attempt. Nil indexes mean "server default".
type StreamSelection struct {
	AudioStreamIndex    *int
	SubtitleStreamIndex *int
}

// TranscodeParams are the parameters attached to a transcoded-stream URL.
// VideoCodec may be the "copy" sentinel to request remux-only video.
type TranscodeParams struct {
	MediaSourceID    string
	PlaySessionID    string
	MaxBitrate       int64
	MaxWidth         int
	MaxHeight        int
	VideoCodec       string
	AudioCodec       string
	Container        string
	MaxAudioChannels int
	Selection        StreamSelection
}

// Client is the media server collaborator consumed by the decision engine.
type Client interface {
	// FetchPlaybackInfo asks the server for candidate media sources for an
	// item, advertising the device capabilities so the server can mark each
	// source with its direct play / direct stream / transcode support.
	FetchPlaybackInfo(ctx context.Context, itemID string, sel StreamSelection, caps models.DeviceCapabilities) (*models.PlaybackInfo, error)

	// DirectStreamURL builds a static stream URL for the item. No transcoding
	// parameters are attached.
	DirectStreamURL(itemID, container, mediaSourceID, playSessionID string) (string, error)

	// TranscodeURL builds a transcoded stream URL for the item.
	TranscodeURL(itemID string, params TranscodeParams) (string, error)

	// BaseURL returns the configured server base URL, empty if unconfigured.
	BaseURL() string
}

package mediaserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jmylchreest/playarr/internal/httpclient"
	"github.com/jmylchreest/playarr/internal/models"
)

// HTTPClient is the Client implementation over HTTP. Transport-level retry
// and circuit-breaker policy lives in the httpclient package; this layer
// performs exactly one logical attempt per call.
type HTTPClient struct {
	builder *URLBuilder
	http    *httpclient.Client
	token   string
	logger  *slog.Logger
}

// Options configure an HTTPClient.
type Options struct {
	BaseURL  string
	Token    string
	DeviceID string
	// Transport is the underlying resilient client. Nil gets a default.
	Transport *httpclient.Client
	Logger    *slog.Logger
}

// NewHTTPClient creates a media server client.
func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Transport == nil {
		cfg := httpclient.DefaultConfig()
		cfg.Logger = opts.Logger
		opts.Transport = httpclient.New(cfg)
	}
	return &HTTPClient{
		builder: NewURLBuilder(opts.BaseURL, opts.Token, opts.DeviceID),
		http:    opts.Transport,
		token:   opts.Token,
		logger:  opts.Logger,
	}
}

// playbackInfoRequest is the wire body for the PlaybackInfo endpoint.
type playbackInfoRequest struct {
	DeviceProfile       deviceProfile `json:"DeviceProfile"`
	AudioStreamIndex    *int          `json:"AudioStreamIndex,omitempty"`
	SubtitleStreamIndex *int          `json:"SubtitleStreamIndex,omitempty"`
}

type deviceProfile struct {
	VideoCodecs []string `json:"VideoCodecs"`
	AudioCodecs []string `json:"AudioCodecs"`
	Supports4K  bool     `json:"Supports4K"`
}

// Wire shapes for the PlaybackInfo response.
type playbackInfoResponse struct {
	MediaSources  []wireMediaSource `json:"MediaSources"`
	PlaySessionID string            `json:"PlaySessionId"`
}

type wireMediaSource struct {
	ID                   string       `json:"Id"`
	Container            string       `json:"Container"`
	Bitrate              int64        `json:"Bitrate"`
	SupportsDirectPlay   bool         `json:"SupportsDirectPlay"`
	SupportsDirectStream bool         `json:"SupportsDirectStream"`
	SupportsTranscoding  bool         `json:"SupportsTranscoding"`
	MediaStreams         []wireStream `json:"MediaStreams"`
}

type wireStream struct {
	Index    int    `json:"Index"`
	Type     string `json:"Type"`
	Codec    string `json:"Codec"`
	Width    int    `json:"Width"`
	Height   int    `json:"Height"`
	Channels int    `json:"Channels"`
	Language string `json:"Language"`
	Default  bool   `json:"IsDefault"`
}

// FetchPlaybackInfo implements Client.
func (c *HTTPClient) FetchPlaybackInfo(ctx context.Context, itemID string, sel StreamSelection, caps models.DeviceCapabilities) (*models.PlaybackInfo, error) {
	if c.builder.BaseURL() == "" {
		return nil, ErrNoBaseURL
	}
	if itemID == "" {
		return nil, ErrNoItemID
	}

	body, err := json.Marshal(playbackInfoRequest{
		DeviceProfile: deviceProfile{
			VideoCodecs: caps.VideoCodecs,
			AudioCodecs: caps.AudioCodecs,
			Supports4K:  caps.Supports4K,
		},
		AudioStreamIndex:    sel.AudioStreamIndex,
		SubtitleStreamIndex: sel.SubtitleStreamIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding playback info request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/Items/%s/PlaybackInfo", c.builder.BaseURL(), url.PathEscape(itemID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating playback info request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", `MediaBrowser Token="`+c.token+`"`)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("playback info request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("playback info request: unexpected status %d", resp.StatusCode)
	}

	var wire playbackInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding playback info response: %w", err)
	}

	info := &models.PlaybackInfo{
		PlaySessionID: wire.PlaySessionID,
		MediaSources:  make([]models.MediaSourceCandidate, 0, len(wire.MediaSources)),
	}
	for _, src := range wire.MediaSources {
		info.MediaSources = append(info.MediaSources, toCandidate(src))
	}

	c.logger.Debug("fetched playback info",
		slog.String("item_id", itemID),
		slog.Int("sources", len(info.MediaSources)),
		slog.String("play_session_id", info.PlaySessionID),
	)
	return info, nil
}

func toCandidate(src wireMediaSource) models.MediaSourceCandidate {
	candidate := models.MediaSourceCandidate{
		ID:                   src.ID,
		Container:            src.Container,
		Bitrate:              src.Bitrate,
		SupportsDirectPlay:   src.SupportsDirectPlay,
		SupportsDirectStream: src.SupportsDirectStream,
		SupportsTranscoding:  src.SupportsTranscoding,
		Streams:              make([]models.MediaStream, 0, len(src.MediaStreams)),
	}
	for _, s := range src.MediaStreams {
		candidate.Streams = append(candidate.Streams, models.MediaStream{
			Index:    s.Index,
			Type:     parseStreamType(s.Type),
			Codec:    s.Codec,
			Width:    s.Width,
			Height:   s.Height,
			Channels: s.Channels,
			Language: s.Language,
			Default:  s.Default,
		})
	}
	return candidate
}

func parseStreamType(s string) models.StreamType {
	switch strings.ToLower(s) {
	case "video":
		return models.StreamTypeVideo
	case "audio":
		return models.StreamTypeAudio
	case "subtitle":
		return models.StreamTypeSubtitle
	default:
		return models.StreamType(strings.ToLower(s))
	}
}

// DirectStreamURL implements Client.
func (c *HTTPClient) DirectStreamURL(itemID, container, mediaSourceID, playSessionID string) (string, error) {
	return c.builder.DirectStreamURL(itemID, container, mediaSourceID, playSessionID)
}

// TranscodeURL implements Client.
func (c *HTTPClient) TranscodeURL(itemID string, params TranscodeParams) (string, error) {
	return c.builder.TranscodeURL(itemID, params)
}

// BaseURL implements Client.
func (c *HTTPClient) BaseURL() string {
	return c.builder.BaseURL()
}

var _ Client = (*HTTPClient)(nil)

package mediaserver

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jmylchreest/playarr/internal/urlutil"
)

// URL construction errors.
var (
	ErrNoBaseURL = errors.New("no server base URL configured")
	ErrNoItemID  = errors.New("item id is required")
)

// URLBuilder constructs stream URLs against a media server.
type URLBuilder struct {
	baseURL  string
	token    string
	deviceID string
}

// NewURLBuilder creates a builder. The base URL is normalized; an empty base
// URL produces ErrNoBaseURL from every build call.
func NewURLBuilder(baseURL, token, deviceID string) *URLBuilder {
	return &URLBuilder{
		baseURL:  urlutil.NormalizeBaseURL(baseURL),
		token:    token,
		deviceID: deviceID,
	}
}

// BaseURL returns the normalized server base URL.
func (b *URLBuilder) BaseURL() string {
	return b.baseURL
}

// DirectStreamURL builds a static stream URL:
//
//	{base}/Videos/{itemID}/stream.{container}?Static=true&...
func (b *URLBuilder) DirectStreamURL(itemID, container, mediaSourceID, playSessionID string) (string, error) {
	if b.baseURL == "" {
		return "", ErrNoBaseURL
	}
	if itemID == "" {
		return "", ErrNoItemID
	}

	path := fmt.Sprintf("/Videos/%s/stream", url.PathEscape(itemID))
	if container != "" {
		path += "." + url.PathEscape(container)
	}

	q := url.Values{}
	q.Set("Static", "true")
	if mediaSourceID != "" {
		q.Set("MediaSourceId", mediaSourceID)
	}
	if playSessionID != "" {
		q.Set("PlaySessionId", playSessionID)
	}
	b.addIdentity(q)

	return urlutil.JoinPath(b.baseURL, path) + "?" + q.Encode(), nil
}

// TranscodeURL builds a transcoded stream URL with explicit target parameters.
func (b *URLBuilder) TranscodeURL(itemID string, params TranscodeParams) (string, error) {
	if b.baseURL == "" {
		return "", ErrNoBaseURL
	}
	if itemID == "" {
		return "", ErrNoItemID
	}

	path := fmt.Sprintf("/Videos/%s/stream", url.PathEscape(itemID))
	if params.Container != "" {
		path += "." + url.PathEscape(params.Container)
	}

	q := url.Values{}
	if params.VideoCodec != "" {
		q.Set("VideoCodec", params.VideoCodec)
	}
	if params.AudioCodec != "" {
		q.Set("AudioCodec", params.AudioCodec)
	}
	if params.MaxBitrate > 0 {
		q.Set("VideoBitrate", strconv.FormatInt(params.MaxBitrate, 10))
	}
	if params.MaxWidth > 0 {
		q.Set("MaxWidth", strconv.Itoa(params.MaxWidth))
	}
	if params.MaxHeight > 0 {
		q.Set("MaxHeight", strconv.Itoa(params.MaxHeight))
	}
	if params.MaxAudioChannels > 0 {
		q.Set("MaxAudioChannels", strconv.Itoa(params.MaxAudioChannels))
	}
	if params.MediaSourceID != "" {
		q.Set("MediaSourceId", params.MediaSourceID)
	}
	if params.PlaySessionID != "" {
		q.Set("PlaySessionId", params.PlaySessionID)
	}
	if params.Selection.AudioStreamIndex != nil {
		q.Set("AudioStreamIndex", strconv.Itoa(*params.Selection.AudioStreamIndex))
	}
	if params.Selection.SubtitleStreamIndex != nil {
		q.Set("SubtitleStreamIndex", strconv.Itoa(*params.Selection.SubtitleStreamIndex))
	}
	b.addIdentity(q)

	return urlutil.JoinPath(b.baseURL, path) + "?" + q.Encode(), nil
}

func (b *URLBuilder) addIdentity(q url.Values) {
	if b.token != "" {
		q.Set("api_key", b.token)
	}
	if b.deviceID != "" {
		q.Set("DeviceId", b.deviceID)
	}
}

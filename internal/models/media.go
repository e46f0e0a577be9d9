package models

// StreamType identifies the kind of track inside a media source.
type StreamType string

// Stream type constants.
const (
	StreamTypeVideo    StreamType = "video"
	StreamTypeAudio    StreamType = "audio"
	StreamTypeSubtitle StreamType = "subtitle"
)

// MediaStream is one track of a media source candidate as advertised by the
// media server. Width/Height are set for video streams, Channels for audio.
type MediaStream struct {
	Index    int        `json:"index"`
	Type     StreamType `json:"type"`
	Codec    string     `json:"codec"`
	Width    int        `json:"width,omitempty"`
	Height   int        `json:"height,omitempty"`
	Channels int        `json:"channels,omitempty"`
	Language string     `json:"language,omitempty"`
	Default  bool       `json:"default,omitempty"`
}

// MediaSourceCandidate is one playable representation of an item as
// advertised by the media server. Immutable once fetched; valid only for
// the playback attempt identified by the owning PlaybackInfo's session id.
type MediaSourceCandidate struct {
	ID        string        `json:"id"`
	Container string        `json:"container"`
	Streams   []MediaStream `json:"streams"`
	// Bitrate is the overall bitrate of the source in bits per second.
	Bitrate int64 `json:"bitrate"`

	// Server-advertised capability flags; independent of each other.
	SupportsDirectPlay   bool `json:"supports_direct_play"`
	SupportsDirectStream bool `json:"supports_direct_stream"`
	SupportsTranscoding  bool `json:"supports_transcoding"`
}

// VideoStream returns the first video stream, or nil if the source has none.
func (m *MediaSourceCandidate) VideoStream() *MediaStream {
	return m.firstStream(StreamTypeVideo)
}

// AudioStream returns the default audio stream if flagged, else the first
// audio stream, or nil if the source has none.
func (m *MediaSourceCandidate) AudioStream() *MediaStream {
	var first *MediaStream
	for i := range m.Streams {
		s := &m.Streams[i]
		if s.Type != StreamTypeAudio {
			continue
		}
		if s.Default {
			return s
		}
		if first == nil {
			first = s
		}
	}
	return first
}

func (m *MediaSourceCandidate) firstStream(t StreamType) *MediaStream {
	for i := range m.Streams {
		if m.Streams[i].Type == t {
			return &m.Streams[i]
		}
	}
	return nil
}

// PlaybackInfo is the resolver's result: the candidate sources for one item
// plus the server-issued play session token that correlates subsequent
// stream requests with this resolution.
type PlaybackInfo struct {
	MediaSources  []MediaSourceCandidate `json:"media_sources"`
	PlaySessionID string                 `json:"play_session_id"`
}

// DeviceCapabilities summarizes what the local device can decode, as
// reported by the capability oracle. Fetched fresh per decision.
type DeviceCapabilities struct {
	VideoCodecs []string `json:"video_codecs"`
	AudioCodecs []string `json:"audio_codecs"`
	Supports4K  bool     `json:"supports_4k"`
}

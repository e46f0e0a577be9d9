package models

// PlaybackMethod names the chosen delivery method for a playback attempt.
type PlaybackMethod string

// Playback method constants.
const (
	MethodDirectPlay   PlaybackMethod = "direct_play"
	MethodDirectStream PlaybackMethod = "direct_stream"
	MethodTranscode    PlaybackMethod = "transcode"
	MethodError        PlaybackMethod = "error"
)

// PlaybackResult is the decision engine's output: exactly one of
// DirectPlayResult, TranscodeResult, or ErrorResult. The unexported method
// keeps the set closed so callers handle every variant.
//
// A result is produced fresh for every playback attempt, never mutated, and
// consumed once; changing codecs or bitrate mid-session requires a new
// engine call.
type PlaybackResult interface {
	Method() PlaybackMethod
}

// DirectPlayResult streams the source file unmodified.
type DirectPlayResult struct {
	URL        string `json:"url"`
	Container  string `json:"container"`
	VideoCodec string `json:"video_codec,omitempty"`
	AudioCodec string `json:"audio_codec,omitempty"`
	Bitrate    int64  `json:"bitrate"`
	Reason     string `json:"reason"`
	SessionID  string `json:"session_id,omitempty"`
}

// Method implements PlaybackResult.
func (DirectPlayResult) Method() PlaybackMethod { return MethodDirectPlay }

// TranscodeResult streams a server-side transcode. It also carries the
// direct-stream case: TargetVideoCodec "copy" means the video track is
// remuxed unmodified and only audio is re-encoded.
type TranscodeResult struct {
	URL              string             `json:"url"`
	TargetBitrate    int64              `json:"target_bitrate"`
	TargetWidth      int                `json:"target_width"`
	TargetHeight     int                `json:"target_height"`
	TargetVideoCodec string             `json:"target_video_codec"`
	TargetAudioCodec string             `json:"target_audio_codec"`
	TargetContainer  string             `json:"target_container"`
	Quality          TranscodingQuality `json:"quality,omitempty"`
	Reason           string             `json:"reason"`
	SessionID        string             `json:"session_id,omitempty"`
}

// Method implements PlaybackResult.
func (r TranscodeResult) Method() PlaybackMethod {
	if r.TargetVideoCodec == "copy" {
		return MethodDirectStream
	}
	return MethodTranscode
}

// ErrorResult means the item cannot be played right now. Terminal for the
// attempt; callers surface it or retry via the force-transcode entry point.
type ErrorResult struct {
	Message string `json:"message"`
}

// Method implements PlaybackResult.
func (ErrorResult) Method() PlaybackMethod { return MethodError }

// RecommendationSeverity grades how strongly a downgrade is advised.
type RecommendationSeverity string

// Recommendation severity constants.
const (
	SeverityLow    RecommendationSeverity = "low"    // suggestion
	SeverityMedium RecommendationSeverity = "medium" // recommended
	SeverityHigh   RecommendationSeverity = "high"   // strongly recommended
)

// QualityRecommendation is the adaptive bitrate monitor's advisory output:
// a suggested target quality with a reason. Ephemeral; a newer
// recommendation supersedes it. It never interrupts playback on its own.
type QualityRecommendation struct {
	Quality  TranscodingQuality     `json:"quality"`
	Reason   string                 `json:"reason"`
	Severity RecommendationSeverity `json:"severity"`
}

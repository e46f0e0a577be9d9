package models

// Network bitrate ceilings in bits per second. Wifi and cellular ceilings
// are user preferences; ethernet and unknown networks default to these
// policy values, overridable through configuration.
const (
	// DefaultMaxBitrateWifi is the default wifi bitrate cap.
	DefaultMaxBitrateWifi int64 = 20_000_000
	// DefaultMaxBitrateCellular is the default cellular bitrate cap.
	DefaultMaxBitrateCellular int64 = 4_000_000
	// EthernetBitrateCeiling is the default ceiling for wired connections.
	EthernetBitrateCeiling int64 = 140_000_000
	// UnknownNetworkBitrateCeiling is the conservative default ceiling applied
	// when the network type cannot be classified.
	UnknownNetworkBitrateCeiling int64 = 3_000_000

	// DefaultMaxAudioChannels is the default preferred audio channel cap.
	DefaultMaxAudioChannels = 6
)

// PlaybackPreferences holds the user-configured playback quality settings.
// A single row is persisted; the preference store keeps an observable copy.
type PlaybackPreferences struct {
	BaseModel

	// TranscodingQuality is the explicit tier override, or Auto to derive
	// the tier from current network quality.
	TranscodingQuality TranscodingQuality `gorm:"type:varchar(16);default:auto" json:"transcoding_quality"`

	// MaxBitrateWifi caps direct play/stream bitrate on wifi, in bps.
	MaxBitrateWifi int64 `gorm:"default:20000000" json:"max_bitrate_wifi"`

	// MaxBitrateCellular caps direct play/stream bitrate on cellular, in bps.
	MaxBitrateCellular int64 `gorm:"default:4000000" json:"max_bitrate_cellular"`

	// MaxAudioChannels caps the audio channel count on transcoded streams.
	MaxAudioChannels int `gorm:"default:6" json:"max_audio_channels"`
}

// TableName returns the database table name.
func (PlaybackPreferences) TableName() string {
	return "playback_preferences"
}

// DefaultPlaybackPreferences returns preferences with default values.
func DefaultPlaybackPreferences() PlaybackPreferences {
	return PlaybackPreferences{
		TranscodingQuality: QualityAuto,
		MaxBitrateWifi:     DefaultMaxBitrateWifi,
		MaxBitrateCellular: DefaultMaxBitrateCellular,
		MaxAudioChannels:   DefaultMaxAudioChannels,
	}
}

// Validate checks the preferences for valid values.
func (p *PlaybackPreferences) Validate() error {
	if _, ok := ParseTranscodingQuality(string(p.TranscodingQuality)); !ok {
		return ErrInvalidQuality
	}
	if p.MaxBitrateWifi <= 0 || p.MaxBitrateCellular <= 0 {
		return ErrInvalidBitrateCap
	}
	if p.MaxAudioChannels < 1 || p.MaxAudioChannels > 8 {
		return ErrInvalidAudioChannels
	}
	return nil
}

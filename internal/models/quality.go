package models

import (
	"strings"

	"github.com/jmylchreest/playarr/internal/codec"
)

// TranscodingQuality is one of a small ordered set of transcoding presets.
// Auto defers the choice to the current network quality tier.
type TranscodingQuality string

// Transcoding quality constants, ordered Low < Medium < High < Maximum.
const (
	QualityAuto    TranscodingQuality = "auto"
	QualityLow     TranscodingQuality = "low"
	QualityMedium  TranscodingQuality = "medium"
	QualityHigh    TranscodingQuality = "high"
	QualityMaximum TranscodingQuality = "maximum"
)

// ParseTranscodingQuality parses a quality string.
func ParseTranscodingQuality(s string) (TranscodingQuality, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return QualityAuto, true
	case "low":
		return QualityLow, true
	case "medium":
		return QualityMedium, true
	case "high":
		return QualityHigh, true
	case "maximum", "max":
		return QualityMaximum, true
	default:
		return "", false
	}
}

// String returns the string representation of the quality.
func (q TranscodingQuality) String() string {
	return string(q)
}

// IsAuto returns true for the automatic (network-derived) quality.
func (q TranscodingQuality) IsAuto() bool {
	return q == QualityAuto
}

// NextLower returns the next lower quality tier, clamping at Low.
// Auto has no defined ladder position and clamps to Low as well.
func (q TranscodingQuality) NextLower() TranscodingQuality {
	switch q {
	case QualityMaximum:
		return QualityHigh
	case QualityHigh:
		return QualityMedium
	case QualityMedium:
		return QualityLow
	default:
		return QualityLow
	}
}

// TierParams is the fixed transcode parameter tuple for one quality tier.
type TierParams struct {
	MaxBitrate int64
	MaxWidth   int
	MaxHeight  int
	VideoCodec codec.Video
	AudioCodec codec.Audio
	Container  codec.Container
}

// qualityTiers maps each explicit tier to its transcode parameters.
// The video codec listed here is the baseline target; High and Maximum may
// upgrade it to the source codec or the device's best supported codec.
var qualityTiers = map[TranscodingQuality]TierParams{
	QualityLow: {
		MaxBitrate: 1_000_000,
		MaxWidth:   854,
		MaxHeight:  480,
		VideoCodec: codec.VideoH264,
		AudioCodec: codec.AudioAAC,
		Container:  codec.ContainerMP4,
	},
	QualityMedium: {
		MaxBitrate: 4_000_000,
		MaxWidth:   1280,
		MaxHeight:  720,
		VideoCodec: codec.VideoH264,
		AudioCodec: codec.AudioAAC,
		Container:  codec.ContainerMP4,
	},
	QualityHigh: {
		MaxBitrate: 8_000_000,
		MaxWidth:   1920,
		MaxHeight:  1080,
		VideoCodec: codec.VideoH264,
		AudioCodec: codec.AudioAAC,
		Container:  codec.ContainerMP4,
	},
	QualityMaximum: {
		MaxBitrate: 20_000_000,
		MaxWidth:   3840,
		MaxHeight:  2160,
		VideoCodec: codec.VideoH265,
		AudioCodec: codec.AudioAAC,
		Container:  codec.ContainerMPEGTS,
	},
}

// Params returns the transcode parameter tuple for an explicit tier.
// Auto has no tuple of its own; callers must map it to an explicit tier
// via QualityForNetwork first.
func (q TranscodingQuality) Params() (TierParams, bool) {
	p, ok := qualityTiers[q]
	return p, ok
}

// NetworkType classifies the active network connection.
type NetworkType string

// Network type constants.
const (
	NetworkWifi     NetworkType = "wifi"
	NetworkCellular NetworkType = "cellular"
	NetworkEthernet NetworkType = "ethernet"
	NetworkOther    NetworkType = "other"
)

// ParseNetworkType parses a network type string.
func ParseNetworkType(s string) (NetworkType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wifi":
		return NetworkWifi, true
	case "cellular":
		return NetworkCellular, true
	case "ethernet":
		return NetworkEthernet, true
	case "other", "unknown":
		return NetworkOther, true
	default:
		return "", false
	}
}

// NetworkQuality is a coarse tier describing current connection quality.
type NetworkQuality string

// Network quality constants.
const (
	NetworkExcellent NetworkQuality = "excellent"
	NetworkGood      NetworkQuality = "good"
	NetworkFair      NetworkQuality = "fair"
	NetworkPoor      NetworkQuality = "poor"
)

// ParseNetworkQuality parses a network quality string.
func ParseNetworkQuality(s string) (NetworkQuality, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "excellent":
		return NetworkExcellent, true
	case "good":
		return NetworkGood, true
	case "fair":
		return NetworkFair, true
	case "poor":
		return NetworkPoor, true
	default:
		return "", false
	}
}

// QualityForNetwork maps a network quality tier to the transcoding quality
// used when the user preference is Auto.
func QualityForNetwork(nq NetworkQuality) TranscodingQuality {
	switch nq {
	case NetworkExcellent:
		return QualityMaximum
	case NetworkGood:
		return QualityHigh
	case NetworkFair:
		return QualityMedium
	default:
		return QualityLow
	}
}

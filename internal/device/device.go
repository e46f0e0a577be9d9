// Package device describes what the local playback device can decode and
// render. The decision engine consults an Oracle instead of probing hardware
// directly so tests can substitute fixed profiles.
package device

import (
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/jmylchreest/playarr/internal/codec"
	"github.com/jmylchreest/playarr/internal/models"
)

// Oracle answers capability questions about the playback device.
type Oracle interface {
	// CanPlayContainer reports whether the container can be played without
	// remuxing.
	CanPlayContainer(container string) bool
	// CanPlayVideoCodec reports whether the video codec can be decoded at
	// the given dimensions.
	CanPlayVideoCodec(name string, width, height int) bool
	// CanPlayAudioCodec reports whether the audio codec can be decoded with
	// the given channel count.
	CanPlayAudioCodec(name string, channels int) bool
	// Capabilities returns the capability summary sent to the media server.
	Capabilities() models.DeviceCapabilities
}

// Profile is a static capability description.
type Profile struct {
	Containers  []string
	VideoCodecs []string
	AudioCodecs []string
	MaxWidth    int
	MaxHeight   int
	MaxChannels int
	Supports4K  bool
}

// StaticOracle answers from a fixed Profile.
type StaticOracle struct {
	mu      sync.RWMutex
	profile Profile
}

// NewStaticOracle builds an oracle from a profile. Codec and container names
// are normalized so the profile can use common aliases (hevc, matroska).
func NewStaticOracle(profile Profile) *StaticOracle {
	o := &StaticOracle{}
	o.SetProfile(profile)
	return o
}

// SetProfile replaces the active profile.
func (o *StaticOracle) SetProfile(profile Profile) {
	normalized := profile
	normalized.Containers = normalizeAll(profile.Containers, codec.NormalizeContainer)
	normalized.VideoCodecs = normalizeAll(profile.VideoCodecs, codec.NormalizeVideo)
	normalized.AudioCodecs = normalizeAll(profile.AudioCodecs, codec.NormalizeAudio)

	o.mu.Lock()
	o.profile = normalized
	o.mu.Unlock()
}

// Profile returns a copy of the active profile.
func (o *StaticOracle) Profile() Profile {
	o.mu.RLock()
	defer o.mu.RUnlock()

	p := o.profile
	p.Containers = append([]string(nil), o.profile.Containers...)
	p.VideoCodecs = append([]string(nil), o.profile.VideoCodecs...)
	p.AudioCodecs = append([]string(nil), o.profile.AudioCodecs...)
	return p
}

// CanPlayContainer implements Oracle.
func (o *StaticOracle) CanPlayContainer(container string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return contains(o.profile.Containers, codec.NormalizeContainer(container))
}

// CanPlayVideoCodec implements Oracle.
func (o *StaticOracle) CanPlayVideoCodec(name string, width, height int) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !contains(o.profile.VideoCodecs, codec.NormalizeVideo(name)) {
		return false
	}
	if o.profile.MaxWidth > 0 && width > o.profile.MaxWidth {
		return false
	}
	if o.profile.MaxHeight > 0 && height > o.profile.MaxHeight {
		return false
	}
	return true
}

// CanPlayAudioCodec implements Oracle.
func (o *StaticOracle) CanPlayAudioCodec(name string, channels int) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !contains(o.profile.AudioCodecs, codec.NormalizeAudio(name)) {
		return false
	}
	if o.profile.MaxChannels > 0 && channels > o.profile.MaxChannels {
		return false
	}
	return true
}

// Capabilities implements Oracle.
func (o *StaticOracle) Capabilities() models.DeviceCapabilities {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return models.DeviceCapabilities{
		VideoCodecs: append([]string(nil), o.profile.VideoCodecs...),
		AudioCodecs: append([]string(nil), o.profile.AudioCodecs...),
		Supports4K:  o.profile.Supports4K,
	}
}

// DefaultProfile returns a conservative profile for the local host. Hardware
// HEVC decode is assumed on modern CPUs with enough cores to software-decode
// 4K as a fallback.
func DefaultProfile() Profile {
	profile := Profile{
		Containers:  []string{"mp4", "mkv", "ts", "webm"},
		VideoCodecs: []string{"h264", "hevc", "vp9", "vp8"},
		AudioCodecs: []string{"aac", "mp3", "opus", "flac", "ac3"},
		MaxWidth:    1920,
		MaxHeight:   1080,
		MaxChannels: 6,
		Supports4K:  false,
	}

	// Best effort: count logical CPUs to decide whether 4K playback is
	// plausible. Probe errors leave the 1080p defaults in place.
	if counts, err := cpu.Counts(true); err == nil && counts >= 4 {
		profile.MaxWidth = 3840
		profile.MaxHeight = 2160
		profile.Supports4K = true
	}

	return profile
}

func normalizeAll(in []string, norm func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := norm(strings.TrimSpace(s)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

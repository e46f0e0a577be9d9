// Package codec provides a unified registry for video codecs, audio codecs,
// and container formats. It consolidates the alias normalization and
// preference ranking used throughout playarr when matching server-advertised
// media sources against device capabilities and choosing transcode targets.
package codec

import "strings"

// Video represents a video codec.
type Video string

// Video codec constants.
const (
	VideoH264 Video = "h264" // H.264/AVC
	VideoH265 Video = "h265" // H.265/HEVC
	VideoVP8  Video = "vp8"  // VP8
	VideoVP9  Video = "vp9"  // VP9
	VideoAV1  Video = "av1"  // AV1
	// Legacy codecs seen in older library files (detection targets only)
	VideoMPEG2  Video = "mpeg2"
	VideoMPEG4  Video = "mpeg4"
	VideoVC1    Video = "vc1"
	VideoTheora Video = "theora"
)

// VideoCopy is the sentinel passed to a media server to request that the
// video track be remuxed without re-encoding (direct stream).
const VideoCopy = "copy"

// Audio represents an audio codec.
type Audio string

// Audio codec constants.
const (
	AudioAAC    Audio = "aac"
	AudioMP3    Audio = "mp3"
	AudioAC3    Audio = "ac3"  // Dolby Digital
	AudioEAC3   Audio = "eac3" // Dolby Digital Plus
	AudioOpus   Audio = "opus"
	AudioVorbis Audio = "vorbis"
	AudioFLAC   Audio = "flac"
	AudioDTS    Audio = "dts"
	AudioTrueHD Audio = "truehd"
	AudioPCM    Audio = "pcm"
)

// Container represents a media container format.
type Container string

// Container format constants.
const (
	ContainerMP4    Container = "mp4"
	ContainerMKV    Container = "mkv"
	ContainerWebM   Container = "webm"
	ContainerMPEGTS Container = "ts"
	ContainerMOV    Container = "mov"
	ContainerAVI    Container = "avi"
	ContainerOGG    Container = "ogg"
)

// String returns the string representation of the video codec.
func (v Video) String() string {
	return string(v)
}

// String returns the string representation of the audio codec.
func (a Audio) String() string {
	return string(a)
}

// String returns the string representation of the container.
func (c Container) String() string {
	return string(c)
}

// videoInfo contains metadata about a video codec.
type videoInfo struct {
	// Canonical name (h264, h265, etc.)
	Name Video
	// All known aliases (server names, RFC 6381 prefixes, muxer names)
	Aliases []string
	// Transcode target preference rank; lower is better, 0 = not a target
	TargetRank int
}

// audioInfo contains metadata about an audio codec.
type audioInfo struct {
	Name    Audio
	Aliases []string
}

// containerInfo contains metadata about a container format.
type containerInfo struct {
	Name    Container
	Aliases []string
	// Streamable indicates the container tolerates arbitrary embedded video
	// without re-encoding, making it usable as a direct-stream target.
	Streamable bool
}

// videoRegistry contains all video codec definitions.
//
// TargetRank encodes the device-side preference order for transcode targets:
// h265 > h264 > vp9 > vp8. Codecs with rank 0 are decode/detect only.
var videoRegistry = map[Video]*videoInfo{
	VideoH264: {
		Name:       VideoH264,
		Aliases:    []string{"h264", "avc", "avc1", "avc3", "h.264", "x264"},
		TargetRank: 2,
	},
	VideoH265: {
		Name:       VideoH265,
		Aliases:    []string{"h265", "hevc", "hev1", "hvc1", "h.265", "x265"},
		TargetRank: 1,
	},
	VideoVP8: {
		Name:       VideoVP8,
		Aliases:    []string{"vp8", "vp08"},
		TargetRank: 4,
	},
	VideoVP9: {
		Name:       VideoVP9,
		Aliases:    []string{"vp9", "vp09"},
		TargetRank: 3,
	},
	VideoAV1: {
		Name:    VideoAV1,
		Aliases: []string{"av1", "av01"},
	},
	VideoMPEG2: {
		Name:    VideoMPEG2,
		Aliases: []string{"mpeg2", "mpeg2video"},
	},
	VideoMPEG4: {
		Name:    VideoMPEG4,
		Aliases: []string{"mpeg4", "divx", "xvid"},
	},
	VideoVC1: {
		Name:    VideoVC1,
		Aliases: []string{"vc1", "wmv3"},
	},
	VideoTheora: {
		Name:    VideoTheora,
		Aliases: []string{"theora"},
	},
}

// audioRegistry contains all audio codec definitions.
var audioRegistry = map[Audio]*audioInfo{
	AudioAAC:    {Name: AudioAAC, Aliases: []string{"aac", "mp4a", "aac_latm", "he-aac"}},
	AudioMP3:    {Name: AudioMP3, Aliases: []string{"mp3", "mp3float"}},
	AudioAC3:    {Name: AudioAC3, Aliases: []string{"ac3", "ac-3", "a52"}},
	AudioEAC3:   {Name: AudioEAC3, Aliases: []string{"eac3", "ec-3", "ddp"}},
	AudioOpus:   {Name: AudioOpus, Aliases: []string{"opus"}},
	AudioVorbis: {Name: AudioVorbis, Aliases: []string{"vorbis"}},
	AudioFLAC:   {Name: AudioFLAC, Aliases: []string{"flac"}},
	AudioDTS:    {Name: AudioDTS, Aliases: []string{"dts", "dca"}},
	AudioTrueHD: {Name: AudioTrueHD, Aliases: []string{"truehd", "mlp"}},
	AudioPCM:    {Name: AudioPCM, Aliases: []string{"pcm", "pcm_s16le", "pcm_s24le", "lpcm"}},
}

// containerRegistry contains all container definitions.
var containerRegistry = map[Container]*containerInfo{
	ContainerMP4:    {Name: ContainerMP4, Aliases: []string{"mp4", "m4v"}, Streamable: false},
	ContainerMKV:    {Name: ContainerMKV, Aliases: []string{"mkv", "matroska"}, Streamable: false},
	ContainerWebM:   {Name: ContainerWebM, Aliases: []string{"webm"}, Streamable: false},
	ContainerMPEGTS: {Name: ContainerMPEGTS, Aliases: []string{"ts", "mpegts", "mts", "m2ts"}, Streamable: true},
	ContainerMOV:    {Name: ContainerMOV, Aliases: []string{"mov", "qt"}, Streamable: false},
	ContainerAVI:    {Name: ContainerAVI, Aliases: []string{"avi"}, Streamable: false},
	ContainerOGG:    {Name: ContainerOGG, Aliases: []string{"ogg", "ogv"}, Streamable: false},
}

var (
	videoAliasIndex     map[string]Video
	audioAliasIndex     map[string]Audio
	containerAliasIndex map[string]Container
)

func init() {
	videoAliasIndex = make(map[string]Video)
	for codec, info := range videoRegistry {
		for _, alias := range info.Aliases {
			videoAliasIndex[strings.ToLower(alias)] = codec
		}
	}

	audioAliasIndex = make(map[string]Audio)
	for codec, info := range audioRegistry {
		for _, alias := range info.Aliases {
			audioAliasIndex[strings.ToLower(alias)] = codec
		}
	}

	containerAliasIndex = make(map[string]Container)
	for container, info := range containerRegistry {
		for _, alias := range info.Aliases {
			containerAliasIndex[strings.ToLower(alias)] = container
		}
	}
}

// ParseVideo parses a string (codec name or alias) to a Video codec.
// Profile suffixes from RFC 6381 strings (e.g. "avc1.64001f") are stripped.
func ParseVideo(s string) (Video, bool) {
	s = baseName(s)
	if s == "" {
		return "", false
	}
	codec, ok := videoAliasIndex[s]
	return codec, ok
}

// ParseAudio parses a string (codec name or alias) to an Audio codec.
func ParseAudio(s string) (Audio, bool) {
	s = baseName(s)
	if s == "" {
		return "", false
	}
	codec, ok := audioAliasIndex[s]
	return codec, ok
}

// ParseContainer parses a container name or file extension.
func ParseContainer(s string) (Container, bool) {
	s = baseName(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if s == "" {
		return "", false
	}
	c, ok := containerAliasIndex[s]
	return c, ok
}

// baseName lowercases, trims, and strips any RFC 6381 profile suffix that
// is not itself a registered alias ("avc1.64001f" -> "avc1", "ac-3" stays).
func baseName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := videoAliasIndex[s]; ok {
		return s
	}
	if _, ok := audioAliasIndex[s]; ok {
		return s
	}
	if i := strings.IndexByte(s, '.'); i > 0 {
		return s[:i]
	}
	return s
}

// NormalizeVideo normalizes a video codec name to its canonical form.
// Returns the input lowercased if not recognized.
func NormalizeVideo(name string) string {
	if codec, ok := ParseVideo(name); ok {
		return string(codec)
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeAudio normalizes an audio codec name to its canonical form.
func NormalizeAudio(name string) string {
	if codec, ok := ParseAudio(name); ok {
		return string(codec)
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeContainer normalizes a container name to its canonical form.
func NormalizeContainer(name string) string {
	if c, ok := ParseContainer(name); ok {
		return string(c)
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// VideoMatch returns true if two video codec strings represent the same codec.
// Handles aliases, profile suffixes, and case differences.
func VideoMatch(a, b string) bool {
	codecA, okA := ParseVideo(a)
	codecB, okB := ParseVideo(b)
	if !okA || !okB {
		return false
	}
	return codecA == codecB
}

// AudioMatch returns true if two audio codec strings represent the same codec.
func AudioMatch(a, b string) bool {
	codecA, okA := ParseAudio(a)
	codecB, okB := ParseAudio(b)
	if !okA || !okB {
		return false
	}
	return codecA == codecB
}

// IsCopy returns true if the codec string is the remux/copy sentinel.
func IsCopy(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), VideoCopy)
}

// IsStreamable returns true if the container tolerates arbitrary embedded
// video streams, making it usable as a direct-stream (video copy) target.
func (c Container) IsStreamable() bool {
	info, ok := containerRegistry[c]
	if !ok {
		return false
	}
	return info.Streamable
}

// TargetRank returns the transcode target preference rank for the codec.
// Lower is better; 0 means the codec is not an encoding target.
func (v Video) TargetRank() int {
	info, ok := videoRegistry[v]
	if !ok {
		return 0
	}
	return info.TargetRank
}

// TranscodeTargetVideoCodecs returns the video codecs usable as transcode
// targets, in device preference order (best first).
func TranscodeTargetVideoCodecs() []Video {
	return []Video{VideoH265, VideoH264, VideoVP9, VideoVP8}
}

// BestSupportedVideoCodec picks the highest-ranked transcode target out of
// the supplied set of device-supported codec names. Returns false if none
// of the supported names maps to a known target.
func BestSupportedVideoCodec(supported []string) (Video, bool) {
	supportedSet := make(map[Video]bool, len(supported))
	for _, name := range supported {
		if v, ok := ParseVideo(name); ok {
			supportedSet[v] = true
		}
	}
	for _, candidate := range TranscodeTargetVideoCodecs() {
		if supportedSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

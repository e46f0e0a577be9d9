package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVideo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Video
		ok    bool
	}{
		{"canonical h264", "h264", VideoH264, true},
		{"hevc alias", "hevc", VideoH265, true},
		{"uppercase", "HEVC", VideoH265, true},
		{"rfc6381 avc1", "avc1.64001f", VideoH264, true},
		{"rfc6381 hvc1", "hvc1.1.6.L120.90", VideoH265, true},
		{"vp9 fourcc", "vp09", VideoVP9, true},
		{"whitespace", "  h265  ", VideoH265, true},
		{"unknown", "rv40", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVideo(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAudio(t *testing.T) {
	tests := []struct {
		input string
		want  Audio
		ok    bool
	}{
		{"aac", AudioAAC, true},
		{"mp4a.40.2", AudioAAC, true},
		{"ac-3", AudioAC3, true},
		{"ec-3", AudioEAC3, true},
		{"dca", AudioDTS, true},
		{"pcm_s16le", AudioPCM, true},
		{"atmos", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAudio(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseContainer(t *testing.T) {
	tests := []struct {
		input string
		want  Container
		ok    bool
	}{
		{"mkv", ContainerMKV, true},
		{"matroska", ContainerMKV, true},
		{".mp4", ContainerMP4, true},
		{"m2ts", ContainerMPEGTS, true},
		{"MOV", ContainerMOV, true},
		{"iso", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseContainer(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVideoMatch(t *testing.T) {
	assert.True(t, VideoMatch("hevc", "h265"))
	assert.True(t, VideoMatch("avc1.64001f", "h264"))
	assert.False(t, VideoMatch("h264", "h265"))
	assert.False(t, VideoMatch("h264", ""))
	assert.False(t, VideoMatch("unknown1", "unknown1"))
}

func TestAudioMatch(t *testing.T) {
	assert.True(t, AudioMatch("mp4a.40.2", "aac"))
	assert.True(t, AudioMatch("ec-3", "eac3"))
	assert.False(t, AudioMatch("aac", "ac3"))
}

func TestIsCopy(t *testing.T) {
	assert.True(t, IsCopy("copy"))
	assert.True(t, IsCopy("COPY"))
	assert.False(t, IsCopy("h264"))
	assert.False(t, IsCopy(""))
}

func TestContainerIsStreamable(t *testing.T) {
	assert.True(t, ContainerMPEGTS.IsStreamable())
	assert.False(t, ContainerMP4.IsStreamable())
	assert.False(t, Container("zip").IsStreamable())
}

func TestBestSupportedVideoCodec(t *testing.T) {
	tests := []struct {
		name      string
		supported []string
		want      Video
		ok        bool
	}{
		{"prefers h265 over h264", []string{"h264", "hevc", "vp9"}, VideoH265, true},
		{"falls back to h264", []string{"vp8", "h264"}, VideoH264, true},
		{"vp9 before vp8", []string{"vp8", "vp9"}, VideoVP9, true},
		{"aliases resolve", []string{"avc1"}, VideoH264, true},
		{"no targets", []string{"theora", "av1"}, "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestSupportedVideoCodec(tt.supported)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranscodeTargetRanking(t *testing.T) {
	targets := TranscodeTargetVideoCodecs()
	require.Len(t, targets, 4)

	// Ranks must be strictly increasing in the returned order.
	for i := 1; i < len(targets); i++ {
		assert.Less(t, targets[i-1].TargetRank(), targets[i].TargetRank())
	}

	// Non-targets report rank 0.
	assert.Zero(t, VideoAV1.TargetRank())
	assert.Zero(t, VideoMPEG2.TargetRank())
}

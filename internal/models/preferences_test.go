package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlaybackPreferences(t *testing.T) {
	prefs := DefaultPlaybackPreferences()
	require.NoError(t, prefs.Validate())
	assert.Equal(t, QualityAuto, prefs.TranscodingQuality)
	assert.Equal(t, DefaultMaxBitrateWifi, prefs.MaxBitrateWifi)
	assert.Equal(t, DefaultMaxBitrateCellular, prefs.MaxBitrateCellular)
	assert.Equal(t, DefaultMaxAudioChannels, prefs.MaxAudioChannels)
}

func TestPreferencesValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PlaybackPreferences)
		wantErr error
	}{
		{"valid defaults", func(p *PlaybackPreferences) {}, nil},
		{"explicit tier", func(p *PlaybackPreferences) { p.TranscodingQuality = QualityHigh }, nil},
		{"bad quality", func(p *PlaybackPreferences) { p.TranscodingQuality = "ultra" }, ErrInvalidQuality},
		{"zero wifi cap", func(p *PlaybackPreferences) { p.MaxBitrateWifi = 0 }, ErrInvalidBitrateCap},
		{"negative cellular cap", func(p *PlaybackPreferences) { p.MaxBitrateCellular = -1 }, ErrInvalidBitrateCap},
		{"zero channels", func(p *PlaybackPreferences) { p.MaxAudioChannels = 0 }, ErrInvalidAudioChannels},
		{"too many channels", func(p *PlaybackPreferences) { p.MaxAudioChannels = 9 }, ErrInvalidAudioChannels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := DefaultPlaybackPreferences()
			tt.mutate(&prefs)
			err := prefs.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMediaSourceStreamSelection(t *testing.T) {
	src := MediaSourceCandidate{
		ID:        "src1",
		Container: "mkv",
		Streams: []MediaStream{
			{Index: 0, Type: StreamTypeVideo, Codec: "hevc", Width: 1920, Height: 1080},
			{Index: 1, Type: StreamTypeAudio, Codec: "dts", Channels: 6},
			{Index: 2, Type: StreamTypeAudio, Codec: "aac", Channels: 2, Default: true},
			{Index: 3, Type: StreamTypeSubtitle, Codec: "srt"},
		},
	}

	video := src.VideoStream()
	require.NotNil(t, video)
	assert.Equal(t, "hevc", video.Codec)

	// The default-flagged audio stream wins over the first audio stream.
	audio := src.AudioStream()
	require.NotNil(t, audio)
	assert.Equal(t, "aac", audio.Codec)

	// Without a default flag the first audio stream is used.
	src.Streams[2].Default = false
	audio = src.AudioStream()
	require.NotNil(t, audio)
	assert.Equal(t, "dts", audio.Codec)

	empty := MediaSourceCandidate{ID: "empty"}
	assert.Nil(t, empty.VideoStream())
	assert.Nil(t, empty.AudioStream())
}

func TestPlaybackResultVariants(t *testing.T) {
	var r PlaybackResult

	r = DirectPlayResult{URL: "http://x/stream"}
	assert.Equal(t, MethodDirectPlay, r.Method())

	r = TranscodeResult{TargetVideoCodec: "h264"}
	assert.Equal(t, MethodTranscode, r.Method())

	// Video "copy" marks the direct-stream (audio-only transcode) case.
	r = TranscodeResult{TargetVideoCodec: "copy"}
	assert.Equal(t, MethodDirectStream, r.Method())

	r = ErrorResult{Message: "nope"}
	assert.Equal(t, MethodError, r.Method())
}

package models

import (
	"testing"

	"github.com/jmylchreest/playarr/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTranscodingQuality(t *testing.T) {
	tests := []struct {
		input string
		want  TranscodingQuality
		ok    bool
	}{
		{"auto", QualityAuto, true},
		{"LOW", QualityLow, true},
		{"Medium", QualityMedium, true},
		{"high", QualityHigh, true},
		{"maximum", QualityMaximum, true},
		{"max", QualityMaximum, true},
		{" high ", QualityHigh, true},
		{"ultra", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTranscodingQuality(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextLower(t *testing.T) {
	assert.Equal(t, QualityHigh, QualityMaximum.NextLower())
	assert.Equal(t, QualityMedium, QualityHigh.NextLower())
	assert.Equal(t, QualityLow, QualityMedium.NextLower())
	// Low clamps at Low.
	assert.Equal(t, QualityLow, QualityLow.NextLower())
	assert.Equal(t, QualityLow, QualityAuto.NextLower())
}

func TestQualityParams(t *testing.T) {
	// Every explicit tier has parameters; Auto has none.
	for _, q := range []TranscodingQuality{QualityLow, QualityMedium, QualityHigh, QualityMaximum} {
		p, ok := q.Params()
		require.True(t, ok, "tier %s", q)
		assert.Positive(t, p.MaxBitrate)
		assert.Positive(t, p.MaxWidth)
		assert.Positive(t, p.MaxHeight)
		assert.Equal(t, codec.AudioAAC, p.AudioCodec)
	}

	_, ok := QualityAuto.Params()
	assert.False(t, ok)

	// Ladder is strictly increasing in bitrate and resolution.
	low, _ := QualityLow.Params()
	med, _ := QualityMedium.Params()
	high, _ := QualityHigh.Params()
	max, _ := QualityMaximum.Params()
	assert.Less(t, low.MaxBitrate, med.MaxBitrate)
	assert.Less(t, med.MaxBitrate, high.MaxBitrate)
	assert.Less(t, high.MaxBitrate, max.MaxBitrate)
	assert.Less(t, high.MaxHeight, max.MaxHeight)

	// Non-Maximum tiers use mp4, Maximum uses a transport stream.
	assert.Equal(t, codec.ContainerMP4, low.Container)
	assert.Equal(t, codec.ContainerMP4, med.Container)
	assert.Equal(t, codec.ContainerMP4, high.Container)
	assert.Equal(t, codec.ContainerMPEGTS, max.Container)
}

func TestQualityForNetwork(t *testing.T) {
	assert.Equal(t, QualityMaximum, QualityForNetwork(NetworkExcellent))
	assert.Equal(t, QualityHigh, QualityForNetwork(NetworkGood))
	assert.Equal(t, QualityMedium, QualityForNetwork(NetworkFair))
	assert.Equal(t, QualityLow, QualityForNetwork(NetworkPoor))
	assert.Equal(t, QualityLow, QualityForNetwork(NetworkQuality("unknown")))
}

package playback

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/playarr/internal/device"
	"github.com/jmylchreest/playarr/internal/mediaserver"
	"github.com/jmylchreest/playarr/internal/models"
	"github.com/jmylchreest/playarr/internal/netcond"
)

// fakeClient implements mediaserver.Client with canned responses.
type fakeClient struct {
	info     *models.PlaybackInfo
	fetchErr error
	urlErr   error

	lastTranscode *mediaserver.TranscodeParams
}

func (f *fakeClient) FetchPlaybackInfo(ctx context.Context, itemID string, sel mediaserver.StreamSelection, caps models.DeviceCapabilities) (*models.PlaybackInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.info, nil
}

func (f *fakeClient) DirectStreamURL(itemID, container, mediaSourceID, playSessionID string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "http://srv/Videos/" + itemID + "/stream." + container + "?Static=true", nil
}

func (f *fakeClient) TranscodeURL(itemID string, params mediaserver.TranscodeParams) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	f.lastTranscode = &params
	q := url.Values{}
	q.Set("VideoCodec", params.VideoCodec)
	q.Set("AudioCodec", params.AudioCodec)
	q.Set("MaxWidth", strconv.Itoa(params.MaxWidth))
	return "http://srv/Videos/" + itemID + "/stream." + params.Container + "?" + q.Encode(), nil
}

func (f *fakeClient) BaseURL() string { return "http://srv" }

// fixedPrefs implements preferences.Reader.
type fixedPrefs struct {
	prefs models.PlaybackPreferences
}

func (p fixedPrefs) Current() models.PlaybackPreferences { return p.prefs }

// testOracle returns a 1080p device without DTS audio support.
func testOracle() *device.StaticOracle {
	return device.NewStaticOracle(device.Profile{
		Containers:  []string{"mp4", "mkv", "ts"},
		VideoCodecs: []string{"h264", "hevc"},
		AudioCodecs: []string{"aac", "mp3", "ac3"},
		MaxWidth:    1920,
		MaxHeight:   1080,
		MaxChannels: 6,
	})
}

func testNetwork(nt models.NetworkType, q models.NetworkQuality) *netcond.Tracker {
	tr := netcond.New()
	tr.Set(nt, q)
	return tr
}

func compatibleSource(direct bool) models.MediaSourceCandidate {
	return models.MediaSourceCandidate{
		ID:        "src1",
		Container: "mkv",
		Bitrate:   10_000_000,
		Streams: []models.MediaStream{
			{Index: 0, Type: models.StreamTypeVideo, Codec: "h264", Width: 1920, Height: 1080},
			{Index: 1, Type: models.StreamTypeAudio, Codec: "aac", Channels: 2},
		},
		SupportsDirectPlay:   direct,
		SupportsDirectStream: true,
		SupportsTranscoding:  true,
	}
}

func newTestEngine(client *fakeClient, prefs models.PlaybackPreferences, nt models.NetworkType, nq models.NetworkQuality) *Engine {
	return NewEngine(Options{
		Client:  client,
		Oracle:  testOracle(),
		Network: testNetwork(nt, nq),
		Prefs:   fixedPrefs{prefs},
	})
}

func TestServerConfirmedDirectPlay(t *testing.T) {
	client := &fakeClient{info: &models.PlaybackInfo{
		PlaySessionID: "ps1",
		MediaSources:  []models.MediaSourceCandidate{compatibleSource(true)},
	}}
	e := newTestEngine(client, models.DefaultPlaybackPreferences(), models.NetworkWifi, models.NetworkGood)

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)

	dp, ok := result.(models.DirectPlayResult)
	require.True(t, ok, "expected DirectPlayResult, got %T", result)
	assert.Equal(t, models.MethodDirectPlay, dp.Method())
	assert.Contains(t, dp.URL, "Static=true")
	assert.Equal(t, "ps1", dp.SessionID)
	assert.Equal(t, "h264", dp.VideoCodec)
}

func TestCompatibilityOverride(t *testing.T) {
	// No candidate claims direct play, but the oracle fully approves the
	// first candidate: the override chooses direct play anyway.
	src := compatibleSource(false)
	src.SupportsTranscoding = true
	client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}
	e := newTestEngine(client, models.DefaultPlaybackPreferences(), models.NetworkWifi, models.NetworkGood)

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)

	dp, ok := result.(models.DirectPlayResult)
	require.True(t, ok, "expected DirectPlayResult, got %T", result)
	assert.Contains(t, dp.Reason, "overriding")
}

func TestDirectPlayPrecedesTranscode(t *testing.T) {
	// A transcoding-capable candidate sits first; the direct-play-capable
	// candidate must still win.
	transcodeOnly := compatibleSource(false)
	transcodeOnly.ID = "src-transcode"
	transcodeOnly.Streams[1].Codec = "dts" // not directly playable
	direct := compatibleSource(true)
	direct.ID = "src-direct"

	client := &fakeClient{info: &models.PlaybackInfo{
		MediaSources: []models.MediaSourceCandidate{transcodeOnly, direct},
	}}
	e := newTestEngine(client, models.DefaultPlaybackPreferences(), models.NetworkWifi, models.NetworkGood)

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)
	assert.Equal(t, models.MethodDirectPlay, result.Method())
}

func TestServerRecommendedTranscode(t *testing.T) {
	src := compatibleSource(false)
	src.Streams[0].Codec = "av1" // device cannot play: override does not fire
	src.SupportsTranscoding = true
	client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}

	prefs := models.DefaultPlaybackPreferences()
	prefs.TranscodingQuality = models.QualityMedium
	e := newTestEngine(client, prefs, models.NetworkWifi, models.NetworkGood)

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)

	tr, ok := result.(models.TranscodeResult)
	require.True(t, ok, "expected TranscodeResult, got %T", result)
	assert.Equal(t, models.MethodTranscode, tr.Method())
	// Non-Maximum tiers use the fixed mp4 container from the tier mapping.
	assert.Equal(t, "mp4", tr.TargetContainer)
	assert.Equal(t, models.QualityMedium, tr.Quality)
}

func TestDirectStreamIgnoresAudioCodec(t *testing.T) {
	// Video supported, audio unsupported (dts, 8ch), no server flags set:
	// rule 5 must pick direct stream, not full transcode, not direct play.
	src := models.MediaSourceCandidate{
		ID:        "src1",
		Container: "mkv",
		Bitrate:   10_000_000,
		Streams: []models.MediaStream{
			{Index: 0, Type: models.StreamTypeVideo, Codec: "hevc", Width: 1920, Height: 1080},
			{Index: 1, Type: models.StreamTypeAudio, Codec: "dts", Channels: 8},
		},
		SupportsDirectStream: true,
	}
	client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}
	e := newTestEngine(client, models.DefaultPlaybackPreferences(), models.NetworkWifi, models.NetworkGood)

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)

	tr, ok := result.(models.TranscodeResult)
	require.True(t, ok, "expected TranscodeResult, got %T", result)
	assert.Equal(t, models.MethodDirectStream, tr.Method())
	assert.Equal(t, "copy", tr.TargetVideoCodec)
	assert.Equal(t, "aac", tr.TargetAudioCodec)
	assert.Equal(t, "ts", tr.TargetContainer)
	require.NotNil(t, client.lastTranscode)
	assert.Equal(t, models.DefaultMaxAudioChannels, client.lastTranscode.MaxAudioChannels)
}

func TestNoUpscaling(t *testing.T) {
	// A 720p source transcoded at High tier (1080p ceiling) keeps 720p.
	src := models.MediaSourceCandidate{
		ID:        "src1",
		Container: "avi", // unsupported container forces transcode
		Bitrate:   5_000_000,
		Streams: []models.MediaStream{
			{Index: 0, Type: models.StreamTypeVideo, Codec: "h264", Width: 1280, Height: 720},
			{Index: 1, Type: models.StreamTypeAudio, Codec: "aac", Channels: 2},
		},
	}
	client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}

	prefs := models.DefaultPlaybackPreferences()
	for _, quality := range []models.TranscodingQuality{
		models.QualityLow, models.QualityMedium, models.QualityHigh, models.QualityMaximum,
	} {
		prefs.TranscodingQuality = quality
		e := newTestEngine(client, prefs, models.NetworkWifi, models.NetworkGood)

		result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
		require.NoError(t, err)

		tr, ok := result.(models.TranscodeResult)
		require.True(t, ok, "tier %s: expected TranscodeResult, got %T", quality, result)
		assert.LessOrEqual(t, tr.TargetWidth, 1280, "tier %s", quality)
		assert.LessOrEqual(t, tr.TargetHeight, 720, "tier %s", quality)
	}
}

func TestMaximumTierClampsWithout4K(t *testing.T) {
	src := models.MediaSourceCandidate{
		ID:        "src1",
		Container: "avi",
		Streams: []models.MediaStream{
			{Index: 0, Type: models.StreamTypeVideo, Codec: "hevc", Width: 3840, Height: 2160},
		},
	}
	client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}

	prefs := models.DefaultPlaybackPreferences()
	prefs.TranscodingQuality = models.QualityMaximum
	e := newTestEngine(client, prefs, models.NetworkWifi, models.NetworkExcellent)

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)

	tr := result.(models.TranscodeResult)
	// The test oracle is a 1080p device: the 4K tier clamps down.
	assert.Equal(t, 1920, tr.TargetWidth)
	assert.Equal(t, 1080, tr.TargetHeight)
}

func TestAutoQualityFollowsNetwork(t *testing.T) {
	src := models.MediaSourceCandidate{
		ID:        "src1",
		Container: "avi",
		Streams: []models.MediaStream{
			{Index: 0, Type: models.StreamTypeVideo, Codec: "h264", Width: 3840, Height: 2160},
		},
	}

	tests := []struct {
		network models.NetworkQuality
		want    models.TranscodingQuality
	}{
		{models.NetworkExcellent, models.QualityMaximum},
		{models.NetworkGood, models.QualityHigh},
		{models.NetworkFair, models.QualityMedium},
		{models.NetworkPoor, models.QualityLow},
	}

	for _, tt := range tests {
		t.Run(string(tt.network), func(t *testing.T) {
			client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}
			e := newTestEngine(client, models.DefaultPlaybackPreferences(), models.NetworkWifi, tt.network)

			result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.(models.TranscodeResult).Quality)
		})
	}
}

func TestUnknownNetworkCeilingForcesTranscode(t *testing.T) {
	// 4 Mbps source over an unknown network (3 Mbps ceiling): both direct
	// play and direct stream are barred, a full transcode results.
	src := compatibleSource(true)
	src.Bitrate = 4_000_000
	client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}

	prefs := models.DefaultPlaybackPreferences()
	prefs.TranscodingQuality = models.QualityLow
	e := newTestEngine(client, prefs, models.NetworkOther, models.NetworkFair)

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)
	assert.Equal(t, models.MethodTranscode, result.Method())
}

func TestConfiguredEthernetCeiling(t *testing.T) {
	// A 10 Mbps source passes the default 140 Mbps wired ceiling but not a
	// configured 5 Mbps one.
	src := compatibleSource(true)
	client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}

	prefs := models.DefaultPlaybackPreferences()
	prefs.TranscodingQuality = models.QualityLow
	e := NewEngine(Options{
		Client:          client,
		Oracle:          testOracle(),
		Network:         testNetwork(models.NetworkEthernet, models.NetworkGood),
		Prefs:           fixedPrefs{prefs},
		EthernetCeiling: 5_000_000,
	})

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)
	assert.Equal(t, models.MethodTranscode, result.Method())
}

func TestConfiguredUnknownNetworkCeiling(t *testing.T) {
	// Raising the unclassified-network ceiling above the source bitrate lets
	// the 10 Mbps source play directly where the 3 Mbps default would not.
	src := compatibleSource(true)
	client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}

	e := NewEngine(Options{
		Client:                client,
		Oracle:                testOracle(),
		Network:               testNetwork(models.NetworkOther, models.NetworkFair),
		Prefs:                 fixedPrefs{models.DefaultPlaybackPreferences()},
		UnknownNetworkCeiling: 20_000_000,
	})

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)
	assert.Equal(t, models.MethodDirectPlay, result.Method())
}

func TestMediumLowAlwaysH264(t *testing.T) {
	// An av1 source the device cannot decode: Medium and Low must fall back
	// to h264, never the device's best codec.
	src := models.MediaSourceCandidate{
		ID:        "src1",
		Container: "avi",
		Streams: []models.MediaStream{
			{Index: 0, Type: models.StreamTypeVideo, Codec: "av1", Width: 1920, Height: 1080},
		},
	}

	prefs := models.DefaultPlaybackPreferences()
	for _, quality := range []models.TranscodingQuality{models.QualityLow, models.QualityMedium} {
		client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}
		prefs.TranscodingQuality = quality
		e := newTestEngine(client, prefs, models.NetworkWifi, models.NetworkGood)

		result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
		require.NoError(t, err)
		assert.Equal(t, "h264", result.(models.TranscodeResult).TargetVideoCodec, "tier %s", quality)
	}
}

func TestHighTierPrefersBestSupportedCodec(t *testing.T) {
	src := models.MediaSourceCandidate{
		ID:        "src1",
		Container: "avi",
		Streams: []models.MediaStream{
			{Index: 0, Type: models.StreamTypeVideo, Codec: "av1", Width: 1920, Height: 1080},
		},
	}
	client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}

	prefs := models.DefaultPlaybackPreferences()
	prefs.TranscodingQuality = models.QualityHigh
	e := newTestEngine(client, prefs, models.NetworkWifi, models.NetworkGood)

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)
	// The oracle supports h264+hevc; h265 ranks first in target preference.
	assert.Equal(t, "h265", result.(models.TranscodeResult).TargetVideoCodec)
}

func TestSourceCodecKeptWhenSupported(t *testing.T) {
	src := models.MediaSourceCandidate{
		ID:        "src1",
		Container: "avi",
		Streams: []models.MediaStream{
			{Index: 0, Type: models.StreamTypeVideo, Codec: "hevc", Width: 1920, Height: 1080},
		},
	}
	client := &fakeClient{info: &models.PlaybackInfo{MediaSources: []models.MediaSourceCandidate{src}}}

	prefs := models.DefaultPlaybackPreferences()
	prefs.TranscodingQuality = models.QualityHigh
	e := newTestEngine(client, prefs, models.NetworkWifi, models.NetworkGood)

	result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)
	assert.Equal(t, "h265", result.(models.TranscodeResult).TargetVideoCodec)
}

func TestForceTranscodeBypassesDirectPlay(t *testing.T) {
	// A fully direct-play-capable source still transcodes when forced.
	client := &fakeClient{info: &models.PlaybackInfo{
		PlaySessionID: "ps1",
		MediaSources:  []models.MediaSourceCandidate{compatibleSource(true)},
	}}
	prefs := models.DefaultPlaybackPreferences()
	prefs.TranscodingQuality = models.QualityHigh
	e := newTestEngine(client, prefs, models.NetworkWifi, models.NetworkGood)

	result, err := e.ForceTranscode(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)

	tr, ok := result.(models.TranscodeResult)
	require.True(t, ok, "expected TranscodeResult, got %T", result)
	assert.Equal(t, models.MethodTranscode, tr.Method())
	assert.Contains(t, tr.Reason, "forced")
}

func TestIdempotentResolution(t *testing.T) {
	client := &fakeClient{info: &models.PlaybackInfo{
		PlaySessionID: "ps1",
		MediaSources:  []models.MediaSourceCandidate{compatibleSource(true)},
	}}
	e := newTestEngine(client, models.DefaultPlaybackPreferences(), models.NetworkWifi, models.NetworkGood)

	first, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)
	second, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestErrorResults(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		client := &fakeClient{fetchErr: errors.New("connection refused")}
		e := newTestEngine(client, models.DefaultPlaybackPreferences(), models.NetworkWifi, models.NetworkGood)

		result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
		require.NoError(t, err)
		assert.Equal(t, models.ErrorResult{Message: "Failed to get playback info"}, result)
	})

	t.Run("zero media sources", func(t *testing.T) {
		client := &fakeClient{info: &models.PlaybackInfo{}}
		e := newTestEngine(client, models.DefaultPlaybackPreferences(), models.NetworkWifi, models.NetworkGood)

		result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
		require.NoError(t, err)
		assert.Equal(t, models.ErrorResult{Message: "No media sources available for playback"}, result)
	})

	t.Run("url construction failure", func(t *testing.T) {
		client := &fakeClient{
			info: &models.PlaybackInfo{
				MediaSources: []models.MediaSourceCandidate{compatibleSource(true)},
			},
			urlErr: mediaserver.ErrNoBaseURL,
		}
		e := newTestEngine(client, models.DefaultPlaybackPreferences(), models.NetworkWifi, models.NetworkGood)

		result, err := e.ResolveOptimalPlayback(context.Background(), Request{ItemID: "item1"})
		require.NoError(t, err)

		er, ok := result.(models.ErrorResult)
		require.True(t, ok)
		assert.Contains(t, er.Message, "Unable to generate playback URL")
	})
}

func TestCancellationPropagates(t *testing.T) {
	client := &fakeClient{info: &models.PlaybackInfo{
		MediaSources: []models.MediaSourceCandidate{compatibleSource(true)},
	}}
	e := newTestEngine(client, models.DefaultPlaybackPreferences(), models.NetworkWifi, models.NetworkGood)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.ResolveOptimalPlayback(ctx, Request{ItemID: "item1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

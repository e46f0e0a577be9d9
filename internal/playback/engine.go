package playback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jmylchreest/playarr/internal/codec"
	"github.com/jmylchreest/playarr/internal/device"
	"github.com/jmylchreest/playarr/internal/mediaserver"
	"github.com/jmylchreest/playarr/internal/models"
	"github.com/jmylchreest/playarr/internal/netcond"
	"github.com/jmylchreest/playarr/internal/preferences"
	"github.com/jmylchreest/playarr/internal/repository"
)

// User-facing error messages carried in ErrorResult.
const (
	msgPlaybackInfoFailed = "Failed to get playback info"
	msgNoMediaSources     = "No media sources available for playback"
	msgURLDirectPlay      = "Unable to generate playback URL for direct play"
	msgURLDirectStream    = "Unable to generate playback URL for direct stream"
	msgURLTranscode       = "Unable to generate playback URL for transcoding"
)

// Request identifies one playback attempt.
type Request struct {
	ItemID    string
	Selection mediaserver.StreamSelection
}

// Engine is the playback method decision engine. It is stateless per call:
// concurrent calls are safe and produce independent results.
type Engine struct {
	resolver *Resolver
	client   mediaserver.Client
	oracle   device.Oracle
	network  netcond.Sampler
	prefs    preferences.Reader
	sessions repository.SessionRepository
	logger   *slog.Logger

	ethernetCeiling int64
	unknownCeiling  int64
}

// Options configure an Engine.
type Options struct {
	Client  mediaserver.Client
	Oracle  device.Oracle
	Network netcond.Sampler
	Prefs   preferences.Reader
	// Sessions, when non-nil, records every decision for history. Recording
	// failures are logged and never affect the returned result.
	Sessions repository.SessionRepository
	Logger   *slog.Logger

	// EthernetCeiling and UnknownNetworkCeiling are the direct play/stream
	// bitrate ceilings (bps) for wired and unclassified networks. Zero means
	// the model defaults. Wifi and cellular ceilings are user preferences and
	// come from Prefs.
	EthernetCeiling       int64
	UnknownNetworkCeiling int64
}

// NewEngine creates a decision engine.
func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.EthernetCeiling <= 0 {
		opts.EthernetCeiling = models.EthernetBitrateCeiling
	}
	if opts.UnknownNetworkCeiling <= 0 {
		opts.UnknownNetworkCeiling = models.UnknownNetworkBitrateCeiling
	}
	return &Engine{
		resolver:        NewResolver(opts.Client, opts.Oracle, opts.Logger),
		client:          opts.Client,
		oracle:          opts.Oracle,
		network:         opts.Network,
		prefs:           opts.Prefs,
		sessions:        opts.Sessions,
		logger:          opts.Logger,
		ethernetCeiling: opts.EthernetCeiling,
		unknownCeiling:  opts.UnknownNetworkCeiling,
	}
}

// ResolveOptimalPlayback runs the full decision algorithm for an item.
//
// The returned error is non-nil only for context cancellation, which always
// propagates unchanged. Every other failure is reported as an ErrorResult.
func (e *Engine) ResolveOptimalPlayback(ctx context.Context, req Request) (models.PlaybackResult, error) {
	return e.decide(ctx, req, false)
}

// ForceTranscode bypasses the direct play and direct stream checks entirely
// and goes straight to transcoding parameter selection. Used after a runtime
// direct play failure reported by the player.
func (e *Engine) ForceTranscode(ctx context.Context, req Request) (models.PlaybackResult, error) {
	return e.decide(ctx, req, true)
}

func (e *Engine) decide(ctx context.Context, req Request, forced bool) (models.PlaybackResult, error) {
	// Step 1: resolve playback info.
	info, err := e.resolver.Resolve(ctx, req.ItemID, req.Selection)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return e.record(ctx, req, forced, models.ErrorResult{Message: msgPlaybackInfoFailed}), nil
	}
	if len(info.MediaSources) == 0 {
		return e.record(ctx, req, forced, models.ErrorResult{Message: msgNoMediaSources}), nil
	}

	prefs := e.prefs.Current()
	netType := e.network.NetworkType()

	if forced {
		result := e.transcode(req, &info.MediaSources[0], info.PlaySessionID, prefs,
			"transcode forced by caller")
		return e.record(ctx, req, forced, result), nil
	}

	// Step 2: compatibility override. Some server-side heuristics reject
	// codecs the device actually plays (10-bit encodings among them); when no
	// candidate claims direct play but the oracle confirms full compatibility
	// for the first candidate, direct play wins anyway.
	if !anyDirectPlay(info.MediaSources) {
		first := &info.MediaSources[0]
		if e.canDirectPlay(first, &prefs, netType) {
			result := e.directPlay(req, first, info.PlaySessionID,
				"server rejected direct play but device supports the media; overriding")
			return e.record(ctx, req, forced, result), nil
		}
	}

	// Step 3: server-confirmed direct play.
	for i := range info.MediaSources {
		candidate := &info.MediaSources[i]
		if candidate.SupportsDirectPlay && e.canDirectPlay(candidate, &prefs, netType) {
			result := e.directPlay(req, candidate, info.PlaySessionID,
				"server confirmed direct play and device is compatible")
			return e.record(ctx, req, forced, result), nil
		}
	}

	// Step 4: server-recommended transcoding.
	if candidate := transcodeRecommended(info.MediaSources); candidate != nil {
		result := e.transcode(req, candidate, info.PlaySessionID, prefs,
			"server recommends transcoding")
		return e.record(ctx, req, forced, result), nil
	}

	// Step 5: fallback candidate selection.
	candidate := fallbackCandidate(info.MediaSources)

	if e.canDirectPlay(candidate, &prefs, netType) {
		result := e.directPlay(req, candidate, info.PlaySessionID,
			"fallback candidate passed direct play checks")
		return e.record(ctx, req, forced, result), nil
	}

	if e.canDirectStream(candidate, &prefs, netType) {
		result := e.directStream(req, candidate, info.PlaySessionID, &prefs)
		return e.record(ctx, req, forced, result), nil
	}

	result := e.transcode(req, candidate, info.PlaySessionID, prefs,
		"media not directly playable; transcoding")
	return e.record(ctx, req, forced, result), nil
}

// anyDirectPlay reports whether any candidate claims direct play support.
func anyDirectPlay(sources []models.MediaSourceCandidate) bool {
	for i := range sources {
		if sources[i].SupportsDirectPlay {
			return true
		}
	}
	return false
}

// transcodeRecommended picks a candidate the server wants transcoded:
// supportsTranscoding without direct play support is preferred, then any
// candidate supporting transcoding.
func transcodeRecommended(sources []models.MediaSourceCandidate) *models.MediaSourceCandidate {
	for i := range sources {
		if sources[i].SupportsTranscoding && !sources[i].SupportsDirectPlay {
			return &sources[i]
		}
	}
	for i := range sources {
		if sources[i].SupportsTranscoding {
			return &sources[i]
		}
	}
	return nil
}

// fallbackCandidate picks the first candidate with direct play support, else
// direct stream support, else the first candidate at all.
func fallbackCandidate(sources []models.MediaSourceCandidate) *models.MediaSourceCandidate {
	for i := range sources {
		if sources[i].SupportsDirectPlay {
			return &sources[i]
		}
	}
	for i := range sources {
		if sources[i].SupportsDirectStream {
			return &sources[i]
		}
	}
	return &sources[0]
}

// canDirectPlay is the full direct play compatibility predicate: container,
// video codec at its resolution, audio codec at its channel count, and source
// bitrate within the network ceiling.
func (e *Engine) canDirectPlay(c *models.MediaSourceCandidate, prefs *models.PlaybackPreferences, netType models.NetworkType) bool {
	if !e.oracle.CanPlayContainer(c.Container) {
		return false
	}
	if video := c.VideoStream(); video != nil {
		if !e.oracle.CanPlayVideoCodec(video.Codec, video.Width, video.Height) {
			return false
		}
	}
	if audio := c.AudioStream(); audio != nil {
		if !e.oracle.CanPlayAudioCodec(audio.Codec, audio.Channels) {
			return false
		}
	}
	return e.bitrateAllowed(c.Bitrate, prefs, netType)
}

// canDirectStream checks direct stream eligibility: container and video must
// be playable, bitrate must fit the network ceiling. The audio codec is
// deliberately not checked; re-encoding audio is the point of direct stream.
func (e *Engine) canDirectStream(c *models.MediaSourceCandidate, prefs *models.PlaybackPreferences, netType models.NetworkType) bool {
	if !e.oracle.CanPlayContainer(c.Container) {
		return false
	}
	if video := c.VideoStream(); video != nil {
		if !e.oracle.CanPlayVideoCodec(video.Codec, video.Width, video.Height) {
			return false
		}
	}
	return e.bitrateAllowed(c.Bitrate, prefs, netType)
}

// bitrateAllowed gates direct play/stream on the per-network bitrate ceiling.
// An unknown (zero) source bitrate passes; transcoding never goes through
// this check, its parameters respect network limits by construction.
func (e *Engine) bitrateAllowed(bitrate int64, prefs *models.PlaybackPreferences, netType models.NetworkType) bool {
	if bitrate <= 0 {
		return true
	}
	return bitrate <= e.bitrateCeiling(prefs, netType)
}

// bitrateCeiling returns the effective ceiling for a network type: wifi and
// cellular from the user preferences, ethernet and unclassified networks from
// the configured policy values.
func (e *Engine) bitrateCeiling(prefs *models.PlaybackPreferences, netType models.NetworkType) int64 {
	switch netType {
	case models.NetworkWifi:
		return prefs.MaxBitrateWifi
	case models.NetworkCellular:
		return prefs.MaxBitrateCellular
	case models.NetworkEthernet:
		return e.ethernetCeiling
	default:
		return e.unknownCeiling
	}
}

// directPlay builds the DirectPlay result for a candidate.
func (e *Engine) directPlay(req Request, c *models.MediaSourceCandidate, playSessionID, reason string) models.PlaybackResult {
	url, err := e.client.DirectStreamURL(req.ItemID, c.Container, c.ID, playSessionID)
	if err != nil {
		e.logger.Error("direct play URL construction failed",
			slog.String("item_id", req.ItemID),
			slog.String("error", err.Error()),
		)
		return models.ErrorResult{Message: msgURLDirectPlay}
	}

	result := models.DirectPlayResult{
		URL:       url,
		Container: c.Container,
		Bitrate:   c.Bitrate,
		Reason:    reason,
		SessionID: playSessionID,
	}
	if video := c.VideoStream(); video != nil {
		result.VideoCodec = video.Codec
	}
	if audio := c.AudioStream(); audio != nil {
		result.AudioCodec = audio.Codec
	}

	e.logger.Info("direct play chosen",
		slog.String("item_id", req.ItemID),
		slog.String("container", c.Container),
		slog.Int64("bitrate", c.Bitrate),
		slog.String("reason", reason),
	)
	return result
}

// directStream builds the direct-stream result: video copied, audio
// re-encoded to AAC, remuxed into a transport stream container.
func (e *Engine) directStream(req Request, c *models.MediaSourceCandidate, playSessionID string, prefs *models.PlaybackPreferences) models.PlaybackResult {
	params := mediaserver.TranscodeParams{
		MediaSourceID:    c.ID,
		PlaySessionID:    playSessionID,
		VideoCodec:       codec.VideoCopy,
		AudioCodec:       codec.AudioAAC.String(),
		Container:        codec.ContainerMPEGTS.String(),
		MaxAudioChannels: prefs.MaxAudioChannels,
		Selection:        req.Selection,
	}

	url, err := e.client.TranscodeURL(req.ItemID, params)
	if err != nil {
		e.logger.Error("direct stream URL construction failed",
			slog.String("item_id", req.ItemID),
			slog.String("error", err.Error()),
		)
		return models.ErrorResult{Message: msgURLDirectStream}
	}

	e.logger.Info("direct stream chosen",
		slog.String("item_id", req.ItemID),
		slog.Int64("bitrate", c.Bitrate),
	)
	return models.TranscodeResult{
		URL:              url,
		TargetBitrate:    c.Bitrate,
		TargetVideoCodec: codec.VideoCopy,
		TargetAudioCodec: codec.AudioAAC.String(),
		TargetContainer:  codec.ContainerMPEGTS.String(),
		Reason:           "audio codec not supported; copying video and transcoding audio",
		SessionID:        playSessionID,
	}
}

// transcode runs transcoding parameter selection and builds the result.
func (e *Engine) transcode(req Request, c *models.MediaSourceCandidate, playSessionID string, prefs models.PlaybackPreferences, reason string) models.PlaybackResult {
	quality := prefs.TranscodingQuality
	if quality.IsAuto() {
		quality = models.QualityForNetwork(e.network.Quality())
	}
	tier, ok := quality.Params()
	if !ok {
		// Unreachable with a validated preference; clamp defensively.
		quality = models.QualityLow
		tier, _ = quality.Params()
	}

	caps := e.oracle.Capabilities()
	maxWidth, maxHeight := tier.MaxWidth, tier.MaxHeight
	if quality == models.QualityMaximum && !caps.Supports4K {
		maxWidth, maxHeight = 1920, 1080
	}

	// Never upscale: the effective dimensions are the minimum of the tier
	// ceiling and the source's actual resolution.
	width, height := maxWidth, maxHeight
	video := c.VideoStream()
	if video != nil {
		if video.Width > 0 && video.Width < width {
			width = video.Width
		}
		if video.Height > 0 && video.Height < height {
			height = video.Height
		}
	}

	videoCodec := e.selectVideoCodec(quality, tier, video, caps, width, height)

	params := mediaserver.TranscodeParams{
		MediaSourceID:    c.ID,
		PlaySessionID:    playSessionID,
		MaxBitrate:       tier.MaxBitrate,
		MaxWidth:         width,
		MaxHeight:        height,
		VideoCodec:       videoCodec,
		AudioCodec:       tier.AudioCodec.String(),
		Container:        tier.Container.String(),
		MaxAudioChannels: prefs.MaxAudioChannels,
		Selection:        req.Selection,
	}

	url, err := e.client.TranscodeURL(req.ItemID, params)
	if err != nil {
		e.logger.Error("transcode URL construction failed",
			slog.String("item_id", req.ItemID),
			slog.String("error", err.Error()),
		)
		return models.ErrorResult{Message: msgURLTranscode}
	}

	e.logger.Info("transcode chosen",
		slog.String("item_id", req.ItemID),
		slog.String("quality", quality.String()),
		slog.Int64("max_bitrate", tier.MaxBitrate),
		slog.String("video_codec", videoCodec),
		slog.String("reason", reason),
	)
	return models.TranscodeResult{
		URL:              url,
		TargetBitrate:    tier.MaxBitrate,
		TargetWidth:      width,
		TargetHeight:     height,
		TargetVideoCodec: videoCodec,
		TargetAudioCodec: tier.AudioCodec.String(),
		TargetContainer:  tier.Container.String(),
		Quality:          quality,
		Reason:           reason,
		SessionID:        playSessionID,
	}
}

// selectVideoCodec picks the transcode target video codec: the source codec
// if the device plays it at the effective resolution, else the device's best
// supported codec for the upper tiers, else the tier baseline (h264).
func (e *Engine) selectVideoCodec(quality models.TranscodingQuality, tier models.TierParams, video *models.MediaStream, caps models.DeviceCapabilities, width, height int) string {
	if video != nil && e.oracle.CanPlayVideoCodec(video.Codec, width, height) {
		return codec.NormalizeVideo(video.Codec)
	}
	if quality == models.QualityMaximum || quality == models.QualityHigh {
		if best, ok := codec.BestSupportedVideoCodec(caps.VideoCodecs); ok {
			return best.String()
		}
	}
	return tier.VideoCodec.String()
}

// record persists the decision to session history when a repository is
// configured. History is best effort: failures are logged, never surfaced.
func (e *Engine) record(ctx context.Context, req Request, forced bool, result models.PlaybackResult) models.PlaybackResult {
	if e.sessions == nil {
		return result
	}

	session := &models.PlaybackSession{
		ItemID:         req.ItemID,
		Method:         result.Method(),
		Forced:         forced,
		NetworkType:    e.network.NetworkType(),
		NetworkQuality: e.network.Quality(),
	}

	switch r := result.(type) {
	case models.DirectPlayResult:
		session.Container = r.Container
		session.VideoCodec = r.VideoCodec
		session.AudioCodec = r.AudioCodec
		session.Bitrate = r.Bitrate
		session.Reason = r.Reason
		session.PlaySessionID = r.SessionID
	case models.TranscodeResult:
		session.Container = r.TargetContainer
		session.VideoCodec = r.TargetVideoCodec
		session.AudioCodec = r.TargetAudioCodec
		session.Bitrate = r.TargetBitrate
		session.Width = r.TargetWidth
		session.Height = r.TargetHeight
		session.Quality = r.Quality
		session.Reason = r.Reason
		session.PlaySessionID = r.SessionID
	case models.ErrorResult:
		session.Reason = r.Message
	}

	if err := e.sessions.Create(ctx, session); err != nil {
		e.logger.Warn("recording playback session failed",
			slog.String("item_id", req.ItemID),
			slog.String("error", err.Error()),
		)
	}
	return result
}

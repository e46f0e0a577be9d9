// Package playback implements the playback method decision engine: given an
// item, it resolves candidate media sources from the media server and decides
// between direct play, direct stream with audio-only transcode, and a full
// transcode, producing a ready-to-use stream URL.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/playarr/internal/device"
	"github.com/jmylchreest/playarr/internal/mediaserver"
	"github.com/jmylchreest/playarr/internal/models"
)

// Resolver fetches playback info for an item from the media server,
// advertising the device's capabilities. It performs a single attempt;
// transport-level retry policy lives below the media server client.
type Resolver struct {
	client mediaserver.Client
	oracle device.Oracle
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(client mediaserver.Client, oracle device.Oracle, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, oracle: oracle, logger: logger}
}

// Resolve fetches playback info. Context cancellation propagates unchanged;
// every other failure is wrapped with models.ErrPlaybackInfoFetch so callers
// can classify it without string matching.
func (r *Resolver) Resolve(ctx context.Context, itemID string, sel mediaserver.StreamSelection) (*models.PlaybackInfo, error) {
	info, err := r.client.FetchPlaybackInfo(ctx, itemID, sel, r.oracle.Capabilities())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		r.logger.Warn("playback info fetch failed",
			slog.String("item_id", itemID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", models.ErrPlaybackInfoFetch, err)
	}

	r.logger.Debug("resolved playback info",
		slog.String("item_id", itemID),
		slog.Int("sources", len(info.MediaSources)),
	)
	return info, nil
}

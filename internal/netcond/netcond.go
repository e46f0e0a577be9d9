// Package netcond tracks the current network connection type and observed
// quality tier. The playback engine and adaptive bitrate monitor read from a
// Sampler; the client UI (or platform hooks) feed it through Set calls.
package netcond

import (
	"sync"

	"github.com/jmylchreest/playarr/internal/models"
)

// Sampler reports the current network conditions.
type Sampler interface {
	// NetworkType returns the active connection type.
	NetworkType() models.NetworkType
	// Quality returns the observed quality tier for the active connection.
	Quality() models.NetworkQuality
}

// Tracker is a settable Sampler. The zero value is not usable; use New.
type Tracker struct {
	mu      sync.RWMutex
	netType models.NetworkType
	quality models.NetworkQuality
}

// New creates a Tracker with conservative initial conditions: an unknown
// connection at fair quality.
func New() *Tracker {
	return &Tracker{
		netType: models.NetworkOther,
		quality: models.NetworkFair,
	}
}

// NetworkType implements Sampler.
func (t *Tracker) NetworkType() models.NetworkType {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.netType
}

// Quality implements Sampler.
func (t *Tracker) Quality() models.NetworkQuality {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.quality
}

// Set updates both the connection type and quality tier atomically.
func (t *Tracker) Set(netType models.NetworkType, quality models.NetworkQuality) {
	t.mu.Lock()
	t.netType = netType
	t.quality = quality
	t.mu.Unlock()
}

// SetNetworkType updates only the connection type.
func (t *Tracker) SetNetworkType(netType models.NetworkType) {
	t.mu.Lock()
	t.netType = netType
	t.mu.Unlock()
}

// SetQuality updates only the quality tier.
func (t *Tracker) SetQuality(quality models.NetworkQuality) {
	t.mu.Lock()
	t.quality = quality
	t.mu.Unlock()
}

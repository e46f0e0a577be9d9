package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/playarr/internal/models"
	"github.com/jmylchreest/playarr/internal/netcond"
)

// NetworkHandler exposes the network condition tracker. The player reports
// connection changes here; subsequent playback decisions pick them up.
type NetworkHandler struct {
	tracker *netcond.Tracker
}

// NewNetworkHandler creates a new network handler.
func NewNetworkHandler(tracker *netcond.Tracker) *NetworkHandler {
	return &NetworkHandler{tracker: tracker}
}

// NetworkBody is the wire shape for network conditions.
type NetworkBody struct {
	Type    string `json:"type" enum:"wifi,cellular,ethernet,other" doc:"Active connection type"`
	Quality string `json:"quality" enum:"excellent,good,fair,poor" doc:"Current connection quality tier"`
}

// GetNetworkInput is the input for the network read endpoint.
type GetNetworkInput struct{}

// NetworkOutput is the output for both network endpoints.
type NetworkOutput struct {
	Body NetworkBody
}

// UpdateNetworkInput is the input for the network update endpoint.
type UpdateNetworkInput struct {
	Body NetworkBody
}

// Register registers the network routes with the API.
func (h *NetworkHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getNetwork",
		Method:      "GET",
		Path:        "/api/v1/network",
		Summary:     "Get current network conditions",
		Tags:        []string{"Network"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "updateNetwork",
		Method:      "PUT",
		Path:        "/api/v1/network",
		Summary:     "Report network conditions",
		Description: "Updates the connection type and quality used by subsequent playback decisions",
		Tags:        []string{"Network"},
	}, h.Update)
}

// Get returns the tracked network conditions.
func (h *NetworkHandler) Get(ctx context.Context, input *GetNetworkInput) (*NetworkOutput, error) {
	return &NetworkOutput{Body: NetworkBody{
		Type:    string(h.tracker.NetworkType()),
		Quality: string(h.tracker.Quality()),
	}}, nil
}

// Update sets the tracked network conditions.
func (h *NetworkHandler) Update(ctx context.Context, input *UpdateNetworkInput) (*NetworkOutput, error) {
	netType, ok := models.ParseNetworkType(input.Body.Type)
	if !ok {
		return nil, huma.Error400BadRequest("invalid network type: " + input.Body.Type)
	}
	quality, ok := models.ParseNetworkQuality(input.Body.Quality)
	if !ok {
		return nil, huma.Error400BadRequest("invalid network quality: " + input.Body.Quality)
	}

	h.tracker.Set(netType, quality)

	return &NetworkOutput{Body: NetworkBody{
		Type:    string(h.tracker.NetworkType()),
		Quality: string(h.tracker.Quality()),
	}}, nil
}

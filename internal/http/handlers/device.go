package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/playarr/internal/device"
)

// DeviceHandler exposes the device capability profile used by playback
// decisions.
type DeviceHandler struct {
	oracle *device.StaticOracle
}

// NewDeviceHandler creates a new device handler.
func NewDeviceHandler(oracle *device.StaticOracle) *DeviceHandler {
	return &DeviceHandler{oracle: oracle}
}

// DeviceProfileBody is the wire shape for the device capability profile.
type DeviceProfileBody struct {
	Containers  []string `json:"containers" doc:"Playable container formats"`
	VideoCodecs []string `json:"video_codecs" doc:"Decodable video codecs"`
	AudioCodecs []string `json:"audio_codecs" doc:"Decodable audio codecs"`
	MaxWidth    int      `json:"max_width" doc:"Maximum decodable width, 0 for unlimited"`
	MaxHeight   int      `json:"max_height" doc:"Maximum decodable height, 0 for unlimited"`
	MaxChannels int      `json:"max_channels" doc:"Maximum audio channels, 0 for unlimited"`
	Supports4K  bool     `json:"supports_4k" doc:"Whether 4K playback is allowed"`
}

// GetDeviceProfileInput is the input for the profile read endpoint.
type GetDeviceProfileInput struct{}

// DeviceProfileOutput is the output for both profile endpoints.
type DeviceProfileOutput struct {
	Body DeviceProfileBody
}

// UpdateDeviceProfileInput is the input for the profile update endpoint.
type UpdateDeviceProfileInput struct {
	Body DeviceProfileBody
}

// Register registers the device routes with the API.
func (h *DeviceHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getDeviceProfile",
		Method:      "GET",
		Path:        "/api/v1/device/profile",
		Summary:     "Get the device capability profile",
		Tags:        []string{"Device"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "updateDeviceProfile",
		Method:      "PUT",
		Path:        "/api/v1/device/profile",
		Summary:     "Replace the device capability profile",
		Description: "Codec and container names are normalized; unknown names are dropped",
		Tags:        []string{"Device"},
	}, h.Update)
}

// Get returns the active capability profile.
func (h *DeviceHandler) Get(ctx context.Context, input *GetDeviceProfileInput) (*DeviceProfileOutput, error) {
	return &DeviceProfileOutput{Body: toProfileBody(h.oracle.Profile())}, nil
}

// Update replaces the active capability profile.
func (h *DeviceHandler) Update(ctx context.Context, input *UpdateDeviceProfileInput) (*DeviceProfileOutput, error) {
	h.oracle.SetProfile(device.Profile{
		Containers:  input.Body.Containers,
		VideoCodecs: input.Body.VideoCodecs,
		AudioCodecs: input.Body.AudioCodecs,
		MaxWidth:    input.Body.MaxWidth,
		MaxHeight:   input.Body.MaxHeight,
		MaxChannels: input.Body.MaxChannels,
		Supports4K:  input.Body.Supports4K,
	})

	return &DeviceProfileOutput{Body: toProfileBody(h.oracle.Profile())}, nil
}

func toProfileBody(p device.Profile) DeviceProfileBody {
	return DeviceProfileBody{
		Containers:  p.Containers,
		VideoCodecs: p.VideoCodecs,
		AudioCodecs: p.AudioCodecs,
		MaxWidth:    p.MaxWidth,
		MaxHeight:   p.MaxHeight,
		MaxChannels: p.MaxChannels,
		Supports4K:  p.Supports4K,
	}
}

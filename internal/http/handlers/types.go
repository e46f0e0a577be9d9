// Package handlers provides HTTP API handlers for playarr.
package handlers

// HealthResponse is the full health check payload.
type HealthResponse struct {
	Status        string            `json:"status" doc:"Overall service status"`
	Timestamp     string            `json:"timestamp" doc:"Current server time (RFC3339)"`
	Version       string            `json:"version" doc:"Build version"`
	Uptime        string            `json:"uptime" doc:"Human readable uptime"`
	UptimeSeconds float64           `json:"uptime_seconds" doc:"Uptime in seconds"`
	CPUInfo       CPUInfo           `json:"cpu" doc:"CPU load information"`
	Memory        MemoryInfo        `json:"memory" doc:"Memory usage information"`
	Database      DatabaseHealth    `json:"database" doc:"Database health"`
	Monitor       MonitorHealth     `json:"monitor" doc:"Adaptive bitrate monitor status"`
	Checks        map[string]string `json:"checks" doc:"Per-component status"`
}

// CPUInfo holds CPU load information.
type CPUInfo struct {
	Cores              int     `json:"cores"`
	Load1Min           float64 `json:"load_1min"`
	Load5Min           float64 `json:"load_5min"`
	Load15Min          float64 `json:"load_15min"`
	LoadPercentage1Min float64 `json:"load_percentage_1min"`
}

// MemoryInfo holds system and process memory usage.
type MemoryInfo struct {
	TotalMemoryMB     float64 `json:"total_memory_mb"`
	UsedMemoryMB      float64 `json:"used_memory_mb"`
	AvailableMemoryMB float64 `json:"available_memory_mb"`
	ProcessMemoryMB   float64 `json:"process_memory_mb"`
}

// DatabaseHealth holds database health information.
type DatabaseHealth struct {
	Status             string  `json:"status"`
	ResponseTimeMS     float64 `json:"response_time_ms"`
	ConnectionPoolSize int     `json:"connection_pool_size"`
	ActiveConnections  int     `json:"active_connections"`
	IdleConnections    int     `json:"idle_connections"`
}

// MonitorHealth reports the adaptive bitrate monitor's state.
type MonitorHealth struct {
	Running           bool `json:"running"`
	HasRecommendation bool `json:"has_recommendation"`
}

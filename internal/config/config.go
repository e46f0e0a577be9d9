// Package config provides configuration management for playarr using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8096
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute

	defaultMediaServerTimeout = 30 * time.Second

	defaultMonitorInterval  = time.Second
	defaultBufferThreshold  = 5 * time.Second
	defaultDowngradeCool    = 60 * time.Second
	defaultBufferEventLimit = 3

	defaultSessionRetentionDays = 30
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	MediaServer MediaServerConfig `mapstructure:"media_server"`
	Playback    PlaybackConfig    `mapstructure:"playback"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
	Retention   RetentionConfig   `mapstructure:"retention"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// MediaServerConfig holds the upstream media server connection settings.
type MediaServerConfig struct {
	// BaseURL is the media server root, e.g. "http://nas:8096".
	BaseURL string `mapstructure:"base_url"`
	// Token is the API token used for playback-info requests. Redacted in logs.
	Token string `mapstructure:"token"`
	// DeviceID identifies this client to the server (empty = generated).
	DeviceID string        `mapstructure:"device_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PlaybackConfig holds decision engine tunables: the operator-set direct
// play/stream ceilings for networks the user has no preference knob for.
// The wifi/cellular caps are user preferences and live in the preference
// store, not here.
type PlaybackConfig struct {
	// EthernetCeiling is the direct play/stream bitrate ceiling on wired
	// connections. Supports human-readable values like "140Mbps".
	EthernetCeiling BitRate `mapstructure:"ethernet_ceiling"`
	// UnknownNetworkCeiling is the conservative ceiling for unclassified
	// network types.
	UnknownNetworkCeiling BitRate `mapstructure:"unknown_network_ceiling"`
}

// MonitorConfig holds adaptive bitrate monitor tunables.
type MonitorConfig struct {
	// SampleInterval is how often the player state is sampled.
	SampleInterval time.Duration `mapstructure:"sample_interval"`
	// SustainedBufferThreshold is how long a single buffering episode may
	// last before a High-severity downgrade is recommended.
	SustainedBufferThreshold time.Duration `mapstructure:"sustained_buffer_threshold"`
	// DowngradeCooldown is the minimum time between emitted downgrades.
	DowngradeCooldown time.Duration `mapstructure:"downgrade_cooldown"`
	// BufferEventLimit is the consecutive-event count that triggers a
	// Medium-severity recommendation.
	BufferEventLimit int `mapstructure:"buffer_event_limit"`
}

// RetentionConfig holds playback session history retention settings.
type RetentionConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Cron is a 6-field cron expression for the prune job.
	Cron string `mapstructure:"cron"`
	// MaxAge is how long session records are kept.
	MaxAge time.Duration `mapstructure:"max_age"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration and are
// prefixed with PLAYARR_, using underscores for nesting.
// Example: PLAYARR_SERVER_PORT=8096.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/playarr")
		v.AddConfigPath("$HOME/.playarr")
	}

	v.SetEnvPrefix("PLAYARR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not found is OK - defaults and env vars apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(bitRateDecodeHook())); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "playarr.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Media server defaults
	v.SetDefault("media_server.base_url", "")
	v.SetDefault("media_server.token", "")
	v.SetDefault("media_server.device_id", "")
	v.SetDefault("media_server.timeout", defaultMediaServerTimeout)

	// Playback defaults
	v.SetDefault("playback.ethernet_ceiling", "140Mbps")
	v.SetDefault("playback.unknown_network_ceiling", "3Mbps")

	// Monitor defaults
	v.SetDefault("monitor.sample_interval", defaultMonitorInterval)
	v.SetDefault("monitor.sustained_buffer_threshold", defaultBufferThreshold)
	v.SetDefault("monitor.downgrade_cooldown", defaultDowngradeCool)
	v.SetDefault("monitor.buffer_event_limit", defaultBufferEventLimit)

	// Retention defaults
	v.SetDefault("retention.enabled", true)
	v.SetDefault("retention.cron", "0 0 3 * * *") // Daily at 3 AM (6-field cron)
	v.SetDefault("retention.max_age", defaultSessionRetentionDays*24*time.Hour)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Playback.EthernetCeiling <= 0 {
		return fmt.Errorf("playback.ethernet_ceiling must be positive")
	}
	if c.Playback.UnknownNetworkCeiling <= 0 {
		return fmt.Errorf("playback.unknown_network_ceiling must be positive")
	}

	if c.Monitor.SampleInterval <= 0 {
		return fmt.Errorf("monitor.sample_interval must be positive")
	}
	if c.Monitor.SustainedBufferThreshold <= 0 {
		return fmt.Errorf("monitor.sustained_buffer_threshold must be positive")
	}
	if c.Monitor.DowngradeCooldown < 0 {
		return fmt.Errorf("monitor.downgrade_cooldown must not be negative")
	}
	if c.Monitor.BufferEventLimit < 1 {
		return fmt.Errorf("monitor.buffer_event_limit must be at least 1")
	}

	if c.Retention.Enabled && c.Retention.MaxAge <= 0 {
		return fmt.Errorf("retention.max_age must be positive when retention is enabled")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

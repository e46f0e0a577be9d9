package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/playarr/internal/abr"
	"github.com/jmylchreest/playarr/internal/config"
	"github.com/jmylchreest/playarr/internal/database"
	"github.com/jmylchreest/playarr/internal/device"
	internalhttp "github.com/jmylchreest/playarr/internal/http"
	"github.com/jmylchreest/playarr/internal/http/handlers"
	"github.com/jmylchreest/playarr/internal/httpclient"
	"github.com/jmylchreest/playarr/internal/mediaserver"
	"github.com/jmylchreest/playarr/internal/netcond"
	"github.com/jmylchreest/playarr/internal/observability"
	"github.com/jmylchreest/playarr/internal/playback"
	"github.com/jmylchreest/playarr/internal/preferences"
	"github.com/jmylchreest/playarr/internal/repository"
	"github.com/jmylchreest/playarr/internal/scheduler"
	"github.com/jmylchreest/playarr/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the playarr server",
	Long: `Start the playarr HTTP server and API.

The server provides:
- Playback decision endpoints (resolve, force transcode)
- Playback preference and session history management
- Network condition and device profile reporting
- Health check endpoints and OpenAPI documentation at /docs`,
}

func init() {
	// Assigned here rather than in the literal: runServe reads serveCmd's
	// flags, which would otherwise be an initialization cycle.
	serveCmd.RunE = runServe

	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("port", 8096, "Port to listen on")
	serveCmd.Flags().String("database", "playarr.db", "Database DSN (sqlite file path)")
	serveCmd.Flags().String("media-server-url", "", "Media server base URL")
	serveCmd.Flags().String("media-server-token", "", "Media server API token")

	mustBindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	mustBindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	mustBindPFlag("database.dsn", serveCmd.Flags().Lookup("database"))
	mustBindPFlag("media_server.base_url", serveCmd.Flags().Lookup("media-server-url"))
	mustBindPFlag("media_server.token", serveCmd.Flags().Lookup("media-server-token"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	db, err := database.New(cfg.Database, observability.WithComponent(logger, "database"))
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	prefsRepo := repository.NewPreferencesRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefsStore := preferences.NewStore(prefsRepo, logger)
	if err := prefsStore.Load(ctx); err != nil {
		return fmt.Errorf("loading playback preferences: %w", err)
	}

	oracle := device.NewStaticOracle(device.DefaultProfile())
	tracker := netcond.New()

	transportCfg := httpclient.DefaultConfig()
	transportCfg.Timeout = cfg.MediaServer.Timeout
	transportCfg.UserAgent = version.UserAgent()
	transportCfg.Logger = observability.WithComponent(logger, "mediaserver")

	client := mediaserver.NewHTTPClient(mediaserver.Options{
		BaseURL:   cfg.MediaServer.BaseURL,
		Token:     cfg.MediaServer.Token,
		DeviceID:  cfg.MediaServer.DeviceID,
		Transport: httpclient.New(transportCfg),
		Logger:    observability.WithComponent(logger, "mediaserver"),
	})

	engine := playback.NewEngine(playback.Options{
		Client:                client,
		Oracle:                oracle,
		Network:               tracker,
		Prefs:                 prefsStore,
		Sessions:              sessionRepo,
		Logger:                observability.WithComponent(logger, "playback"),
		EthernetCeiling:       cfg.Playback.EthernetCeiling.Bps(),
		UnknownNetworkCeiling: cfg.Playback.UnknownNetworkCeiling.Bps(),
	})

	monitor := abr.NewMonitor(abr.Config{
		SampleInterval:           cfg.Monitor.SampleInterval,
		SustainedBufferThreshold: cfg.Monitor.SustainedBufferThreshold,
		DowngradeCooldown:        cfg.Monitor.DowngradeCooldown,
		BufferEventLimit:         cfg.Monitor.BufferEventLimit,
	}, prefsStore, observability.WithComponent(logger, "abr"))
	defer monitor.Stop()

	// The player pushes its state here; the monitor samples it once started
	// via the monitor API at session begin.
	playerState := abr.NewReportedState()

	if cfg.Retention.Enabled {
		retention, err := scheduler.NewRetention(sessionRepo, scheduler.RetentionConfig{
			Cron:   cfg.Retention.Cron,
			MaxAge: cfg.Retention.MaxAge,
		})
		if err != nil {
			return fmt.Errorf("initializing session retention: %w", err)
		}
		retention.WithLogger(observability.WithComponent(logger, "retention"))
		if err := retention.Start(ctx); err != nil {
			return fmt.Errorf("starting session retention: %w", err)
		}
		defer retention.Stop()
	}

	serverConfig := internalhttp.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout
	serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout

	server := internalhttp.NewServer(serverConfig, logger, version.Version)

	handlers.NewHealthHandler(version.Version).
		WithDB(db.DB).
		WithMonitor(monitor).
		Register(server.API())
	handlers.NewPlaybackHandler(engine).Register(server.API())
	handlers.NewPreferencesHandler(prefsStore).Register(server.API())
	handlers.NewSessionsHandler(sessionRepo).Register(server.API())
	handlers.NewMonitorHandler(monitor, playerState).Register(server.API())
	handlers.NewNetworkHandler(tracker).Register(server.API())
	handlers.NewDeviceHandler(oracle).Register(server.API())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	logger.Info("starting playarr server",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.String("version", version.Version),
	)

	return server.ListenAndServe(ctx)
}

// loadServeConfig builds the effective configuration: the config file and
// environment via config.Load, then explicit CLI flag overrides from the
// global viper instance the flags are bound to.
func loadServeConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if serveCmd.Flags().Changed("host") {
		cfg.Server.Host = viper.GetString("server.host")
	}
	if serveCmd.Flags().Changed("port") {
		cfg.Server.Port = viper.GetInt("server.port")
	}
	if serveCmd.Flags().Changed("database") {
		cfg.Database.DSN = viper.GetString("database.dsn")
	}
	if serveCmd.Flags().Changed("media-server-url") {
		cfg.MediaServer.BaseURL = viper.GetString("media_server.base_url")
	}
	if serveCmd.Flags().Changed("media-server-token") {
		cfg.MediaServer.Token = viper.GetString("media_server.token")
	}

	return cfg, nil
}

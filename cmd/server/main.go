package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jamesrupertball/tempest-weather-airport/internal/api"
	"github.com/jamesrupertball/tempest-weather-airport/internal/config"
	"github.com/jamesrupertball/tempest-weather-airport/internal/metar"
	"github.com/jamesrupertball/tempest-weather-airport/internal/storage/sqlite"
	"github.com/jamesrupertball/tempest-weather-airport/internal/tempest"
	"github.com/jamesrupertball/tempest-weather-airport/internal/websocket"
	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search configs/ and the root directory)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting airfield weather dashboard server",
		logger.String("version", Version),
		logger.String("config_path", *configPath))

	// Durable store behind the observation cache
	if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error("Failed to create storage directory", logger.Error(err), logger.String("path", dir))
			os.Exit(1)
		}
	}
	store, err := sqlite.NewObservationStore(cfg.Storage.SQLitePath, log)
	if err != nil {
		log.Error("Failed to open observation store", logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()
	log.Info("Using SQLite observation store", logger.String("path", cfg.Storage.SQLitePath))

	// WebSocket hub is the presenter's push channel
	wsServer := websocket.NewServer(log)
	go wsServer.Run()

	// Local-time display for the observation timestamps
	location, err := time.LoadLocation(cfg.Station.Timezone)
	if err != nil {
		log.Warn("Falling back to UTC for local time display", logger.Error(err))
		location = time.UTC
	}

	metarConfig := metar.Config{
		StationIDs:      cfg.METAR.StationIDs,
		APIBaseURL:      cfg.METAR.APIBaseURL,
		RefreshInterval: cfg.METAR.RefreshInterval(),
		RequestTimeout:  cfg.METAR.RequestTimeout(),
		MaxRetries:      cfg.METAR.MaxRetries,
	}
	cache := metar.NewCache(store, metarConfig.RefreshInterval, log)
	client := metar.NewClient(metarConfig, log)
	presenter := api.NewWebSocketPresenter(wsServer, log)
	metarService := metar.NewService(metarConfig, client, cache, presenter, location, log)

	if err := metarService.Start(); err != nil {
		log.Error("Failed to start METAR service", logger.Error(err))
		os.Exit(1)
	}

	// On-field Tempest station (optional)
	var tempestClient *tempest.Client
	if cfg.Tempest.Enabled {
		tempestClient = tempest.NewClient(tempest.Config{
			BaseURL:  cfg.Tempest.BaseURL,
			DeviceID: cfg.Tempest.DeviceID,
			Token:    cfg.Tempest.Token,
			Lookback: time.Duration(cfg.Tempest.LookbackMinutes) * time.Minute,
		}, log)
		log.Info("On-field station enabled", logger.Int("device_id", cfg.Tempest.DeviceID))
	}

	router := api.NewRouter(metarService, tempestClient, wsServer, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	metarService.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	}

	log.Info("Server fully stopped")
}

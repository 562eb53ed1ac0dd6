package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server  ServerConfig  `toml:"server"`  // HTTP server settings
	Logging LoggingConfig `toml:"logging"` // Application logging settings
	Storage StorageConfig `toml:"storage"` // Data persistence settings
	Station StationConfig `toml:"station"` // Home airfield settings
	METAR   METARConfig   `toml:"metar"`   // METAR ingestion and refresh settings
	Tempest TempestConfig `toml:"tempest"` // On-field Tempest station settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port             int    `toml:"port"`                  // HTTP port for the dashboard server
	Host             string `toml:"host"`                  // Host address to bind to (127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"` // Maximum duration for writing the response
	IdleTimeoutSecs  int    `toml:"idle_timeout_seconds"`  // Keep-alive idle timeout
	StaticFilesDir   string `toml:"static_files_dir"`      // Directory to serve the dashboard pages from (e.g., "www")
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"` // Path to the SQLite database file backing the observation cache
}

// StationConfig contains the home airfield settings used by the wind and
// density-altitude panels
type StationConfig struct {
	Name             string  `toml:"name"`               // Display name of the airfield
	Latitude         float64 `toml:"latitude"`           // Latitude in decimal degrees
	Longitude        float64 `toml:"longitude"`          // Longitude in decimal degrees
	ElevationFeet    float64 `toml:"elevation_feet"`     // Field elevation above sea level in feet
	RunwayHeadingMag float64 `toml:"runway_heading_mag"` // Magnetic heading of the primary runway in degrees
	Timezone         string  `toml:"timezone"`           // IANA timezone for local time display (e.g., "America/Denver")
}

// METARConfig contains METAR ingestion, caching, and refresh scheduling settings
type METARConfig struct {
	StationIDs            []string `toml:"station_ids"`              // ICAO identifiers of the nearby reporting stations (two in this deployment)
	APIBaseURL            string   `toml:"api_base_url"`             // Base URL of the METAR data source
	RefreshIntervalMins   int      `toml:"refresh_interval_minutes"` // Cadence of scheduled fetches; also the cache expiry
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds"`  // HTTP timeout per fetch; must be below the refresh interval
	MaxRetries            int      `toml:"max_retries"`              // Retry attempts per fetch before it is treated as failed
}

// TempestConfig contains the on-field Tempest weather station settings
type TempestConfig struct {
	Enabled         bool   `toml:"enabled"`          // Enable the live wind / density-altitude panels
	BaseURL         string `toml:"base_url"`         // Tempest REST API base URL
	DeviceID        int    `toml:"device_id"`        // Tempest station device ID
	Token           string `toml:"token"`            // Tempest API bearer token
	LookbackMinutes int    `toml:"lookback_minutes"` // Observation window to request
}

// RefreshInterval returns the configured refresh cadence as a duration
func (c METARConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMins) * time.Minute
}

// RequestTimeout returns the configured per-fetch HTTP timeout as a duration
func (c METARConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Default returns a configuration populated with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             8080,
			Host:             "0.0.0.0",
			ReadTimeoutSecs:  15,
			WriteTimeoutSecs: 15,
			IdleTimeoutSecs:  60,
			StaticFilesDir:   "www",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			SQLitePath: "data/observations.db",
		},
		Station: StationConfig{
			Timezone: "UTC",
		},
		METAR: METARConfig{
			StationIDs:            []string{},
			APIBaseURL:            "https://aviationweather.gov/api/data",
			RefreshIntervalMins:   10,
			RequestTimeoutSeconds: 10,
			MaxRetries:            2,
		},
		Tempest: TempestConfig{
			Enabled:         false,
			BaseURL:         "https://swd.weatherflow.com/swd/rest",
			LookbackMinutes: 15,
		},
	}
}

// Load reads and parses the configuration file at the given path,
// overlaying it on the defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadWithFallback loads configuration from the given path, or searches the
// conventional locations (configs/config.toml, config.toml) when no path is
// provided. A missing file yields the defaults rather than an error.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	candidates := []string{
		filepath.Join("configs", "config.toml"),
		"config.toml",
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
	}

	return Default(), nil
}

// Validate checks the configuration for values that cannot work at runtime
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path cannot be empty")
	}

	if len(c.METAR.StationIDs) == 0 {
		return fmt.Errorf("metar.station_ids must list at least one station")
	}

	if c.METAR.APIBaseURL == "" {
		return fmt.Errorf("metar.api_base_url cannot be empty")
	}

	if c.METAR.RefreshIntervalMins <= 0 {
		return fmt.Errorf("metar.refresh_interval_minutes must be greater than 0")
	}

	if c.METAR.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("metar.request_timeout_seconds must be greater than 0")
	}

	// A hung request must not starve the next scheduled refresh
	if c.METAR.RequestTimeout() >= c.METAR.RefreshInterval() {
		return fmt.Errorf("metar.request_timeout_seconds must be below the refresh interval")
	}

	if c.METAR.MaxRetries < 0 {
		return fmt.Errorf("metar.max_retries must be 0 or greater")
	}

	if c.Station.Timezone != "" {
		if _, err := time.LoadLocation(c.Station.Timezone); err != nil {
			return fmt.Errorf("station.timezone is not a valid IANA zone: %w", err)
		}
	}

	if c.Tempest.Enabled {
		if c.Tempest.BaseURL == "" {
			return fmt.Errorf("tempest.base_url cannot be empty when tempest is enabled")
		}
		if c.Tempest.DeviceID == 0 {
			return fmt.Errorf("tempest.device_id must be set when tempest is enabled")
		}
	}

	return nil
}

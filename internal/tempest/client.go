package tempest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

// Config holds the Tempest REST API settings
type Config struct {
	BaseURL  string
	DeviceID int
	Token    string
	Lookback time.Duration
}

// Observation is one decoded report from the on-field station. The API
// returns observations as positional arrays; see observationFromRecord for
// the layout.
type Observation struct {
	Timestamp          time.Time `json:"timestamp"`
	WindLullMS         float64   `json:"wind_lull_ms"`
	WindAvgMS          float64   `json:"wind_avg_ms"`
	WindGustMS         float64   `json:"wind_gust_ms"`
	WindDirDeg         float64   `json:"wind_dir_deg"`
	StationPressureHPa float64   `json:"station_pressure_hpa"`
	AirTempC           float64   `json:"air_temp_c"`
	RelativeHumidity   float64   `json:"relative_humidity"`
}

// Client fetches observations from the Tempest REST API
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a Tempest API client
func NewClient(config Config, log *logger.Logger) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log.Named("tempest-client"),
	}
}

type observationsResponse struct {
	DeviceID int          `json:"device_id"`
	Obs      [][]*float64 `json:"obs"`
}

// LatestObservation fetches the most recent observation within the
// configured lookback window
func (c *Client) LatestObservation(ctx context.Context) (*Observation, error) {
	end := time.Now().Unix()
	start := end - int64(c.config.Lookback.Seconds())

	url := fmt.Sprintf("%s/observations/device/%d?time_start=%d&time_end=%d",
		c.config.BaseURL, c.config.DeviceID, start, end)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building tempest request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting tempest observations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding tempest payload: %w", err)
	}

	if len(payload.Obs) == 0 {
		return nil, fmt.Errorf("no observations in tempest response")
	}

	// Observations arrive oldest-first; the last record is the current one
	obs, err := observationFromRecord(payload.Obs[len(payload.Obs)-1])
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Tempest observation fetched",
		logger.Time("timestamp", obs.Timestamp),
		logger.Float64("wind_avg_ms", obs.WindAvgMS),
		logger.Float64("air_temp_c", obs.AirTempC))
	return obs, nil
}

// observationFromRecord decodes the positional Tempest record:
// [0] epoch, [1] wind lull, [2] wind avg, [3] wind gust, [4] wind direction,
// [5] sample interval, [6] station pressure, [7] air temperature,
// [8] relative humidity, ... (remaining fields unused here)
func observationFromRecord(record []*float64) (*Observation, error) {
	if len(record) < 9 {
		return nil, fmt.Errorf("tempest record too short: %d fields", len(record))
	}

	at := func(i int) float64 {
		if record[i] == nil {
			return 0
		}
		return *record[i]
	}

	if record[0] == nil {
		return nil, fmt.Errorf("tempest record missing timestamp")
	}

	return &Observation{
		Timestamp:          time.Unix(int64(*record[0]), 0).UTC(),
		WindLullMS:         at(1),
		WindAvgMS:          at(2),
		WindGustMS:         at(3),
		WindDirDeg:         at(4),
		StationPressureHPa: at(6),
		AirTempC:           at(7),
		RelativeHumidity:   at(8),
	}, nil
}

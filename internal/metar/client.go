package metar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

// Client fetches raw station reports from the METAR data source
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new METAR data source client
func NewClient(config Config, log *logger.Logger) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		logger: log.Named("metar-client"),
	}
}

// FetchStations fetches the latest report for every requested station in one
// call. The call either succeeds as a whole or fails as a whole; a station
// missing from an otherwise good response is handled per-station by the
// caller, not here.
func (c *Client) FetchStations(ctx context.Context, ids []string) ([]RawStationReport, error) {
	fetchURL := fmt.Sprintf("%s/metar?ids=%s&format=json",
		c.config.APIBaseURL, url.QueryEscape(strings.Join(ids, ",")))

	var reports []RawStationReport
	if err := c.fetchWithRetry(ctx, fetchURL, &reports); err != nil {
		return nil, err
	}

	if len(reports) == 0 {
		return nil, fmt.Errorf("no METAR data returned for %s", strings.Join(ids, ","))
	}

	return reports, nil
}

// fetchWithRetry performs the HTTP request with retry and exponential backoff
func (c *Client) fetchWithRetry(ctx context.Context, fetchURL string, target interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			c.logger.Info("Retrying METAR fetch",
				logger.Int("attempt", attempt),
				logger.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return fmt.Errorf("building METAR request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("requesting METAR data: %w", err)
			c.logger.Warn("METAR request failed, may retry",
				logger.Error(err),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			c.logger.Warn("METAR source returned non-OK status, may retry",
				logger.Int("status_code", resp.StatusCode),
				logger.Int("attempt", attempt+1))
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decoding METAR payload: %w", err)
			c.logger.Warn("Failed to decode METAR payload, may retry",
				logger.Error(err),
				logger.Int("attempt", attempt+1))
			continue
		}

		return nil
	}

	c.logger.Error("All attempts to fetch METAR data failed",
		logger.Error(lastErr),
		logger.Int("max_attempts", c.config.MaxRetries+1))
	return lastErr
}

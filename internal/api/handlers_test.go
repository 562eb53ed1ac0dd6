package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesrupertball/tempest-weather-airport/internal/config"
	"github.com/jamesrupertball/tempest-weather-airport/internal/metar"
	"github.com/jamesrupertball/tempest-weather-airport/internal/tempest"
	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

type stubStore struct {
	data []byte
}

func (s *stubStore) ReadPersisted() ([]byte, bool, error) {
	if s.data == nil {
		return nil, false, nil
	}
	return s.data, true, nil
}

func (s *stubStore) WritePersisted(data []byte) error {
	s.data = append([]byte(nil), data...)
	return nil
}

func (s *stubStore) ClearPersisted() error {
	s.data = nil
	return nil
}

type stubFetcher struct{}

func (stubFetcher) FetchStations(ctx context.Context, ids []string) ([]metar.RawStationReport, error) {
	reports := make([]metar.RawStationReport, 0, len(ids))
	for _, id := range ids {
		reports = append(reports, metar.RawStationReport{ICAOID: id})
	}
	return reports, nil
}

// signalPresenter closes done after the first station presentation
type signalPresenter struct {
	done chan struct{}
}

func (p *signalPresenter) PresentStations(views []metar.DecodedView, fetchedAt time.Time) {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

func (p *signalPresenter) PresentCountdown(remaining time.Duration) {}
func (p *signalPresenter) PresentFetchError(message string)         {}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.METAR.StationIDs = []string{"KJFK", "KLGA"}
	cfg.Station.Name = "Test Field"
	cfg.Station.Latitude = 40.64
	cfg.Station.Longitude = -73.78
	cfg.Station.RunwayHeadingMag = 40
	return cfg
}

func startedService(t *testing.T, cfg *config.Config) *metar.Service {
	t.Helper()

	metarCfg := metar.Config{
		StationIDs:      cfg.METAR.StationIDs,
		RefreshInterval: time.Hour,
		RequestTimeout:  time.Second,
	}
	presenter := &signalPresenter{done: make(chan struct{})}
	cache := metar.NewCache(&stubStore{}, metarCfg.RefreshInterval, logger.NewNop())
	svc := metar.NewService(metarCfg, stubFetcher{}, cache, presenter, time.UTC, logger.NewNop())

	require.NoError(t, svc.Start())
	t.Cleanup(func() { svc.Stop() })

	select {
	case <-presenter.done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for initial fetch")
	}
	return svc
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetMETAR(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	handler := NewHandler(startedService(t, cfg), nil, cfg, logger.NewNop())

	rec := httptest.NewRecorder()
	handler.GetMETAR(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metar", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	stations, ok := body["stations"].([]any)
	require.True(t, ok)
	assert.Len(t, stations, 2)
	assert.Contains(t, body, "countdown_seconds")
	assert.Contains(t, body, "fetched_at")
}

func TestRefreshMETAR(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	handler := NewHandler(startedService(t, cfg), nil, cfg, logger.NewNop())

	rec := httptest.NewRecorder()
	handler.RefreshMETAR(rec, httptest.NewRequest(http.MethodPost, "/api/v1/metar/refresh", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "refreshing", body["status"])
}

func TestGetConditions_disabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	handler := NewHandler(startedService(t, cfg), nil, cfg, logger.NewNop())

	rec := httptest.NewRecorder()
	handler.GetConditions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conditions", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetConditions(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"device_id": 1, "obs": [[1756212000, 0.5, 3.0, 5.0, 90, 3, 1005.0, 25.0, 40]]}`))
	}))
	defer upstream.Close()

	cfg := testConfig()
	tempestClient := tempest.NewClient(tempest.Config{
		BaseURL:  upstream.URL,
		DeviceID: 1,
		Lookback: 15 * time.Minute,
	}, logger.NewNop())
	handler := NewHandler(startedService(t, cfg), tempestClient, cfg, logger.NewNop())

	rec := httptest.NewRecorder()
	handler.GetConditions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conditions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	assert.InDelta(t, 3.0*1.94384, body["wind_speed_kt"].(float64), 0.01)
	assert.Equal(t, 90.0, body["wind_dir_true"])
	assert.Greater(t, body["pressure_altitude_ft"].(float64), 0.0)
	// Warm day over standard pressure: density altitude above pressure altitude
	assert.Greater(t, body["density_altitude_ft"].(float64), body["pressure_altitude_ft"].(float64))
	assert.Contains(t, body, "headwind_kt")
	assert.Contains(t, body, "crosswind_kt")
}

func TestGetConditions_upstreamFailure(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	cfg := testConfig()
	tempestClient := tempest.NewClient(tempest.Config{
		BaseURL:  upstream.URL,
		DeviceID: 1,
		Lookback: 15 * time.Minute,
	}, logger.NewNop())
	handler := NewHandler(startedService(t, cfg), tempestClient, cfg, logger.NewNop())

	rec := httptest.NewRecorder()
	handler.GetConditions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conditions", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetStation(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	handler := NewHandler(startedService(t, cfg), nil, cfg, logger.NewNop())

	rec := httptest.NewRecorder()
	handler.GetStation(rec, httptest.NewRequest(http.MethodGet, "/api/v1/station", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Test Field", body["name"])
	assert.Equal(t, 40.0, body["runway_heading_mag"])

	stations, ok := body["metar_stations"].([]any)
	require.True(t, ok)
	assert.Len(t, stations, 2)
}

func TestGetHealth(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	handler := NewHandler(startedService(t, cfg), nil, cfg, logger.NewNop())

	rec := httptest.NewRecorder()
	handler.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["have_data"])
}

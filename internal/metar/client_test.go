package metar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

func testClientConfig(baseURL string) Config {
	return Config{
		StationIDs:      []string{"KJFK", "KLGA"},
		APIBaseURL:      baseURL,
		RefreshInterval: 10 * time.Minute,
		RequestTimeout:  2 * time.Second,
		MaxRetries:      2,
	}
}

func TestClient_fetchStations(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotQuery = r.URL.RawQuery
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"icaoId": "KJFK"}, {"icaoId": "KLGA"}]`))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), logger.NewNop())

	reports, err := client.FetchStations(context.Background(), []string{"KJFK", "KLGA"})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "KJFK", reports[0].ICAOID)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, gotQuery, "ids=KJFK%2CKLGA")
	assert.Contains(t, gotQuery, "format=json")
}

func TestClient_emptyResponseIsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), logger.NewNop())

	_, err := client.FetchStations(context.Background(), []string{"KJFK"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no METAR data")
}

func TestClient_retriesOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"icaoId": "KJFK"}]`))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), logger.NewNop())

	reports, err := client.FetchStations(context.Background(), []string{"KJFK"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_exhaustedRetriesReturnLastError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), logger.NewNop())

	_, err := client.FetchStations(context.Background(), []string{"KJFK"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_cancelledContextStopsRetrying(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchStations(ctx, []string{"KJFK"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_malformedPayloadRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{truncated`))
			return
		}
		w.Write([]byte(`[{"icaoId": "KJFK"}]`))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), logger.NewNop())

	reports, err := client.FetchStations(context.Background(), []string{"KJFK"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
}

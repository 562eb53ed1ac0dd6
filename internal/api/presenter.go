package api

import (
	"time"

	"github.com/jamesrupertball/tempest-weather-airport/internal/metar"
	"github.com/jamesrupertball/tempest-weather-airport/internal/websocket"
	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

// WebSocketPresenter pushes decoded view-models and scheduling signals to
// every connected dashboard page. It is the presenter boundary of the METAR
// engine.
type WebSocketPresenter struct {
	ws     *websocket.Server
	logger *logger.Logger
}

// NewWebSocketPresenter creates a presenter over the given hub
func NewWebSocketPresenter(ws *websocket.Server, log *logger.Logger) *WebSocketPresenter {
	return &WebSocketPresenter{
		ws:     ws,
		logger: log.Named("metar-presenter"),
	}
}

// PresentStations pushes one decoded view per station plus the
// "last fetched at" signal
func (p *WebSocketPresenter) PresentStations(views []metar.DecodedView, fetchedAt time.Time) {
	data := map[string]any{
		"stations": views,
	}
	if !fetchedAt.IsZero() {
		data["fetched_at"] = fetchedAt.UTC().Format(time.RFC3339)
	}
	p.ws.Broadcast(&websocket.Message{
		Type: websocket.MessageTypeMETARUpdate,
		Data: data,
	})
}

// PresentCountdown pushes the time remaining until the next scheduled fetch
func (p *WebSocketPresenter) PresentCountdown(remaining time.Duration) {
	p.ws.Broadcast(&websocket.Message{
		Type: websocket.MessageTypeCountdown,
		Data: map[string]any{
			"seconds_remaining": int(remaining.Seconds()),
		},
	})
}

// PresentFetchError surfaces a failed fetch; the pages keep whatever they
// last rendered
func (p *WebSocketPresenter) PresentFetchError(message string) {
	p.ws.Broadcast(&websocket.Message{
		Type: websocket.MessageTypeFetchError,
		Data: map[string]any{
			"message": message,
		},
	})
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jamesrupertball/tempest-weather-airport/internal/config"
	"github.com/jamesrupertball/tempest-weather-airport/internal/metar"
	"github.com/jamesrupertball/tempest-weather-airport/internal/tempest"
	"github.com/jamesrupertball/tempest-weather-airport/internal/websocket"
	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

// Router wires the API handlers, the WebSocket endpoint, and the static
// dashboard pages into one HTTP handler
type Router struct {
	handler  *Handler
	wsServer *websocket.Server
	config   *config.Config
	logger   *logger.Logger
}

// NewRouter creates the dashboard router
func NewRouter(metarService *metar.Service, tempestClient *tempest.Client, wsServer *websocket.Server, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler:  NewHandler(metarService, tempestClient, cfg, log),
		wsServer: wsServer,
		config:   cfg,
		logger:   log.Named("router"),
	}
}

// Routes builds the route tree
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/metar", rt.handler.GetMETAR)
		r.Post("/metar/refresh", rt.handler.RefreshMETAR)
		r.Get("/conditions", rt.handler.GetConditions)
		r.Get("/station", rt.handler.GetStation)
		r.Get("/health", rt.handler.GetHealth)
		r.Get("/ws", rt.wsServer.HandleConnection)
	})

	if rt.config.Server.StaticFilesDir != "" {
		r.NotFound(NewStaticFileHandler(rt.config.Server.StaticFilesDir, rt.logger).ServeHTTP)
	}

	return r
}

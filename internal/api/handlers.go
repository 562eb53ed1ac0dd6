package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jamesrupertball/tempest-weather-airport/internal/config"
	"github.com/jamesrupertball/tempest-weather-airport/internal/flightcalc"
	"github.com/jamesrupertball/tempest-weather-airport/internal/metar"
	"github.com/jamesrupertball/tempest-weather-airport/internal/tempest"
	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

// Handler holds the HTTP handlers for the dashboard API
type Handler struct {
	metarService  *metar.Service
	tempestClient *tempest.Client // nil when the on-field station is disabled
	config        *config.Config
	logger        *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(metarService *metar.Service, tempestClient *tempest.Client, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		metarService:  metarService,
		tempestClient: tempestClient,
		config:        cfg,
		logger:        log.Named("api"),
	}
}

// GetMETAR returns the decoded per-station views plus the scheduler state
func (h *Handler) GetMETAR(w http.ResponseWriter, r *http.Request) {
	views, fetchedAt := h.metarService.Views()
	status := h.metarService.GetStatus()

	response := map[string]interface{}{
		"stations":          views,
		"countdown_seconds": int(status.Countdown.Seconds()),
		"catch_up":          status.CatchUp,
	}
	if !fetchedAt.IsZero() {
		response["fetched_at"] = fetchedAt.UTC().Format(time.RFC3339)
	}
	if !status.NextFetch.IsZero() {
		response["next_fetch"] = status.NextFetch.UTC().Format(time.RFC3339)
	}

	WriteJSON(w, http.StatusOK, response)
}

// RefreshMETAR is the manual refresh trigger: no parameters, immediate
// fetch, fresh recurring schedule
func (h *Handler) RefreshMETAR(w http.ResponseWriter, r *http.Request) {
	h.metarService.ManualRefresh()
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

// GetConditions returns the live on-field panel: wind, temperature, and
// density altitude computed from the Tempest station
func (h *Handler) GetConditions(w http.ResponseWriter, r *http.Request) {
	if h.tempestClient == nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "on-field station is not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	obs, err := h.tempestClient.LatestObservation(ctx)
	if err != nil {
		h.logger.Error("Failed to fetch on-field observation", logger.Error(err))
		WriteJSON(w, http.StatusBadGateway, map[string]string{
			"error": "on-field station data unavailable",
		})
		return
	}

	station := h.config.Station
	windKt := obs.WindAvgMS * flightcalc.MsToKnots
	gustKt := obs.WindGustMS * flightcalc.MsToKnots

	pressureAlt := flightcalc.PressureAltitude(obs.StationPressureHPa)
	densityAlt := flightcalc.DensityAltitude(pressureAlt, obs.AirTempC)

	declination := flightcalc.MagneticVariation(
		station.Latitude, station.Longitude, station.ElevationFeet, time.Now())
	windDirMag := flightcalc.TrueToMagnetic(obs.WindDirDeg, declination)
	headwind, crosswind := flightcalc.WindComponents(
		station.RunwayHeadingMag, windDirMag, windKt)

	response := map[string]interface{}{
		"observed_at":          obs.Timestamp.UTC().Format(time.RFC3339),
		"wind_dir_true":        obs.WindDirDeg,
		"wind_dir_magnetic":    windDirMag,
		"wind_speed_kt":        windKt,
		"wind_gust_kt":         gustKt,
		"air_temp_c":           obs.AirTempC,
		"relative_humidity":    obs.RelativeHumidity,
		"station_pressure_hpa": obs.StationPressureHPa,
		"pressure_altitude_ft": pressureAlt,
		"density_altitude_ft":  densityAlt,
		"runway_heading_mag":   station.RunwayHeadingMag,
		"headwind_kt":          headwind,
		"crosswind_kt":         crosswind,
		"magnetic_declination": declination,
	}

	WriteJSON(w, http.StatusOK, response)
}

// GetStation returns the airfield configuration the dashboards render
// around
func (h *Handler) GetStation(w http.ResponseWriter, r *http.Request) {
	station := h.config.Station
	response := map[string]interface{}{
		"name":               station.Name,
		"latitude":           station.Latitude,
		"longitude":          station.Longitude,
		"elevation_feet":     station.ElevationFeet,
		"runway_heading_mag": station.RunwayHeadingMag,
		"timezone":           station.Timezone,
		"metar_stations":     h.config.METAR.StationIDs,
	}
	WriteJSON(w, http.StatusOK, response)
}

// GetHealth reports scheduler liveness
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := h.metarService.GetStatus()

	response := map[string]interface{}{
		"status":    "ok",
		"have_data": status.HaveData,
	}
	if !status.LastFetched.IsZero() {
		response["last_fetched"] = status.LastFetched.UTC().Format(time.RFC3339)
	}

	WriteJSON(w, http.StatusOK, response)
}

// WriteJSON writes data as a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

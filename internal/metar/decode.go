package metar

import (
	"fmt"
	"time"
)

const timeDisplayLayout = "Mon Jan 2 15:04 MST"

// BuildView derives the display-ready view-model for one station. Every
// field degrades independently to its placeholder, so one bad field never
// blocks the rest of the station's display.
func BuildView(raw RawStationReport, loc *time.Location) DecodedView {
	obs := Normalize(raw)

	view := DecodedView{
		StationID:      obs.StationID,
		RawText:        obs.RawText,
		Wind:           FormatWind(obs),
		Visibility:     FormatVisibility(obs),
		Clouds:         FormatClouds(obs.Clouds),
		Altimeter:      FormatAltimeter(obs.Altimeter),
		FlightCategory: FlightCategory(obs),
	}

	if obs.TimeReported {
		view.ObservedUTC = obs.ObservedAt.UTC().Format(timeDisplayLayout)
		if loc != nil {
			view.ObservedLocal = obs.ObservedAt.In(loc).Format(timeDisplayLayout)
		}
	} else {
		view.ObservedUTC = notReportedValue
	}

	phrase, reported := DecodeWx(obs.WxString)
	view.Weather = phrase
	view.WeatherReported = reported
	if reported {
		view.WeatherCode = obs.WxString
	}

	temp := FormatTemperature(obs.TempC)
	dew := FormatTemperature(obs.DewpointC)
	view.Temperature = fmt.Sprintf("%s / %s", temp, dew)

	return view
}

// ErrorView builds the explicit per-station placeholder shown when a
// station's data is unavailable
func ErrorView(stationID, message string) DecodedView {
	return DecodedView{
		StationID: stationID,
		Error:     message,
	}
}

package metar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const notReportedValue = "Not reported"

// 16-point compass rose, starting at north
var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// compassPoint converts a direction in degrees to its 16-point compass name
func compassPoint(deg float64) string {
	idx := int(math.Round(deg/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassPoints[idx]
}

// FormatWind renders the wind phrase. Zero-speed winds are displayed as calm
// regardless of reported direction, so a station never shows "0° at 0 kt".
func FormatWind(obs Observation) string {
	if obs.WindSpeedKt == nil && obs.WindDirDeg == nil && !obs.WindVariable {
		return "Calm"
	}
	if obs.WindSpeedKt == nil || *obs.WindSpeedKt == 0 {
		return "Calm"
	}
	if obs.WindVariable || obs.WindDirDeg == nil {
		return "Variable"
	}
	if *obs.WindDirDeg == 0 {
		return "Calm"
	}

	dir := *obs.WindDirDeg
	speed := *obs.WindSpeedKt
	phrase := fmt.Sprintf("%.0f° (%s) at %.0f kt", dir, compassPoint(dir), speed)
	if obs.WindGustKt != nil && *obs.WindGustKt > speed {
		phrase += fmt.Sprintf(" gusting to %.0f kt", *obs.WindGustKt)
	}
	return phrase
}

// FormatVisibility renders the visibility phrase in statute miles
func FormatVisibility(obs Observation) string {
	if !obs.VisibilityReported {
		return notReportedValue
	}
	if obs.VisibilityPlus || (obs.VisibilitySM != nil && *obs.VisibilitySM >= 10) {
		return "10+ statute miles"
	}
	if obs.VisibilitySM == nil {
		return notReportedValue
	}
	return fmt.Sprintf("%s statute miles", strconv.FormatFloat(*obs.VisibilitySM, 'f', -1, 64))
}

// Coverage code display names
var coverNames = map[string]string{
	CoverSkyClear:      "Sky clear",
	CoverClear:         "Clear",
	CoverFew:           "Few clouds",
	CoverScattered:     "Scattered clouds",
	CoverBroken:        "Broken clouds",
	CoverOvercast:      "Overcast",
	CoverVerticalVisib: "Vertical visibility",
}

// FormatClouds renders the cloud-layer list, one layer per line, in the
// provider-supplied order
func FormatClouds(layers []CloudLayer) string {
	if len(layers) == 0 {
		return "Clear"
	}

	lines := make([]string, 0, len(layers))
	for _, layer := range layers {
		name, ok := coverNames[layer.Cover]
		if !ok {
			// Unknown coverage codes stay visible verbatim
			name = layer.Cover
		}
		if layer.BaseFt != nil {
			lines = append(lines, fmt.Sprintf("%s at %.0f ft", name, *layer.BaseFt))
		} else {
			lines = append(lines, name)
		}
	}
	return strings.Join(lines, "\n")
}

// FormatTemperature renders a Celsius value with its Fahrenheit conversion.
// METAR's M00 group means exactly 0°C, so a negative-zero float is
// normalized before formatting and never shows a minus sign.
func FormatTemperature(c *float64) string {
	if c == nil {
		return notReportedValue
	}
	celsius := *c
	if celsius == 0 {
		celsius = 0 // collapse IEEE negative zero
	}
	fahrenheit := celsius*9/5 + 32
	return fmt.Sprintf("%.1f°C (%.1f°F)", celsius, fahrenheit)
}

// hPa to inches of mercury
const hpaToInHg = 0.02953

// FormatAltimeter renders the altimeter setting in inches of mercury. The
// source reports either hPa or inHg without saying which; anything above 100
// cannot be an inHg altimeter setting and is converted.
func FormatAltimeter(v *float64) string {
	if v == nil {
		return notReportedValue
	}
	inHg := *v
	if inHg > 100 {
		inHg *= hpaToInHg
	}
	return fmt.Sprintf("%.2f inHg", inHg)
}

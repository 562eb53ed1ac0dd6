package flightcalc

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// Standard atmosphere constants
const (
	T0          = 288.15  // Standard sea level temperature (K)
	P0          = 1013.25 // Standard sea level pressure (hPa)
	L           = 0.0065  // Temperature lapse rate (K/m) in troposphere
	ZeroCelsius = 273.15  // 0°C in Kelvin
	FtPerMeter  = 3.28084
	MsToKnots   = 1.94384
)

// PressureAltitude returns the pressure altitude in feet for a station-level
// pressure reading in hPa
func PressureAltitude(stationPressureHPa float64) float64 {
	if stationPressureHPa <= 0 {
		return 0
	}
	// Inverse of the troposphere pressure model
	altM := (T0 / L) * (1 - math.Pow(stationPressureHPa/P0, 0.190284))
	return altM * FtPerMeter
}

// DensityAltitude returns density altitude in feet given pressure altitude
// and outside air temperature
func DensityAltitude(pressureAltFt, tempCelsius float64) float64 {
	// ISA temperature at the given pressure altitude
	isaTempK := T0 - L*(pressureAltFt/FtPerMeter)
	isaTempC := isaTempK - ZeroCelsius

	// DA = PA + 120 * (OAT - ISA)
	return pressureAltFt + 120*(tempCelsius-isaTempC)
}

// WindComponents resolves a wind against a runway heading. Positive headwind
// means wind down the runway toward the aircraft; positive crosswind is from
// the right. Both headings must be in the same reference (true or magnetic).
func WindComponents(runwayHeadingDeg, windDirDeg, windSpeedKt float64) (headwind, crosswind float64) {
	angle := (windDirDeg - runwayHeadingDeg) * math.Pi / 180
	headwind = windSpeedKt * math.Cos(angle)
	crosswind = windSpeedKt * math.Sin(angle)
	return headwind, crosswind
}

// MagneticVariation returns the magnetic declination in degrees (+East,
// -West) for a position and time, so true METAR winds can be compared
// against magnetic runway headings
func MagneticVariation(lat, lon, altFt float64, date time.Time) float64 {
	altM := altFt / FtPerMeter

	loc := egm96.NewLocationGeodetic(lat, lon, altM)
	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		// Zero declination is the safe fallback
		return 0.0
	}

	return mag.D()
}

// TrueToMagnetic converts a true heading to magnetic given the local
// declination
func TrueToMagnetic(trueDeg, declinationDeg float64) float64 {
	return normalizeHeading(trueDeg - declinationDeg)
}

func normalizeHeading(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

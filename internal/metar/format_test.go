package metar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestFormatWind_calm(t *testing.T) {
	t.Parallel()

	// Nothing reported at all
	assert.Equal(t, "Calm", FormatWind(Observation{}))

	// Zero speed displays as calm regardless of direction
	assert.Equal(t, "Calm", FormatWind(Observation{WindDirDeg: f(220), WindSpeedKt: f(0)}))

	// Zero direction displays as calm regardless of speed
	assert.Equal(t, "Calm", FormatWind(Observation{WindDirDeg: f(0), WindSpeedKt: f(8)}))
}

func TestFormatWind_variable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Variable", FormatWind(Observation{WindVariable: true, WindSpeedKt: f(4)}))
}

func TestFormatWind_directionAndSpeed(t *testing.T) {
	t.Parallel()

	got := FormatWind(Observation{WindDirDeg: f(220), WindSpeedKt: f(12)})
	assert.Equal(t, "220° (SW) at 12 kt", got)
}

func TestFormatWind_gustOnlyWhenAboveSustained(t *testing.T) {
	t.Parallel()

	withGust := FormatWind(Observation{WindDirDeg: f(180), WindSpeedKt: f(10), WindGustKt: f(18)})
	assert.Contains(t, withGust, "gusting to 18 kt")

	equalGust := FormatWind(Observation{WindDirDeg: f(180), WindSpeedKt: f(10), WindGustKt: f(10)})
	assert.NotContains(t, equalGust, "gusting")

	lowerGust := FormatWind(Observation{WindDirDeg: f(180), WindSpeedKt: f(10), WindGustKt: f(8)})
	assert.NotContains(t, lowerGust, "gusting")
}

func TestCompassPoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		deg  float64
		want string
	}{
		{0, "N"},
		{11, "N"},
		{12, "NNE"},
		{90, "E"},
		{180, "S"},
		{270, "W"},
		{350, "N"},
		{360, "N"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, compassPoint(tt.deg), "%v°", tt.deg)
	}
}

func TestFormatVisibility(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Not reported", FormatVisibility(Observation{}))

	tenPlus := Observation{VisibilityReported: true, VisibilityPlus: true}
	assert.Equal(t, "10+ statute miles", FormatVisibility(tenPlus))

	overTen := Observation{VisibilityReported: true, VisibilitySM: f(15)}
	assert.Equal(t, "10+ statute miles", FormatVisibility(overTen))

	normal := Observation{VisibilityReported: true, VisibilitySM: f(2.5)}
	assert.Equal(t, "2.5 statute miles", FormatVisibility(normal))
}

func TestFormatClouds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Clear", FormatClouds(nil))

	layers := []CloudLayer{
		{Cover: CoverScattered, BaseFt: f(2500)},
		{Cover: CoverBroken, BaseFt: f(5000)},
	}
	assert.Equal(t, "Scattered clouds at 2500 ft\nBroken clouds at 5000 ft", FormatClouds(layers))

	// Provider order is preserved, even out of height order
	reversed := []CloudLayer{
		{Cover: CoverOvercast, BaseFt: f(8000)},
		{Cover: CoverFew, BaseFt: f(1200)},
	}
	assert.Equal(t, "Overcast at 8000 ft\nFew clouds at 1200 ft", FormatClouds(reversed))

	noBase := []CloudLayer{{Cover: CoverVerticalVisib}}
	assert.Equal(t, "Vertical visibility", FormatClouds(noBase))
}

func TestFormatTemperature(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Not reported", FormatTemperature(nil))
	assert.Equal(t, "12.0°C (53.6°F)", FormatTemperature(f(12)))
	assert.Equal(t, "-5.0°C (23.0°F)", FormatTemperature(f(-5)))
}

func TestFormatTemperature_negativeZero(t *testing.T) {
	t.Parallel()

	// METAR's M00 group means exactly 0°C; the minus sign must not leak
	negZero := math.Copysign(0, -1)
	assert.Equal(t, "0.0°C (32.0°F)", FormatTemperature(&negZero))
}

func TestFormatAltimeter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Not reported", FormatAltimeter(nil))

	// hPa-range values convert to inches of mercury
	assert.Equal(t, "29.91 inHg", FormatAltimeter(f(1013)))

	// inHg-range values pass through
	assert.Equal(t, "29.92 inHg", FormatAltimeter(f(29.92)))
}

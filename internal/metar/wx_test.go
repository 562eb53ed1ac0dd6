package metar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeWx_notReported(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"", "   "} {
		phrase, reported := DecodeWx(code)
		assert.Equal(t, NotReported, phrase)
		assert.False(t, reported)
	}
}

func TestDecodeWx_intensity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{"-RA", "Light Rain"},
		{"+TSRA", "Heavy Thunderstorm with Rain"},
		{"VCSH", "in Vicinity Showers of"},
		{"RA", "Rain"},
	}

	for _, tt := range tests {
		phrase, reported := DecodeWx(tt.code)
		assert.True(t, reported, tt.code)
		assert.Equal(t, tt.want, phrase, tt.code)
	}
}

func TestDecodeWx_descriptorThenPhenomena(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{"-RASN", "Light Rain Snow"},
		{"FZDZ", "Freezing Drizzle"},
		{"BLSN", "Blowing Snow"},
		{"MIFG", "Shallow Fog"},
		{"BR", "Mist"},
		{"+FC", "Heavy Funnel Cloud"},
	}

	for _, tt := range tests {
		phrase, _ := DecodeWx(tt.code)
		assert.Equal(t, tt.want, phrase, tt.code)
	}
}

func TestDecodeWx_multipleGroups(t *testing.T) {
	t.Parallel()

	phrase, reported := DecodeWx("-SHRA BR")
	assert.True(t, reported)
	assert.Equal(t, "Light Showers of Rain, Mist", phrase)
}

func TestDecodeWx_unknownRemainderKeptVerbatim(t *testing.T) {
	t.Parallel()

	// Unknown trailing fragments must stay visible to the pilot
	phrase, _ := DecodeWx("-RAXX")
	assert.Equal(t, "Light Rain XX", phrase)

	phrase, _ = DecodeWx("ZZZZ")
	assert.Equal(t, "ZZZZ", phrase)
}

func TestDecodeWx_greedyPhenomena(t *testing.T) {
	t.Parallel()

	phrase, _ := DecodeWx("TSRAGR")
	assert.Equal(t, "Thunderstorm with Rain Hail", phrase)
}

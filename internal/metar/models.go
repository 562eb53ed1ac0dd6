package metar

import (
	"encoding/json"
	"strconv"
	"time"
)

// Cloud coverage codes as reported by the data source
const (
	CoverSkyClear      = "SKC"
	CoverClear         = "CLR"
	CoverFew           = "FEW"
	CoverScattered     = "SCT"
	CoverBroken        = "BKN"
	CoverOvercast      = "OVC"
	CoverVerticalVisib = "VV"
)

// Flight categories derived from ceiling and visibility
const (
	CategoryVFR  = "VFR"
	CategoryMVFR = "MVFR"
	CategoryIFR  = "IFR"
	CategoryLIFR = "LIFR"
)

// FlexValue holds a field the data source may send as a number or a string
// (wind direction can be "VRB", visibility can be "10+"). The original
// representation is kept so nothing is lost between fetch and decode.
type FlexValue struct {
	Raw     string
	Number  float64
	IsNum   bool
	Present bool
}

// UnmarshalJSON accepts a JSON number, a JSON string, or null
func (v *FlexValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		v.Raw = string(b)
		v.Number = n
		v.IsNum = true
		v.Present = true
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v.Raw = s
	v.Present = true
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		v.Number = n
		v.IsNum = true
	}
	return nil
}

// MarshalJSON writes the value back in a shape UnmarshalJSON accepts,
// so cached reports round-trip through the persisted store
func (v FlexValue) MarshalJSON() ([]byte, error) {
	if !v.Present {
		return []byte("null"), nil
	}
	if v.IsNum {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Raw)
}

// RawCloudLayer is one cloud layer as returned by the data source, under
// either of the two field-naming conventions
type RawCloudLayer struct {
	Cover     string   `json:"cover,omitempty"`
	SkyCover  string   `json:"sky_cover,omitempty"`
	Base      *float64 `json:"base,omitempty"`
	BaseFtAGL *float64 `json:"cloud_base_ft_agl,omitempty"`
}

// RawStationReport is the loosely-typed record returned by the data source
// for one station. The source returns one of two JSON shapes depending on
// endpoint version, so every field carries both candidate keys; the adapter
// reconciles them into an Observation in one step.
type RawStationReport struct {
	ICAOID    string `json:"icaoId,omitempty"`
	StationID string `json:"station_id,omitempty"`

	RawOb   string `json:"rawOb,omitempty"`
	RawText string `json:"raw_text,omitempty"`

	ObsTime         *int64 `json:"obsTime,omitempty"`          // unix epoch seconds
	ReportTime      string `json:"reportTime,omitempty"`       // ISO timestamp
	ObservationTime string `json:"observation_time,omitempty"` // ISO timestamp (legacy shape)

	WDir       FlexValue `json:"wdir,omitempty"`
	WindDirDeg FlexValue `json:"wind_dir_degrees,omitempty"`

	WSpd        *float64 `json:"wspd,omitempty"`
	WindSpeedKt *float64 `json:"wind_speed_kt,omitempty"`

	WGst       *float64 `json:"wgst,omitempty"`
	WindGustKt *float64 `json:"wind_gust_kt,omitempty"`

	Visib        FlexValue `json:"visib,omitempty"`
	VisibilitySM FlexValue `json:"visibility_statute_mi,omitempty"`

	WxString       string `json:"wxString,omitempty"`
	WxStringLegacy string `json:"wx_string,omitempty"`

	Clouds       []RawCloudLayer `json:"clouds,omitempty"`
	SkyCondition []RawCloudLayer `json:"sky_condition,omitempty"`

	Temp  *float64 `json:"temp,omitempty"`
	TempC *float64 `json:"temp_c,omitempty"`

	Dewp      *float64 `json:"dewp,omitempty"`
	DewpointC *float64 `json:"dewpoint_c,omitempty"`

	Altim     *float64 `json:"altim,omitempty"`
	AltimInHg *float64 `json:"altim_in_hg,omitempty"`
}

// CloudLayer is a normalized cloud layer. Provider order is preserved for
// display; the classifier re-derives the ceiling from coverage and base.
type CloudLayer struct {
	Cover  string   `json:"cover"`
	BaseFt *float64 `json:"base_ft,omitempty"`
}

// Observation is the single normalized shape every downstream component
// (decoder, formatters, classifier) depends on
type Observation struct {
	StationID    string
	RawText      string
	ObservedAt   time.Time
	TimeReported bool

	WindDirDeg   *float64
	WindVariable bool
	WindSpeedKt  *float64
	WindGustKt   *float64

	VisibilitySM       *float64
	VisibilityPlus     bool
	VisibilityReported bool

	WxString string

	Clouds []CloudLayer

	TempC     *float64
	DewpointC *float64

	// Altimeter as reported; units ambiguous (hPa or inHg), resolved by
	// the formatter
	Altimeter *float64
}

// DecodedView is the display-ready, per-station view-model handed to the
// presenter. It is always derived fresh from a RawStationReport, never
// cached independently of its raw source.
type DecodedView struct {
	StationID       string `json:"station_id"`
	RawText         string `json:"raw_text,omitempty"`
	ObservedUTC     string `json:"observed_utc,omitempty"`
	ObservedLocal   string `json:"observed_local,omitempty"`
	Wind            string `json:"wind,omitempty"`
	Visibility      string `json:"visibility,omitempty"`
	WeatherCode     string `json:"weather_code,omitempty"`
	Weather         string `json:"weather,omitempty"`
	WeatherReported bool   `json:"weather_reported"`
	Clouds          string `json:"clouds,omitempty"`
	Temperature     string `json:"temperature,omitempty"`
	Altimeter       string `json:"altimeter,omitempty"`
	FlightCategory  string `json:"flight_category,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Config holds the METAR engine settings, mirrored from the config package
// so this package has no dependency on it
type Config struct {
	StationIDs      []string
	APIBaseURL      string
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	MaxRetries      int
}

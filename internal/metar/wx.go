package metar

import "strings"

// NotReported is the sentinel phrase for an absent weather-phenomena field
const NotReported = "None reported"

// Intensity prefixes, consumed first (one or two characters)
var wxIntensity = map[string]string{
	"-":  "Light",
	"+":  "Heavy",
	"VC": "in Vicinity",
}

// Descriptors, consumed second (exactly two characters)
var wxDescriptors = map[string]string{
	"MI": "Shallow",
	"PR": "Partial",
	"BC": "Patches of",
	"DR": "Low Drifting",
	"BL": "Blowing",
	"SH": "Showers of",
	"TS": "Thunderstorm with",
	"FZ": "Freezing",
}

// Phenomena: precipitation, obscuration, and other codes, consumed greedily
// left-to-right (two characters each)
var wxPhenomena = map[string]string{
	// Precipitation
	"DZ": "Drizzle",
	"RA": "Rain",
	"SN": "Snow",
	"SG": "Snow Grains",
	"IC": "Ice Crystals",
	"PL": "Ice Pellets",
	"GR": "Hail",
	"GS": "Small Hail",
	"UP": "Unknown Precipitation",
	// Obscuration
	"BR": "Mist",
	"FG": "Fog",
	"FU": "Smoke",
	"VA": "Volcanic Ash",
	"DU": "Widespread Dust",
	"SA": "Sand",
	"HZ": "Haze",
	"PY": "Spray",
	// Other
	"PO": "Dust Whirls",
	"SQ": "Squalls",
	"FC": "Funnel Cloud",
	"SS": "Sandstorm",
	"DS": "Duststorm",
}

// DecodeWx turns a whitespace-separated sequence of weather groups (e.g.
// "-RASN", "+TSRA BR") into a human-readable phrase. Reported is false for
// an empty or absent field, in which case the phrase is the NotReported
// sentinel rather than an empty string.
func DecodeWx(code string) (phrase string, reported bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return NotReported, false
	}

	groups := strings.Fields(code)
	decoded := make([]string, 0, len(groups))
	for _, group := range groups {
		decoded = append(decoded, decodeWxGroup(group))
	}
	return strings.Join(decoded, ", "), true
}

// decodeWxGroup decodes a single group by the fixed precedence: intensity,
// then descriptor, then greedy phenomenon codes. Whatever trails that could
// not be matched is emitted verbatim so unknown codes stay visible.
func decodeWxGroup(group string) string {
	rest := group
	var fragments []string

	switch {
	case strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "+"):
		fragments = append(fragments, wxIntensity[rest[:1]])
		rest = rest[1:]
	case strings.HasPrefix(rest, "VC"):
		fragments = append(fragments, wxIntensity["VC"])
		rest = rest[2:]
	}

	if len(rest) >= 2 {
		if desc, ok := wxDescriptors[rest[:2]]; ok {
			fragments = append(fragments, desc)
			rest = rest[2:]
		}
	}

	for len(rest) >= 2 {
		phen, ok := wxPhenomena[rest[:2]]
		if !ok {
			break
		}
		fragments = append(fragments, phen)
		rest = rest[2:]
	}

	if rest != "" {
		fragments = append(fragments, rest)
	}

	return strings.Join(fragments, " ")
}

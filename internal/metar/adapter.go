package metar

import (
	"strings"
	"time"
)

// Normalize reconciles the two upstream field-naming conventions into the
// single Observation shape. It never fails: missing or unparseable fields
// simply stay unset and the formatters render their not-reported
// placeholders.
func Normalize(raw RawStationReport) Observation {
	obs := Observation{
		StationID: firstNonEmpty(raw.ICAOID, raw.StationID),
		RawText:   firstNonEmpty(raw.RawOb, raw.RawText),
		WxString:  firstNonEmpty(raw.WxString, raw.WxStringLegacy),
		TempC:     firstNumber(raw.Temp, raw.TempC),
		DewpointC: firstNumber(raw.Dewp, raw.DewpointC),
		Altimeter: firstNumber(raw.Altim, raw.AltimInHg),
	}

	obs.ObservedAt, obs.TimeReported = observationTime(raw)

	dir := pickFlex(raw.WDir, raw.WindDirDeg)
	if dir.Present {
		if dir.IsNum {
			d := dir.Number
			obs.WindDirDeg = &d
		} else if strings.EqualFold(strings.TrimSpace(dir.Raw), "VRB") {
			obs.WindVariable = true
		}
	}
	obs.WindSpeedKt = firstNumber(raw.WSpd, raw.WindSpeedKt)
	obs.WindGustKt = firstNumber(raw.WGst, raw.WindGustKt)

	vis := pickFlex(raw.Visib, raw.VisibilitySM)
	if vis.Present {
		obs.VisibilityReported = true
		if strings.Contains(vis.Raw, "+") {
			obs.VisibilityPlus = true
		}
		if vis.IsNum {
			v := vis.Number
			obs.VisibilitySM = &v
		} else if !obs.VisibilityPlus {
			// A string we can make nothing of counts as not reported
			obs.VisibilityReported = false
		}
	}

	layers := raw.Clouds
	if len(layers) == 0 {
		layers = raw.SkyCondition
	}
	for _, l := range layers {
		obs.Clouds = append(obs.Clouds, CloudLayer{
			Cover:  strings.ToUpper(firstNonEmpty(l.Cover, l.SkyCover)),
			BaseFt: firstNumber(l.Base, l.BaseFtAGL),
		})
	}

	return obs
}

// observationTime accepts either a unix epoch or an ISO timestamp string
func observationTime(raw RawStationReport) (time.Time, bool) {
	if raw.ObsTime != nil {
		return time.Unix(*raw.ObsTime, 0).UTC(), true
	}

	for _, s := range []string{raw.ReportTime, raw.ObservationTime} {
		if s == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}

	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNumber(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func pickFlex(values ...FlexValue) FlexValue {
	for _, v := range values {
		if v.Present {
			return v
		}
	}
	return FlexValue{}
}

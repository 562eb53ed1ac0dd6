package metar

// Ceiling returns the lowest base height among broken, overcast, and
// vertical-visibility layers. Qualifying layers without a numeric base are
// excluded from the minimum rather than treated as "no ceiling". The second
// return is false when no layer constrains the ceiling.
func Ceiling(layers []CloudLayer) (float64, bool) {
	var ceiling float64
	found := false
	for _, layer := range layers {
		switch layer.Cover {
		case CoverBroken, CoverOvercast, CoverVerticalVisib:
			if layer.BaseFt == nil {
				continue
			}
			if !found || *layer.BaseFt < ceiling {
				ceiling = *layer.BaseFt
				found = true
			}
		}
	}
	return ceiling, found
}

// FlightCategory derives VFR/MVFR/IFR/LIFR from ceiling and visibility.
// Tiers are evaluated strictly in order and either condition alone is enough
// to assign the worse category; ceiling and visibility are never required
// simultaneously.
func FlightCategory(obs Observation) string {
	ceiling, hasCeiling := Ceiling(obs.Clouds)

	visKnown := obs.VisibilitySM != nil && !obs.VisibilityPlus
	var vis float64
	if visKnown {
		vis = *obs.VisibilitySM
	}

	if (hasCeiling && ceiling < 500) || (visKnown && vis < 1) {
		return CategoryLIFR
	}
	if (hasCeiling && ceiling < 1000) || (visKnown && vis < 3) {
		return CategoryIFR
	}
	if (hasCeiling && ceiling <= 3000) || (visKnown && vis <= 5) {
		return CategoryMVFR
	}
	return CategoryVFR
}

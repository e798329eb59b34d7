package analysis

// User-facing recommendation messages. Ordering and thresholds in Recommend
// are part of the API contract; the messages themselves are free text.
const (
	// MsgAllHealthy short-circuits every index rule when over 90% of the
	// field samples as healthy.
	MsgAllHealthy = "Field is in excellent condition overall. Keep up the current management practices."

	// MsgNoData is the fallback when the imagery window produced no usable
	// vegetation samples for the field.
	MsgNoData = "No usable satellite data for this field in the analysis window. Try again after the next clear-sky pass."

	MsgNDVIStressed = "Low vegetation vigor detected. Scout for pest or disease pressure and consider a soil test."
	MsgNDVIHealthy  = "Vegetation is healthy. Maintain the current irrigation and fertilization schedule."
	MsgNDVIMonitor  = "Moderate vegetation vigor. Monitor the field for declining trends over the coming weeks."

	MsgNDWIDry = "Low water content detected. Check soil moisture and consider increasing irrigation."
	MsgNDWIWet = "High water content detected. Watch for waterlogging and review field drainage."

	MsgNDREDeficient = "Red-edge signal suggests a possible nutrient deficiency. Consider tissue sampling and a nitrogen application."

	MsgEVISparse = "Enhanced vegetation signal indicates sparse or stressed canopy. Inspect the affected areas on the ground."

	// MsgNoIssues closes the list when no index rule fired.
	MsgNoIssues = "No specific issues detected. Continue routine monitoring."
)

// Index thresholds driving the recommendation rules.
const (
	ndviStressedBelow  = 0.3
	ndviHealthyAbove   = 0.6
	ndwiDryBelow       = 0.2
	ndwiWetAbove       = 0.5
	ndreDeficientBelow = 0.2
	eviSparseBelow     = 0.2

	// allHealthyAbove is the healthy-zone percentage beyond which the
	// single positive-outlook message replaces all index-based advice.
	allHealthyAbove = 90
)

// Recommend derives the ordered recommendation list from index means and
// health zones. Rules append, they do not replace each other, except for
// the two top branches which each return a single message.
func Recommend(means IndexMeans, zones *HealthZones) []string {
	if zones != nil && zones.Healthy > allHealthyAbove {
		return []string{MsgAllHealthy}
	}

	if means.NDVI == nil && means.EVI == nil && means.NDWI == nil && means.NDRE == nil {
		return []string{MsgNoData}
	}

	var recs []string

	// Exactly one NDVI-tier message.
	if means.NDVI != nil {
		switch {
		case *means.NDVI < ndviStressedBelow:
			recs = append(recs, MsgNDVIStressed)
		case *means.NDVI > ndviHealthyAbove:
			recs = append(recs, MsgNDVIHealthy)
		default:
			recs = append(recs, MsgNDVIMonitor)
		}
	}

	if means.NDWI != nil {
		if *means.NDWI < ndwiDryBelow {
			recs = append(recs, MsgNDWIDry)
		} else if *means.NDWI > ndwiWetAbove {
			recs = append(recs, MsgNDWIWet)
		}
	}

	if means.NDRE != nil && *means.NDRE < ndreDeficientBelow {
		recs = append(recs, MsgNDREDeficient)
	}

	if means.EVI != nil && *means.EVI < eviSparseBelow {
		recs = append(recs, MsgEVISparse)
	}

	if len(recs) == 0 {
		recs = append(recs, MsgNoIssues)
	}

	return recs
}

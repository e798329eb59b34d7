package analysis

import "github.com/croplens/api/internal/models"

// HealthZones is the share of the field's sampled area in each health
// class, as rounded percentages. Independent per-class rounding means the
// three values may sum to 100±1; that drift is preserved, not corrected.
type HealthZones struct {
	Healthy  int `json:"healthy"`
	Moderate int `json:"moderate"`
	Stressed int `json:"stressed"`
}

// IndexMeans holds the mean value of each spectral index over the field.
// A nil entry means the reduction produced no usable pixels; the JSON
// output carries null, never NaN.
type IndexMeans struct {
	NDVI *float64
	EVI  *float64
	NDWI *float64
	NDRE *float64
}

// Summary is the numeric core of an analysis result.
type Summary struct {
	FieldAreaHectares float64      `json:"field_area_hectares"`
	AvgNDVI           *float64     `json:"avg_ndvi"`
	AvgEVI            *float64     `json:"avg_evi"`
	AvgNDWI           *float64     `json:"avg_ndwi"`
	AvgNDRE           *float64     `json:"avg_ndre"`
	HealthZones       *HealthZones `json:"health_zones"`
	Recommendations   []string     `json:"recommendations"`
	AnalysisDate      string       `json:"analysis_date"` // YYYY-MM-DD
	ImageCount        int          `json:"image_count"`
}

// Result is the full analysis payload embedded in a success envelope.
// GeoJSONOverlay is the authoritative overlay source; OverlayURL is
// reserved for a future raster overlay and is always null.
type Result struct {
	Summary        Summary                   `json:"summary"`
	GeoJSONOverlay *models.FeatureCollection `json:"geojson_overlay"`
	OverlayURL     *string                   `json:"overlay_url"`
}

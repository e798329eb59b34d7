package models

import (
	"encoding/json"
	"fmt"
)

// GeometryTypePolygon is the only GeoJSON geometry type the API accepts.
const GeometryTypePolygon = "Polygon"

// Geometry represents a GeoJSON Polygon geometry.
// Coordinates follow the GeoJSON structure: [rings][points][lon,lat].
// Positions are kept as variable-length slices rather than [2]float64 so the
// validator can reject positions that are not two-element pairs; encoding/json
// silently discards extra elements when decoding into fixed-size arrays.
type Geometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// OuterRing returns the polygon's outer boundary ring, or nil if the
// geometry has no rings.
func (g *Geometry) OuterRing() [][]float64 {
	if g == nil || len(g.Coordinates) == 0 {
		return nil
	}
	return g.Coordinates[0]
}

// UnmarshalJSON implements json.Unmarshaler for parsing GeoJSON input.
// Coordinates are taken as-is and validated separately by the fields package.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var geom struct {
		Type        string        `json:"type"`
		Coordinates [][][]float64 `json:"coordinates"`
	}

	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal geometry: %w", err)
	}

	g.Type = geom.Type
	g.Coordinates = geom.Coordinates

	return nil
}

// MarshalJSON implements json.Marshaler for API responses.
func (g Geometry) MarshalJSON() ([]byte, error) {
	geom := struct {
		Type        string        `json:"type"`
		Coordinates [][][]float64 `json:"coordinates"`
	}{
		Type:        g.Type,
		Coordinates: g.Coordinates,
	}
	return json.Marshal(geom)
}

// Feature is a GeoJSON Feature wrapping a single geometry.
// Properties carry arbitrary key/value pairs for overlay styling.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// FeatureCollection is a GeoJSON FeatureCollection.
// Features is kept non-nil so an empty collection marshals as [].
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection creates an empty FeatureCollection with the correct
// GeoJSON type tag.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
	}
}

package models

// FieldProperties carries the farmer-facing metadata attached to a drawn
// field boundary. Area is computed client-side at draw/edit time and is
// re-derived server-side before analysis; it is advisory input only.
type FieldProperties struct {
	Area *float64 `json:"area,omitempty"` // hectares
}

// Field is a GeoJSON Feature representing a drawn field boundary.
// It exists only for the duration of a session; the server never persists it.
type Field struct {
	Type       string           `json:"type"`
	Geometry   *Geometry        `json:"geometry"`
	Properties *FieldProperties `json:"properties,omitempty"`
}

// AreaHectares returns the client-computed area, or 0 when absent.
func (f *Field) AreaHectares() float64 {
	if f == nil || f.Properties == nil || f.Properties.Area == nil {
		return 0
	}
	return *f.Properties.Area
}

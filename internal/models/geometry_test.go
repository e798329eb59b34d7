package models

import (
	"encoding/json"
	"testing"
)

func TestGeometry_UnmarshalJSON(t *testing.T) {
	data := `{
		"type": "Polygon",
		"coordinates": [[[-95.5, 30.2], [-95.4, 30.2], [-95.4, 30.3], [-95.5, 30.2]]]
	}`

	var geom Geometry
	if err := json.Unmarshal([]byte(data), &geom); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if geom.Type != GeometryTypePolygon {
		t.Errorf("Expected type Polygon, got %s", geom.Type)
	}
	if len(geom.Coordinates) != 1 {
		t.Fatalf("Expected 1 ring, got %d", len(geom.Coordinates))
	}
	if len(geom.Coordinates[0]) != 4 {
		t.Errorf("Expected 4 points, got %d", len(geom.Coordinates[0]))
	}
	if geom.Coordinates[0][0][0] != -95.5 || geom.Coordinates[0][0][1] != 30.2 {
		t.Errorf("Unexpected first point: %v", geom.Coordinates[0][0])
	}
}

func TestGeometry_UnmarshalPreservesNonPairPositions(t *testing.T) {
	// A three-element position must survive decoding so the validator can
	// reject it; it must not be silently truncated to a pair.
	data := `{
		"type": "Polygon",
		"coordinates": [[[-95.5, 30.2, 120.5], [-95.4, 30.2], [-95.4, 30.3], [-95.5, 30.2]]]
	}`

	var geom Geometry
	if err := json.Unmarshal([]byte(data), &geom); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(geom.Coordinates[0][0]) != 3 {
		t.Errorf("Expected 3-element position to be preserved, got %v", geom.Coordinates[0][0])
	}
}

func TestGeometry_UnmarshalInvalidJSON(t *testing.T) {
	var geom Geometry
	if err := json.Unmarshal([]byte(`{"type": "Polygon", "coordinates": "oops"}`), &geom); err == nil {
		t.Error("Expected error for malformed coordinates")
	}
}

func TestGeometry_MarshalRoundTrip(t *testing.T) {
	geom := Geometry{
		Type: "Polygon",
		Coordinates: [][][]float64{
			{{-95.5, 30.2}, {-95.4, 30.2}, {-95.4, 30.3}, {-95.5, 30.2}},
		},
	}

	data, err := json.Marshal(geom)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Geometry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.Type != geom.Type {
		t.Errorf("Type changed in round trip: %s", decoded.Type)
	}
	if len(decoded.Coordinates[0]) != len(geom.Coordinates[0]) {
		t.Errorf("Point count changed in round trip")
	}
}

func TestGeometry_OuterRing(t *testing.T) {
	geom := &Geometry{
		Type: "Polygon",
		Coordinates: [][][]float64{
			{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
			{{0.2, 0.2}, {0.8, 0.2}, {0.8, 0.8}, {0.2, 0.2}},
		},
	}

	ring := geom.OuterRing()
	if len(ring) != 4 {
		t.Fatalf("Expected 4 points in outer ring, got %d", len(ring))
	}
	if ring[1][0] != 1 || ring[1][1] != 0 {
		t.Errorf("Unexpected outer ring point: %v", ring[1])
	}
}

func TestGeometry_OuterRingEmpty(t *testing.T) {
	if ring := (&Geometry{Type: "Polygon"}).OuterRing(); ring != nil {
		t.Errorf("Expected nil ring for empty coordinates, got %v", ring)
	}

	var nilGeom *Geometry
	if ring := nilGeom.OuterRing(); ring != nil {
		t.Errorf("Expected nil ring for nil geometry, got %v", ring)
	}
}

func TestNewFeatureCollection(t *testing.T) {
	fc := NewFeatureCollection()

	if fc.Type != "FeatureCollection" {
		t.Errorf("Expected type FeatureCollection, got %s", fc.Type)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// An empty collection marshals with features: [], not null.
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if string(decoded["features"]) != "[]" {
		t.Errorf("Expected empty features array, got %s", decoded["features"])
	}
}

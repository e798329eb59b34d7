package geo

import (
	"math"
	"testing"
)

// ring builds a [][]float64 ring from flat lng/lat pairs.
func ring(coords ...float64) [][]float64 {
	r := make([][]float64, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		r = append(r, []float64{coords[i], coords[i+1]})
	}
	return r
}

// TestAreaHectares_DegenerateRings verifies that incomplete polygons return
// exactly 0 rather than an error.
func TestAreaHectares_DegenerateRings(t *testing.T) {
	tests := []struct {
		name string
		ring [][]float64
	}{
		{name: "nil ring", ring: nil},
		{name: "empty ring", ring: ring()},
		{name: "single point", ring: ring(10, 50)},
		{name: "two points", ring: ring(10, 50, 10.1, 50)},
		{name: "three points", ring: ring(10, 50, 10.1, 50, 10.1, 50.1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AreaHectares(tt.ring); got != 0 {
				t.Errorf("expected exactly 0 for %s, got %g", tt.name, got)
			}
		})
	}
}

// TestAreaHectares_ReferenceValue pins the planar formula against a
// hand-computed value for a 0.01°x0.01° square at the equator.
func TestAreaHectares_ReferenceValue(t *testing.T) {
	square := ring(0, 0, 0.01, 0, 0.01, 0.01, 0, 0.01, 0, 0)

	// Shoelace area: 0.0001 square degrees. Mean latitude over the five
	// vertices is 0.004°. Expected:
	// 0.0001 * 111320^2 * cos(0.004°) / 10000 ha.
	meanLat := 0.004 * math.Pi / 180
	want := 0.0001 * 111320 * 111320 * math.Cos(meanLat) / 10000

	got := AreaHectares(square)
	if relDiff(got, want) > 1e-12 {
		t.Errorf("reference area mismatch: got %.10f ha, want %.10f ha", got, want)
	}

	// Sanity: roughly 124 hectares for ~1.1 km squared.
	if got < 120 || got > 128 {
		t.Errorf("reference area implausible: %.2f ha", got)
	}
}

// TestAreaHectares_HighLatitudeShrinks verifies the cos(latitude)
// correction: the same degree-square covers fewer hectares at 60°N.
func TestAreaHectares_HighLatitudeShrinks(t *testing.T) {
	equator := ring(0, 0, 0.01, 0, 0.01, 0.01, 0, 0.01, 0, 0)
	north := ring(0, 60, 0.01, 60, 0.01, 60.01, 0, 60.01, 0, 60)

	areaEquator := AreaHectares(equator)
	areaNorth := AreaHectares(north)

	if areaNorth >= areaEquator {
		t.Errorf("expected smaller area at 60°N: equator=%.2f, north=%.2f", areaEquator, areaNorth)
	}

	// Should be close to cos(60°) = 0.5 of the equatorial area.
	ratio := areaNorth / areaEquator
	if ratio < 0.49 || ratio > 0.51 {
		t.Errorf("expected ratio near 0.5, got %.4f", ratio)
	}
}

// TestAreaHectares_ReversalInvariance verifies the absolute-value shoelace:
// winding order must not affect the result.
func TestAreaHectares_ReversalInvariance(t *testing.T) {
	rings := [][][]float64{
		ring(0, 0, 0.01, 0, 0.01, 0.01, 0, 0.01, 0, 0),
		ring(-95.5, 30.2, -95.4, 30.2, -95.4, 30.3, -95.5, 30.3, -95.5, 30.2),
		ring(77.1, 28.5, 77.15, 28.52, 77.12, 28.56, 77.08, 28.53, 77.1, 28.5),
	}

	for _, r := range rings {
		forward := AreaHectares(r)

		reversed := make([][]float64, len(r))
		for i := range r {
			reversed[i] = r[len(r)-1-i]
		}
		backward := AreaHectares(reversed)

		if forward < 0 {
			t.Errorf("area must be non-negative, got %g", forward)
		}
		if forward != backward {
			t.Errorf("area not invariant under reversal: %g vs %g", forward, backward)
		}
	}
}

// TestAreaHectares_Deterministic verifies identical input yields identical
// output bit for bit.
func TestAreaHectares_Deterministic(t *testing.T) {
	r := ring(-95.5, 30.2, -95.4, 30.2, -95.4, 30.3, -95.5, 30.3, -95.5, 30.2)

	first := AreaHectares(r)
	for i := 0; i < 100; i++ {
		if got := AreaHectares(r); got != first {
			t.Fatalf("non-deterministic result on iteration %d: %g vs %g", i, got, first)
		}
	}
}

func relDiff(a, b float64) float64 {
	if b == 0 {
		return math.Abs(a)
	}
	return math.Abs(a-b) / math.Abs(b)
}

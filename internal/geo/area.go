// Package geo provides the planar polygon area computation used for field
// sizing. The formula is intentionally a flat-earth approximation corrected
// for latitude; it matches the client-side computation byte for byte and is
// the reference behavior for area validation, so it must not be swapped for
// a geodesic variant.
package geo

import "math"

const (
	// metersPerDegree is the approximate length of one degree of latitude
	// at the WGS84 ellipsoid surface.
	metersPerDegree = 111320.0

	// squareMetersPerHectare converts m² to ha.
	squareMetersPerHectare = 10000.0
)

// AreaHectares computes the area of a polygon ring in hectares.
//
// The ring is a sequence of [lon, lat] positions. Rings with fewer than four
// points return 0: an incomplete polygon is normal input while the user is
// still drawing, not an error.
//
// The computation is a planar shoelace sum in square degrees, scaled by the
// meters-per-degree factor squared and by cos(mean latitude) to account for
// meridian convergence. It degrades for very large or very high-latitude
// polygons; that limitation is accepted.
func AreaHectares(ring [][]float64) float64 {
	if len(ring) < 4 {
		return 0
	}

	// Shoelace sum over consecutive vertex pairs, wrapping to the first.
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	squareDegrees := math.Abs(sum) / 2

	// Scale square degrees to square meters at the ring's mean latitude.
	var latSum float64
	for _, pt := range ring {
		latSum += pt[1]
	}
	meanLatRadians := (latSum / float64(len(ring))) * math.Pi / 180

	squareMeters := squareDegrees * metersPerDegree * metersPerDegree * math.Cos(meanLatRadians)

	return squareMeters / squareMetersPerHectare
}

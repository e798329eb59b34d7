// Package fields validates drawn field boundaries before they are analyzed.
// The same structural checks run client-side (cmd/analyze) before submission
// and server-side before any provider call; the server never trusts the
// client's validation.
package fields

import (
	"errors"
	"fmt"

	"github.com/croplens/api/internal/models"
)

// Coordinate validation constants.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Accepted field area range in hectares. Enforced pre-submission only; the
// server re-derives area for reporting but does not gate on it.
const (
	MinAreaHectares = 0.1
	MaxAreaHectares = 10000.0
)

// MinRingPoints is the minimum vertex count for a closed polygon ring
// (first == last conceptually; closure is not re-verified beyond length).
const MinRingPoints = 4

// Validation errors.
var (
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrAreaOutOfRange  = errors.New("field area out of range")
)

// ValidateGeometry checks a geometry for structural validity: presence,
// Polygon type, minimum outer-ring length, and coordinate bounds. Checks
// short-circuit on the first failure and the returned error names the
// offending value.
func ValidateGeometry(g *models.Geometry) error {
	if g == nil {
		return fmt.Errorf("%w: geometry is required", ErrInvalidGeometry)
	}

	if g.Type != models.GeometryTypePolygon {
		return fmt.Errorf("%w: geometry type must be %q, got %q",
			ErrInvalidGeometry, models.GeometryTypePolygon, g.Type)
	}

	ring := g.OuterRing()
	if len(ring) < MinRingPoints {
		return fmt.Errorf("%w: polygon outer ring must have at least %d points, got %d",
			ErrInvalidGeometry, MinRingPoints, len(ring))
	}

	for i, pt := range ring {
		if len(pt) != 2 {
			return fmt.Errorf("%w: coordinate %d must be a [longitude, latitude] pair, got %d elements",
				ErrInvalidGeometry, i, len(pt))
		}
		lng, lat := pt[0], pt[1]
		if lng < MinLongitude || lng > MaxLongitude {
			return fmt.Errorf("%w: longitude must be between %g and %g, got %g",
				ErrInvalidGeometry, MinLongitude, MaxLongitude, lng)
		}
		if lat < MinLatitude || lat > MaxLatitude {
			return fmt.Errorf("%w: latitude must be between %g and %g, got %g",
				ErrInvalidGeometry, MinLatitude, MaxLatitude, lat)
		}
	}

	return nil
}

// ValidateField runs the full pre-submission check: geometry structure plus
// the business area gate. The area message reports one decimal place so the
// user sees the same number the drawing layer displayed.
func ValidateField(f *models.Field) error {
	if f == nil {
		return fmt.Errorf("%w: field is required", ErrInvalidGeometry)
	}

	if err := ValidateGeometry(f.Geometry); err != nil {
		return err
	}

	area := f.AreaHectares()
	if area < MinAreaHectares || area > MaxAreaHectares {
		return fmt.Errorf("%w: field area %.1f ha is outside the supported range of %g-%g ha",
			ErrAreaOutOfRange, area, MinAreaHectares, MaxAreaHectares)
	}

	return nil
}

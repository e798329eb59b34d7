// Package provider defines the imagery-provider abstraction the analysis
// orchestrator consumes. A provider owns an authenticated session with a
// remote geospatial platform and answers scalar and histogram reductions
// over a bounded, cloud-filtered image composite.
package provider

import (
	"context"
	"time"

	"github.com/croplens/api/internal/models"
)

// Index identifies a spectral index computed from satellite band
// reflectance.
type Index string

const (
	IndexNDVI Index = "NDVI" // vegetation vigor, (B8-B4)/(B8+B4)
	IndexEVI  Index = "EVI"  // enhanced vegetation, three-band weighted expression
	IndexNDWI Index = "NDWI" // water content, (B3-B8)/(B3+B8)
	IndexNDRE Index = "NDRE" // red-edge nutrient/stress, (B8-B5)/(B8+B5)
)

// DateWindow bounds the image collection in time.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// LastDays returns a window ending now and starting the given number of
// days earlier.
func LastDays(days int) DateWindow {
	end := time.Now().UTC()
	return DateWindow{
		Start: end.AddDate(0, 0, -days),
		End:   end,
	}
}

// Composite references a provider-side image composite built for one
// analysis. The Ref is opaque to callers; ImageCount reports how many scenes
// matched the bounds, window, and cloud filter.
type Composite struct {
	Ref        string
	ImageCount int
}

// Histogram is a fixed-bucket histogram of index values sampled over the
// polygon. BucketMeans and Counts are parallel slices.
type Histogram struct {
	BucketMeans []float64
	Counts      []float64
}

// TotalCount returns the total number of sampled pixels across all buckets.
func (h *Histogram) TotalCount() float64 {
	if h == nil {
		return 0
	}
	var total float64
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// ImageryProvider is the query surface the orchestrator uses. Mean and
// histogram reductions over the same composite are independent and may be
// invoked concurrently.
type ImageryProvider interface {
	// Composite builds a cloud-filtered composite over the polygon for the
	// given window. ImageCount of 0 is not an error; the orchestrator maps
	// it to the no-data result.
	Composite(ctx context.Context, geom *models.Geometry, window DateWindow, maxCloudPct int) (*Composite, error)

	// MeanIndex reduces the index to its mean over the polygon. Returns
	// nil (not NaN) when the reduction produced no usable pixels.
	MeanIndex(ctx context.Context, comp *Composite, geom *models.Geometry, index Index) (*float64, error)

	// IndexHistogram reduces the index to a histogram over the polygon for
	// zone derivation. Returns nil when no usable pixels were sampled.
	IndexHistogram(ctx context.Context, comp *Composite, geom *models.Geometry, index Index) (*Histogram, error)
}

// Package analysis orchestrates a field vegetation analysis: geometry
// re-validation, index reductions against the imagery provider, health-zone
// derivation, and recommendation assembly.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/croplens/api/internal/fields"
	"github.com/croplens/api/internal/geo"
	"github.com/croplens/api/internal/logger"
	"github.com/croplens/api/internal/models"
	"github.com/croplens/api/internal/provider"
)

// Analysis window parameters, matching the imagery the drawing UI promises
// its users: the most recent month of acquisitions with low cloud cover.
const (
	windowDays  = 30
	maxCloudPct = 20
)

// Service-level errors. Validation failures wrap fields.ErrInvalidGeometry
// and carry a caller-safe reason; the two below mark the 500-equivalent
// paths whose details must not reach the client.
var (
	// ErrProviderUnavailable means the imagery provider credentials were
	// never configured. Precondition failure, not retryable.
	ErrProviderUnavailable = errors.New("imagery provider is not configured")

	// ErrUpstream wraps any failure talking to the imagery provider.
	ErrUpstream = errors.New("imagery provider request failed")
)

// Recorder persists completed analyses. Recording is best-effort; the
// orchestrator never fails a request over it.
type Recorder interface {
	Record(ctx context.Context, geom *models.Geometry, result *Result) error
}

// Service defines the analysis orchestration contract.
type Service interface {
	// Analyze validates the geometry, queries the imagery provider, and
	// assembles the analysis result. Returns an error wrapping
	// fields.ErrInvalidGeometry for bad input, ErrProviderUnavailable when
	// credentials are missing, and ErrUpstream for provider failures.
	Analyze(ctx context.Context, geom *models.Geometry) (*Result, error)
}

type service struct {
	provider provider.ImageryProvider
	recorder Recorder
	log      *logger.Logger
}

// NewService creates the analysis service. provider may be nil when
// credentials are not configured; recorder may be nil when history
// persistence is disabled.
func NewService(p provider.ImageryProvider, recorder Recorder, log *logger.Logger) Service {
	return &service{
		provider: p,
		recorder: recorder,
		log:      log,
	}
}

// Analyze runs one full analysis. Each call is a pure function of the
// geometry and the provider's current data; nothing is cached across
// requests and concurrent calls share no mutable state.
func (s *service) Analyze(ctx context.Context, geom *models.Geometry) (*Result, error) {
	// Never trust the client's validation.
	if err := fields.ValidateGeometry(geom); err != nil {
		s.log.Warn("Rejected field geometry", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, err
	}

	if s.provider == nil {
		return nil, fmt.Errorf("%w: missing credentials", ErrProviderUnavailable)
	}

	areaHectares := geo.AreaHectares(geom.OuterRing())
	window := provider.LastDays(windowDays)

	s.log.Info("Analyzing field", map[string]interface{}{
		"area_hectares": areaHectares,
		"window_start":  window.Start.Format("2006-01-02"),
		"window_end":    window.End.Format("2006-01-02"),
	})

	comp, err := s.provider.Composite(ctx, geom, window, maxCloudPct)
	if err != nil {
		s.log.Error("Failed to build image composite", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	// The four mean reductions and the histogram read disjoint bands of
	// the same composite; issue them concurrently and join before any
	// derivation. With zero matching scenes there is nothing to reduce and
	// the result falls through to the no-data path.
	var means IndexMeans
	var hist *provider.Histogram

	if comp.ImageCount > 0 {
		g, gctx := errgroup.WithContext(ctx)

		for _, r := range []struct {
			index provider.Index
			dst   **float64
		}{
			{provider.IndexNDVI, &means.NDVI},
			{provider.IndexEVI, &means.EVI},
			{provider.IndexNDWI, &means.NDWI},
			{provider.IndexNDRE, &means.NDRE},
		} {
			r := r
			g.Go(func() error {
				value, err := s.provider.MeanIndex(gctx, comp, geom, r.index)
				if err != nil {
					return err
				}
				*r.dst = value
				return nil
			})
		}

		g.Go(func() error {
			h, err := s.provider.IndexHistogram(gctx, comp, geom, provider.IndexNDVI)
			if err != nil {
				return err
			}
			hist = h
			return nil
		})

		if err := g.Wait(); err != nil {
			s.log.Error("Index reduction failed", err, map[string]interface{}{
				"image_count": comp.ImageCount,
			})
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	zones := DeriveHealthZones(hist)
	recommendations := Recommend(means, zones)

	result := &Result{
		Summary: Summary{
			FieldAreaHectares: roundTo(areaHectares, 2),
			AvgNDVI:           roundPtr(means.NDVI, 3),
			AvgEVI:            roundPtr(means.EVI, 3),
			AvgNDWI:           roundPtr(means.NDWI, 3),
			AvgNDRE:           roundPtr(means.NDRE, 3),
			HealthZones:       zones,
			Recommendations:   recommendations,
			AnalysisDate:      window.End.Format("2006-01-02"),
			ImageCount:        comp.ImageCount,
		},
		GeoJSONOverlay: buildOverlay(geom, zones),
	}

	s.log.Info("Field analysis complete", map[string]interface{}{
		"area_hectares":   result.Summary.FieldAreaHectares,
		"image_count":     result.Summary.ImageCount,
		"recommendations": len(result.Summary.Recommendations),
		"has_zones":       zones != nil,
	})

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, geom, result); err != nil {
			s.log.Warn("Failed to record analysis", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return result, nil
}

// buildOverlay echoes the analyzed polygon as a FeatureCollection for map
// overlay coloring, tagging it with the zone distribution when present.
func buildOverlay(geom *models.Geometry, zones *HealthZones) *models.FeatureCollection {
	fc := models.NewFeatureCollection()

	feature := models.Feature{
		Type:     "Feature",
		Geometry: geom,
	}
	if zones != nil {
		feature.Properties = map[string]interface{}{
			"health_zones": zones,
		}
	}
	fc.Features = append(fc.Features, feature)

	return fc
}

func roundTo(value float64, places int) float64 {
	rounded, err := stats.Round(value, places)
	if err != nil {
		return value
	}
	return rounded
}

func roundPtr(value *float64, places int) *float64 {
	if value == nil {
		return nil
	}
	rounded := roundTo(*value, places)
	return &rounded
}

// Command analyze validates a field boundary from a GeoJSON file and
// submits it to a running CropLens API for analysis. It mirrors what the
// map frontend does: compute the area locally, gate on the validator, then
// post the geometry and print the returned summary.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/croplens/api/internal/analysis"
	"github.com/croplens/api/internal/client"
	"github.com/croplens/api/internal/config"
	"github.com/croplens/api/internal/fields"
	"github.com/croplens/api/internal/geo"
	"github.com/croplens/api/internal/logger"
	"github.com/croplens/api/internal/models"
)

func main() {
	var (
		file   = flag.String("file", "", "path to a GeoJSON Feature or Polygon geometry")
		server = flag.String("server", "", "analysis API base URL (defaults to API_BASE_URL)")
	)
	flag.Parse()

	log := logger.New("development")

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -file field.geojson [-server http://localhost:8080]")
		os.Exit(2)
	}

	baseURL := *server
	if baseURL == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatal("Failed to load configuration", err, nil)
		}
		baseURL = cfg.Client.BaseURL
	}

	field, err := loadField(*file)
	if err != nil {
		log.Fatal("Failed to load field", err, map[string]interface{}{"file": *file})
	}

	// Pre-submission validation, the same gate the drawing UI applies.
	if err := fields.ValidateField(field); err != nil {
		log.Fatal("Field failed validation", err, nil)
	}

	log.Info("Submitting field for analysis", map[string]interface{}{
		"server":        baseURL,
		"area_hectares": field.AreaHectares(),
	})

	c := client.New(baseURL)
	result, err := c.Submit(context.Background(), field.Geometry, field.Properties)
	if err != nil {
		var clientErr *client.Error
		if errors.As(err, &clientErr) {
			log.Fatal("Analysis failed", err, map[string]interface{}{
				"kind": clientErr.Kind.String(),
			})
		}
		log.Fatal("Analysis failed", err, nil)
	}

	printSummary(result.Summary)
}

// loadField reads a GeoJSON Feature or bare Polygon geometry and normalizes
// it into a Field with a locally computed area.
func loadField(path string) (*models.Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var field models.Field
	if err := json.Unmarshal(data, &field); err == nil && field.Type == "Feature" && field.Geometry != nil {
		ensureArea(&field)
		return &field, nil
	}

	var geom models.Geometry
	if err := json.Unmarshal(data, &geom); err != nil {
		return nil, fmt.Errorf("failed to parse %s as GeoJSON: %w", path, err)
	}

	field = models.Field{Type: "Feature", Geometry: &geom}
	ensureArea(&field)
	return &field, nil
}

// ensureArea fills properties.area from the local planar computation when
// the file did not carry one.
func ensureArea(field *models.Field) {
	if field.Properties == nil {
		field.Properties = &models.FieldProperties{}
	}
	if field.Properties.Area == nil {
		area := geo.AreaHectares(field.Geometry.OuterRing())
		field.Properties.Area = &area
	}
}

func printSummary(s analysis.Summary) {
	fmt.Printf("Analysis date:   %s\n", s.AnalysisDate)
	fmt.Printf("Field area:      %.2f ha\n", s.FieldAreaHectares)
	fmt.Printf("Images used:     %d\n", s.ImageCount)
	fmt.Printf("NDVI: %s  EVI: %s  NDWI: %s  NDRE: %s\n",
		formatIndex(s.AvgNDVI), formatIndex(s.AvgEVI),
		formatIndex(s.AvgNDWI), formatIndex(s.AvgNDRE))

	if s.HealthZones != nil {
		fmt.Printf("Health zones:    %d%% healthy / %d%% moderate / %d%% stressed\n",
			s.HealthZones.Healthy, s.HealthZones.Moderate, s.HealthZones.Stressed)
	} else {
		fmt.Println("Health zones:    no usable sample data")
	}

	fmt.Println("Recommendations:")
	for _, rec := range s.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
}

func formatIndex(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *v)
}

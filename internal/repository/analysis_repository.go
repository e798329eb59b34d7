package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/croplens/api/internal/analysis"
	"github.com/croplens/api/internal/database"
	"github.com/croplens/api/internal/models"
)

// AnalysisRecord is one persisted analysis. Zones and recommendations are
// stored as JSON; the geometry is the analyzed GeoJSON polygon.
type AnalysisRecord struct {
	ID              uuid.UUID             `json:"id"`
	CreatedAt       time.Time             `json:"created_at"`
	AreaHectares    float64               `json:"area_hectares"`
	AvgNDVI         *float64              `json:"avg_ndvi"`
	AvgEVI          *float64              `json:"avg_evi"`
	AvgNDWI         *float64              `json:"avg_ndwi"`
	AvgNDRE         *float64              `json:"avg_ndre"`
	HealthZones     *analysis.HealthZones `json:"health_zones"`
	Recommendations []string              `json:"recommendations"`
	ImageCount      int                   `json:"image_count"`
	Geometry        *models.Geometry      `json:"geometry"`
}

// AnalysisRepository persists completed analyses and lists recent ones.
// It is a record of work done, never a cache: analysis reads do not
// consult it.
type AnalysisRepository interface {
	// Record stores one completed analysis.
	Record(ctx context.Context, geom *models.Geometry, result *analysis.Result) error

	// Recent returns the most recent analyses, newest first.
	// Returns an empty slice when none exist (not an error).
	Recent(ctx context.Context, limit int) ([]AnalysisRecord, error)
}

type analysisRepository struct {
	db *database.Database
}

// NewAnalysisRepository creates an AnalysisRepository backed by the given
// database.
func NewAnalysisRepository(db *database.Database) AnalysisRepository {
	return &analysisRepository{db: db}
}

// EnsureSchema creates the analyses table when it does not exist yet.
// Called once at startup; this service owns its table.
func EnsureSchema(ctx context.Context, db *database.Database) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS analyses (
			id              UUID PRIMARY KEY,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			area_hectares   DOUBLE PRECISION NOT NULL,
			avg_ndvi        DOUBLE PRECISION,
			avg_evi         DOUBLE PRECISION,
			avg_ndwi        DOUBLE PRECISION,
			avg_ndre        DOUBLE PRECISION,
			health_zones    JSONB,
			recommendations JSONB NOT NULL,
			image_count     INTEGER NOT NULL,
			geometry        JSONB NOT NULL
		)
	`

	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure analyses schema: %w", err)
	}
	return nil
}

// Record inserts one completed analysis row.
func (r *analysisRepository) Record(ctx context.Context, geom *models.Geometry, result *analysis.Result) error {
	zonesJSON, err := marshalNullable(result.Summary.HealthZones)
	if err != nil {
		return fmt.Errorf("failed to encode health zones: %w", err)
	}

	recsJSON, err := json.Marshal(result.Summary.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}

	geomJSON, err := json.Marshal(geom)
	if err != nil {
		return fmt.Errorf("failed to encode geometry: %w", err)
	}

	const query = `
		INSERT INTO analyses (
			id, area_hectares, avg_ndvi, avg_evi, avg_ndwi, avg_ndre,
			health_zones, recommendations, image_count, geometry
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		uuid.New(),
		result.Summary.FieldAreaHectares,
		result.Summary.AvgNDVI,
		result.Summary.AvgEVI,
		result.Summary.AvgNDWI,
		result.Summary.AvgNDRE,
		zonesJSON,
		recsJSON,
		result.Summary.ImageCount,
		geomJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis record: %w", err)
	}

	return nil
}

// Recent lists the newest analyses up to limit.
func (r *analysisRepository) Recent(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	const query = `
		SELECT
			id, created_at, area_hectares, avg_ndvi, avg_evi, avg_ndwi,
			avg_ndre, health_zones, recommendations, image_count, geometry
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent analyses: %w", err)
	}
	defer rows.Close()

	records := []AnalysisRecord{}
	for rows.Next() {
		var rec AnalysisRecord
		var zonesJSON, recsJSON, geomJSON []byte

		err := rows.Scan(
			&rec.ID,
			&rec.CreatedAt,
			&rec.AreaHectares,
			&rec.AvgNDVI,
			&rec.AvgEVI,
			&rec.AvgNDWI,
			&rec.AvgNDRE,
			&zonesJSON,
			&recsJSON,
			&rec.ImageCount,
			&geomJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}

		if len(zonesJSON) > 0 {
			if err := json.Unmarshal(zonesJSON, &rec.HealthZones); err != nil {
				return nil, fmt.Errorf("failed to parse health zones for analysis %s: %w", rec.ID, err)
			}
		}
		if err := json.Unmarshal(recsJSON, &rec.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to parse recommendations for analysis %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal(geomJSON, &rec.Geometry); err != nil {
			return nil, fmt.Errorf("failed to parse geometry for analysis %s: %w", rec.ID, err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis rows: %w", err)
	}

	return records, nil
}

// marshalNullable encodes a value to JSON, mapping nil to SQL NULL.
func marshalNullable(v *analysis.HealthZones) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

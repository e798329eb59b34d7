// Package earthengine implements the imagery provider against the Earth
// Engine REST API using service-account authentication. Each reduction is a
// stateless value:compute call carrying the full expression graph, so the
// composite "reference" handed back to callers is just the serialized
// filter parameters.
package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/croplens/api/internal/models"
	"github.com/croplens/api/internal/provider"
)

const (
	defaultBaseURL = "https://earthengine.googleapis.com/v1"

	// collectionID is the Sentinel-2 surface reflectance collection.
	collectionID = "COPERNICUS/S2_SR"

	// cloudProperty is the scene metadata property used for cloud filtering.
	cloudProperty = "CLOUDY_PIXEL_PERCENTAGE"

	// scaleMeters is the ground sampling distance for all reductions.
	scaleMeters = 10

	maxPixels = 1e9

	histogramMin   = -1.0
	histogramMax   = 1.0
	histogramSteps = 32

	requestTimeout = 40 * time.Second
)

// Config carries the service-account credentials and optional endpoint
// overrides (used by tests).
type Config struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string

	BaseURL  string
	TokenURL string
}

// Client is the Earth Engine implementation of provider.ImageryProvider.
type Client struct {
	projectID  string
	baseURL    string
	tokens     *tokenSource
	httpClient *http.Client
}

var _ provider.ImageryProvider = (*Client)(nil)

// New builds an authenticated Earth Engine client. It fails fast on an
// unparseable private key; network credentials are only exercised on the
// first compute call.
func New(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" || cfg.ClientEmail == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("earth engine credentials are not configured")
	}

	httpClient := &http.Client{Timeout: requestTimeout}

	tokens, err := newTokenSource(cfg.ClientEmail, cfg.PrivateKey, cfg.TokenURL, httpClient)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		projectID:  cfg.ProjectID,
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: httpClient,
	}, nil
}

// compositeSpec is the serialized form of a composite's filter parameters.
// It round-trips through Composite.Ref so every reduction can rebuild the
// same expression graph.
type compositeSpec struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	MaxCloudPct int    `json:"max_cloud_pct"`
}

// Composite counts the scenes matching the polygon, window, and cloud
// filter, and returns a reference reductions can reuse.
func (c *Client) Composite(ctx context.Context, geom *models.Geometry, window provider.DateWindow, maxCloudPct int) (*provider.Composite, error) {
	spec := compositeSpec{
		Start:       window.Start.UTC().Format("2006-01-02"),
		End:         window.End.UTC().Format("2006-01-02"),
		MaxCloudPct: maxCloudPct,
	}

	var count int
	if err := c.compute(ctx, collectionSize(geom, spec), &count); err != nil {
		return nil, fmt.Errorf("failed to size image collection: %w", err)
	}

	ref, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode composite spec: %w", err)
	}

	return &provider.Composite{
		Ref:        string(ref),
		ImageCount: count,
	}, nil
}

// MeanIndex reduces the index to its mean over the polygon. A null value in
// the reduction result (no usable pixels) comes back as nil, not an error.
func (c *Client) MeanIndex(ctx context.Context, comp *provider.Composite, geom *models.Geometry, index provider.Index) (*float64, error) {
	spec, err := decodeSpec(comp)
	if err != nil {
		return nil, err
	}

	var result map[string]*float64
	if err := c.compute(ctx, meanReduction(geom, spec, index), &result); err != nil {
		return nil, fmt.Errorf("failed to reduce %s mean: %w", index, err)
	}

	return result[string(index)], nil
}

// IndexHistogram reduces the index to a fixed-bucket histogram over the
// polygon. The reducer returns rows of [bucketStart, count]; bucket means
// are taken at bucket centers.
func (c *Client) IndexHistogram(ctx context.Context, comp *provider.Composite, geom *models.Geometry, index provider.Index) (*provider.Histogram, error) {
	spec, err := decodeSpec(comp)
	if err != nil {
		return nil, err
	}

	var result map[string][][]float64
	if err := c.compute(ctx, histogramReduction(geom, spec, index), &result); err != nil {
		return nil, fmt.Errorf("failed to reduce %s histogram: %w", index, err)
	}

	rows := result[string(index)]
	if len(rows) == 0 {
		return nil, nil
	}

	halfStep := (histogramMax - histogramMin) / float64(histogramSteps) / 2
	hist := &provider.Histogram{
		BucketMeans: make([]float64, 0, len(rows)),
		Counts:      make([]float64, 0, len(rows)),
	}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		hist.BucketMeans = append(hist.BucketMeans, row[0]+halfStep)
		hist.Counts = append(hist.Counts, row[1])
	}

	return hist, nil
}

func decodeSpec(comp *provider.Composite) (compositeSpec, error) {
	var spec compositeSpec
	if comp == nil {
		return spec, fmt.Errorf("composite reference is required")
	}
	if err := json.Unmarshal([]byte(comp.Ref), &spec); err != nil {
		return spec, fmt.Errorf("failed to decode composite reference: %w", err)
	}
	return spec, nil
}

// compute posts an expression graph to the value:compute endpoint and
// decodes the result field into out.
func (c *Client) compute(ctx context.Context, root node, out interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(expressionBody(root))
	if err != nil {
		return fmt.Errorf("failed to marshal expression: %w", err)
	}

	url := fmt.Sprintf("%s/projects/%s/value:compute", c.baseURL, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build compute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("compute call failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("compute returned %s: %s", resp.Status, string(data))
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to decode compute response: %w", err)
	}

	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("failed to decode compute result: %w", err)
	}

	return nil
}

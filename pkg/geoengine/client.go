// Package geoengine is a thin client for the hosted geospatial computation
// engine: raster assets, stratified sampling, grouped reductions, and the
// built-in ensemble classifier. The engine owns all heavy computation; this
// client only ships requests and decodes responses.
package geoengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client is the capability surface of the compute engine used by the
// pipeline. Implementations must not retry: the engine gives no idempotence
// guarantee, so failures propagate to the caller unmodified.
type Client interface {
	// FetchRaster fetches an immutable raster asset by identifier.
	FetchRaster(ctx context.Context, assetID string) (*RasterPayload, error)

	// Sample draws a stratified point sample from an image over a region.
	Sample(ctx context.Context, req SampleRequest) ([]Record, error)

	// ReduceByGroup runs a grouped reduction over a region.
	ReduceByGroup(ctx context.Context, req ReduceRequest) ([]GroupResult, error)

	// Train trains the engine's ensemble classifier on labeled records.
	Train(ctx context.Context, req TrainRequest) (ModelRef, error)

	// Apply applies a trained model to unlabeled records, returning one
	// predicted label per record in input order.
	Apply(ctx context.Context, model ModelRef, records []Record) ([]int, error)

	// Classify applies a trained model to every cell of an image, returning
	// a categorical raster of predicted labels.
	Classify(ctx context.Context, model ModelRef, img ImagePayload) (*RasterPayload, error)
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithBaseURL overrides the engine endpoint.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithRateLimit sets the requests-per-second limit for engine calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) { c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)) }
}

type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an engine client with the given API key and options.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey: apiKey,
		// Training and whole-image classification are slow server-side.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) FetchRaster(ctx context.Context, assetID string) (*RasterPayload, error) {
	var out RasterPayload
	if err := c.do(ctx, http.MethodGet, "/v1/rasters/"+assetID, nil, &out); err != nil {
		return nil, eris.Wrapf(err, "geoengine: fetch raster %s", assetID)
	}
	return &out, nil
}

func (c *client) Sample(ctx context.Context, req SampleRequest) ([]Record, error) {
	var out struct {
		Records []Record `json:"records"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/sample", req, &out); err != nil {
		return nil, eris.Wrap(err, "geoengine: sample")
	}
	return out.Records, nil
}

func (c *client) ReduceByGroup(ctx context.Context, req ReduceRequest) ([]GroupResult, error) {
	var out struct {
		Groups []GroupResult `json:"groups"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/reduce", req, &out); err != nil {
		return nil, eris.Wrap(err, "geoengine: reduce")
	}
	return out.Groups, nil
}

func (c *client) Train(ctx context.Context, req TrainRequest) (ModelRef, error) {
	var out ModelRef
	if err := c.do(ctx, http.MethodPost, "/v1/models/train", req, &out); err != nil {
		return ModelRef{}, eris.Wrap(err, "geoengine: train")
	}
	return out, nil
}

func (c *client) Apply(ctx context.Context, model ModelRef, records []Record) ([]int, error) {
	in := struct {
		Records []Record `json:"records"`
	}{Records: records}
	var out struct {
		Labels []int `json:"labels"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/models/"+model.ID+"/apply", in, &out); err != nil {
		return nil, eris.Wrap(err, "geoengine: apply")
	}
	if len(out.Labels) != len(records) {
		return nil, eris.Errorf("geoengine: apply returned %d labels for %d records", len(out.Labels), len(records))
	}
	return out.Labels, nil
}

func (c *client) Classify(ctx context.Context, model ModelRef, img ImagePayload) (*RasterPayload, error) {
	var out RasterPayload
	if err := c.do(ctx, http.MethodPost, "/v1/models/"+model.ID+"/classify", img, &out); err != nil {
		return nil, eris.Wrap(err, "geoengine: classify")
	}
	return &out, nil
}

func (c *client) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit wait")
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return eris.New(fmt.Sprintf("engine returned %d: %s", resp.StatusCode, string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return eris.Wrap(err, "decode response")
		}
	}
	return nil
}

package geoengine

import "encoding/json"

// Record is a dynamic property bag as returned by the engine's samplers.
// Callers convert these to typed records at the ingestion boundary.
type Record map[string]float64

// RasterPayload is a gridded dataset fetched from, or returned by, the
// engine. Categorical rasters populate Ints; continuous rasters Floats.
type RasterPayload struct {
	AssetID     string    `json:"asset_id,omitempty"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Categorical bool      `json:"categorical"`
	Ints        []int     `json:"ints,omitempty"`
	Floats      []float64 `json:"floats,omitempty"`
}

// ImageBand is one named band of a multi-band image payload.
type ImageBand struct {
	Name   string    `json:"name"`
	Ints   []int     `json:"ints,omitempty"`
	Floats []float64 `json:"floats,omitempty"`
}

// ImagePayload is a multi-band image shipped to the engine for sampling,
// reduction, or classification. Bands are row-major and co-registered.
type ImagePayload struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Bands  []ImageBand `json:"bands"`
}

// SampleRequest asks the engine for a stratified point sample over a region.
// A nil ClassPoints map means proportional allocation across strata.
type SampleRequest struct {
	Image        ImagePayload    `json:"image"`
	Count        int             `json:"count"`
	StratifyBand string          `json:"stratify_band"`
	Scale        int             `json:"scale"`
	Region       json.RawMessage `json:"region"` // GeoJSON geometry
	ClassPoints  map[int]int     `json:"class_points,omitempty"`
	Seed         int64           `json:"seed"`
}

// ReduceRequest asks the engine for a grouped reduction over a region.
// ValueBand "area" reduces the engine's per-pixel area raster (square
// meters). BestEffort permits precision loss at region boundaries.
type ReduceRequest struct {
	Image      ImagePayload    `json:"image"`
	GroupBand  string          `json:"group_band"`
	ValueBand  string          `json:"value_band"`
	Reducer    string          `json:"reducer"`
	Scale      int             `json:"scale"`
	Region     json.RawMessage `json:"region"`
	BestEffort bool            `json:"best_effort"`
}

// GroupResult is one group of a grouped reduction.
type GroupResult struct {
	Group int     `json:"group"`
	Value float64 `json:"value"`
}

// TrainRequest asks the engine to train its ensemble classifier.
type TrainRequest struct {
	Records         []Record `json:"records"`
	TargetField     string   `json:"target_field"`
	PredictorFields []string `json:"predictor_fields"`
	Trees           int      `json:"trees"`
}

// ModelRef is an opaque handle to a trained model held by the engine.
type ModelRef struct {
	ID string `json:"id"`
}

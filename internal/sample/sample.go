// Package sample wraps the engine's stratified sampler and implements the
// deterministic train/test threshold split.
package sample

import (
	"context"
	"math"
	"math/rand"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meridian-geo/lulc-cli/internal/feature"
	"github.com/meridian-geo/lulc-cli/internal/model"
	"github.com/meridian-geo/lulc-cli/internal/region"
	"github.com/meridian-geo/lulc-cli/pkg/geoengine"
)

// Config holds sampling parameters. The train/test threshold is not part of
// sampling; it is passed to Split directly.
type Config struct {
	Count int   // sample size, default 3000
	Scale int   // nominal ground resolution, distance units
	Seed  int64 // seed for the per-record random field
}

// Sampler draws stratified samples through the compute engine.
type Sampler struct {
	engine geoengine.Client
	cfg    Config
}

// New creates a Sampler.
func New(engine geoengine.Client, cfg Config) *Sampler {
	return &Sampler{engine: engine, cfg: cfg}
}

// Sample draws cfg.Count points from the image, stratified by the transition
// band, and attaches a seeded uniform random field to each record. Records
// come back from the engine as dynamic property bags and are converted to
// typed FeatureRecords here.
func (s *Sampler) Sample(ctx context.Context, img *feature.Image, reg *region.Region) ([]model.FeatureRecord, error) {
	geo, err := reg.GeoJSON()
	if err != nil {
		return nil, err
	}

	raw, err := s.engine.Sample(ctx, geoengine.SampleRequest{
		Image:        feature.ToPayload(img),
		Count:        s.cfg.Count,
		StratifyBand: model.BandTransition,
		Scale:        s.cfg.Scale,
		Region:       geo,
		Seed:         s.cfg.Seed,
	})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, eris.New("sample: engine returned no records")
	}

	records := make([]model.FeatureRecord, 0, len(raw))
	for i, r := range raw {
		rec, convErr := FromEngine(r, img.Labeled())
		if convErr != nil {
			return nil, eris.Wrapf(convErr, "sample: record %d", i)
		}
		records = append(records, rec)
	}

	AttachRandom(records, s.cfg.Seed)
	zap.L().Info("sample: drew stratified sample",
		zap.Int("requested", s.cfg.Count),
		zap.Int("returned", len(records)),
	)
	return records, nil
}

// FromEngine converts a dynamic engine record into a typed FeatureRecord,
// validating that every expected field is present and integral where it must
// be. Labeled records additionally require the target field.
func FromEngine(r geoengine.Record, labeled bool) (model.FeatureRecord, error) {
	var rec model.FeatureRecord

	start, err := intField(r, model.BandStart)
	if err != nil {
		return rec, err
	}
	transition, err := intField(r, model.BandTransition)
	if err != nil {
		return rec, err
	}
	elevation, ok := r[model.BandElevation]
	if !ok {
		return rec, eris.Errorf("sample: missing field %q", model.BandElevation)
	}
	yearOf, err := intField(r, model.BandYearOf)
	if err != nil {
		return rec, err
	}

	rec = model.FeatureRecord{
		Start:      start,
		Transition: transition,
		Elevation:  elevation,
		YearOf:     yearOf,
	}
	if labeled {
		end, endErr := intField(r, model.BandEnd)
		if endErr != nil {
			return rec, endErr
		}
		rec.End = end
		rec.Labeled = true
	}
	return rec, nil
}

func intField(r geoengine.Record, name string) (int, error) {
	v, ok := r[name]
	if !ok {
		return 0, eris.Errorf("sample: missing field %q", name)
	}
	if v != math.Trunc(v) {
		return 0, eris.Errorf("sample: field %q holds non-integral value %g", name, v)
	}
	return int(v), nil
}

// AttachRandom assigns each record an independent uniform draw from [0,1)
// using the given seed. Identical seeds reproduce identical splits.
func AttachRandom(records []model.FeatureRecord, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range records {
		records[i].Rand = rng.Float64()
	}
}

// Split partitions records by the fixed threshold on their random field:
// train takes r <= threshold, test takes r > threshold. An empty partition is
// a data error; a classifier trained or evaluated on zero records must fail
// loudly rather than produce a degenerate model.
func Split(records []model.FeatureRecord, threshold float64) (train, test []model.FeatureRecord, err error) {
	if threshold <= 0 || threshold >= 1 {
		return nil, nil, eris.Errorf("sample: split threshold %g outside (0,1)", threshold)
	}
	for i, rec := range records {
		if rec.Rand < 0 || rec.Rand >= 1 {
			return nil, nil, eris.Errorf("sample: record %d random field %g outside [0,1)", i, rec.Rand)
		}
		if rec.Rand <= threshold {
			train = append(train, rec)
		} else {
			test = append(test, rec)
		}
	}
	if len(train) == 0 {
		return nil, nil, eris.New("sample: empty train partition")
	}
	if len(test) == 0 {
		return nil, nil, eris.New("sample: empty test partition")
	}
	zap.L().Info("sample: split partitions",
		zap.Int("train", len(train)),
		zap.Int("test", len(test)),
	)
	return train, test, nil
}

// ToEngine converts typed records back to the engine's dynamic form for
// training and prediction requests.
func ToEngine(records []model.FeatureRecord) []geoengine.Record {
	out := make([]geoengine.Record, len(records))
	for i, rec := range records {
		r := geoengine.Record{
			model.BandStart:      float64(rec.Start),
			model.BandTransition: float64(rec.Transition),
			model.BandElevation:  rec.Elevation,
			model.BandYearOf:     float64(rec.YearOf),
		}
		if rec.Labeled {
			r[model.BandEnd] = float64(rec.End)
		}
		out[i] = r
	}
	return out
}

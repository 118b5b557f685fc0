// Package registry loads the class catalog and epoch definitions that drive
// an analysis run.
package registry

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/meridian-geo/lulc-cli/internal/model"
)

// Epoch binds a year to its class raster asset on the engine. Forecast
// epochs have no asset; their raster is produced by the classifier.
type Epoch struct {
	Year  int    `yaml:"year" json:"year"`
	Asset string `yaml:"asset" json:"asset"`
}

// Registry is the loaded analysis definition: the ordered class catalog, the
// observed epochs, and the forecast year.
type Registry struct {
	Catalog        model.Catalog `yaml:"classes"`
	Epochs         []Epoch       `yaml:"epochs"`
	ForecastYear   int           `yaml:"forecast_year"`
	ElevationAsset string        `yaml:"elevation_asset"`
}

// Load reads and validates a registry YAML file.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read %s", path)
	}

	var reg Registry
	if err := yaml.Unmarshal(raw, &reg); err != nil {
		return nil, eris.Wrapf(err, "registry: parse %s", path)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	zap.L().Debug("registry: loaded",
		zap.String("path", path),
		zap.Int("classes", len(reg.Catalog)),
		zap.Int("epochs", len(reg.Epochs)),
		zap.Int("forecast_year", reg.ForecastYear),
	)
	return &reg, nil
}

// Validate checks registry invariants eagerly, before any engine call.
func (r *Registry) Validate() error {
	if err := r.Catalog.Validate(); err != nil {
		return err
	}
	if len(r.Epochs) < 2 {
		return eris.Errorf("registry: need at least two observed epochs, have %d", len(r.Epochs))
	}
	if !sort.SliceIsSorted(r.Epochs, func(i, j int) bool { return r.Epochs[i].Year < r.Epochs[j].Year }) {
		return eris.New("registry: epochs must be in chronological order")
	}
	seen := make(map[int]bool, len(r.Epochs))
	for i, e := range r.Epochs {
		if e.Year <= 0 {
			return eris.Errorf("registry: epoch %d: invalid year %d", i, e.Year)
		}
		if seen[e.Year] {
			return eris.Errorf("registry: duplicate epoch year %d", e.Year)
		}
		seen[e.Year] = true
		if e.Asset == "" {
			return eris.Errorf("registry: epoch %d (%d) has no raster asset", i, e.Year)
		}
	}
	if r.ForecastYear <= r.Epochs[len(r.Epochs)-1].Year {
		return eris.Errorf("registry: forecast year %d is not after the last observed epoch %d",
			r.ForecastYear, r.Epochs[len(r.Epochs)-1].Year)
	}
	if r.ElevationAsset == "" {
		return eris.New("registry: no elevation asset")
	}
	return nil
}

// Latest returns the most recent observed epoch.
func (r *Registry) Latest() Epoch { return r.Epochs[len(r.Epochs)-1] }

// Earliest returns the oldest observed epoch.
func (r *Registry) Earliest() Epoch { return r.Epochs[0] }

// Package area computes per-class surface area for each analysis epoch via
// the engine's grouped pixel-area reduction.
package area

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meridian-geo/lulc-cli/internal/model"
	"github.com/meridian-geo/lulc-cli/internal/raster"
	"github.com/meridian-geo/lulc-cli/internal/region"
	"github.com/meridian-geo/lulc-cli/pkg/geoengine"
)

// squareMetersPerHectare converts the engine's pixel-area sums (m^2) to
// hectares.
const squareMetersPerHectare = 10_000

// classBand is the grouping band name used in reduction requests.
const classBand = "class"

// Config holds reduction parameters.
type Config struct {
	Scale      int
	BestEffort bool // permit precision loss at region boundaries
}

// Aggregator reduces class rasters to per-class area records.
type Aggregator struct {
	engine  geoengine.Client
	catalog model.Catalog
	cfg     Config
}

// New creates an Aggregator for one class catalog.
func New(engine geoengine.Client, catalog model.Catalog, cfg Config) *Aggregator {
	return &Aggregator{engine: engine, catalog: catalog, cfg: cfg}
}

// EpochAreas computes per-class area in hectares for one epoch's class
// raster. Classes with no observed area produce no record.
func (a *Aggregator) EpochAreas(ctx context.Context, classes *raster.Grid, year int, reg *region.Region) ([]model.AreaRecord, error) {
	geo, err := reg.GeoJSON()
	if err != nil {
		return nil, err
	}

	groups, err := a.engine.ReduceByGroup(ctx, geoengine.ReduceRequest{
		Image: geoengine.ImagePayload{
			Width:  classes.Width,
			Height: classes.Height,
			Bands:  []geoengine.ImageBand{{Name: classBand, Ints: classes.Cells()}},
		},
		GroupBand:  classBand,
		ValueBand:  "area",
		Reducer:    "sum",
		Scale:      a.cfg.Scale,
		Region:     geo,
		BestEffort: a.cfg.BestEffort,
	})
	if err != nil {
		return nil, err
	}

	records, err := Relabel(groups, a.catalog, year)
	if err != nil {
		return nil, err
	}
	zap.L().Info("area: aggregated epoch",
		zap.Int("year", year),
		zap.Int("classes", len(records)),
	)
	return records, nil
}

// AllEpochs reduces every (year, raster) pair in chronological order and
// concatenates the results, the shape the chart layer consumes directly.
func (a *Aggregator) AllEpochs(ctx context.Context, epochs map[int]*raster.Grid, reg *region.Region) ([]model.AreaRecord, error) {
	years := make([]int, 0, len(epochs))
	for y := range epochs {
		years = append(years, y)
	}
	sort.Ints(years)

	var all []model.AreaRecord
	for _, year := range years {
		records, err := a.EpochAreas(ctx, epochs[year], year, reg)
		if err != nil {
			return nil, eris.Wrapf(err, "area: epoch %d", year)
		}
		all = append(all, records...)
	}
	return all, nil
}

// Relabel converts grouped area sums (square meters, keyed by class code)
// into named AreaRecords in catalog order, tagged with the epoch year. Codes
// absent from the catalog are a data error; zero-area groups are dropped.
func Relabel(groups []geoengine.GroupResult, catalog model.Catalog, year int) ([]model.AreaRecord, error) {
	byCode := make(map[int]float64, len(groups))
	for _, g := range groups {
		if g.Value < 0 {
			return nil, eris.Errorf("area: negative area %g for class %d", g.Value, g.Group)
		}
		if _, ok := catalog.Name(g.Group); !ok {
			return nil, eris.Errorf("area: class code %d not in catalog", g.Group)
		}
		byCode[g.Group] += g.Value
	}

	var records []model.AreaRecord
	for _, entry := range catalog {
		sqm, ok := byCode[entry.Code]
		if !ok || sqm == 0 {
			continue
		}
		records = append(records, model.AreaRecord{
			Year:         year,
			ClassCode:    entry.Code,
			ClassName:    entry.Name,
			AreaHectares: sqm / squareMetersPerHectare,
		})
	}
	return records, nil
}

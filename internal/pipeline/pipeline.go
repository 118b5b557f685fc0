// Package pipeline orchestrates the land-cover transition analysis: load,
// encode, assemble, sample, train, evaluate, forecast, aggregate, render.
// The pass is strictly linear and fail-fast; any external failure aborts the
// run with no partial output.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-geo/lulc-cli/internal/area"
	"github.com/meridian-geo/lulc-cli/internal/config"
	"github.com/meridian-geo/lulc-cli/internal/eval"
	"github.com/meridian-geo/lulc-cli/internal/export"
	"github.com/meridian-geo/lulc-cli/internal/feature"
	"github.com/meridian-geo/lulc-cli/internal/model"
	"github.com/meridian-geo/lulc-cli/internal/raster"
	"github.com/meridian-geo/lulc-cli/internal/region"
	"github.com/meridian-geo/lulc-cli/internal/registry"
	"github.com/meridian-geo/lulc-cli/internal/render"
	"github.com/meridian-geo/lulc-cli/internal/sample"
	"github.com/meridian-geo/lulc-cli/internal/store"
	"github.com/meridian-geo/lulc-cli/pkg/geoengine"
)

// Pipeline runs the full transition analysis for one region.
type Pipeline struct {
	cfg    *config.Config
	store  store.Store
	engine geoengine.Client
	reg    *registry.Registry
	region *region.Region
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, engine geoengine.Client, reg *registry.Registry, rgn *region.Region) *Pipeline {
	return &Pipeline{cfg: cfg, store: st, engine: engine, reg: reg, region: rgn}
}

// Run executes the full analysis and returns its result. Configuration
// errors surface before the first engine call.
func (p *Pipeline) Run(ctx context.Context) (*model.RunResult, error) {
	log := zap.L().With(zap.String("region", p.region.Name))
	log.Info("pipeline: starting analysis",
		zap.Int("epochs", len(p.reg.Epochs)),
		zap.Int("forecast_year", p.reg.ForecastYear),
	)

	// Validate everything that can fail without the engine.
	encoder, err := raster.NewEncoder(p.reg.Catalog)
	if err != nil {
		return nil, err
	}

	run, err := p.store.CreateRun(ctx, p.region.Name)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	result := &model.RunResult{}
	for _, e := range p.reg.Epochs {
		result.Epochs = append(result.Epochs, e.Year)
	}
	result.Epochs = append(result.Epochs, p.reg.ForecastYear)

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	// Phase tracking helper. Phases run strictly in sequence; the first
	// failure marks the run failed and aborts.
	trackPhase := func(name string, fn func() (int, error)) error {
		phase, phaseErr := p.store.CreatePhase(ctx, run.ID, name)
		if phaseErr != nil {
			log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
		}

		start := time.Now()
		records, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		phaseResult := &model.PhaseResult{Name: name, Duration: duration, Records: records}
		if fnErr != nil {
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			phaseResult.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Int("records", records),
			)
		}

		if phase != nil {
			_ = p.store.CompletePhase(ctx, phase.ID, phaseResult)
		}
		result.Phases = append(result.Phases, *phaseResult)
		if fnErr != nil {
			result.Error = fnErr.Error()
			if updateErr := p.store.UpdateRunResult(ctx, run.ID, result); updateErr != nil {
				log.Warn("pipeline: failed to persist failed result", zap.Error(updateErr))
			}
			return eris.Wrapf(fnErr, "pipeline: phase %s", name)
		}
		return nil
	}

	// ===== Load: fetch epoch class rasters and elevation in parallel =====
	setStatus(model.RunStatusLoading)

	epochGrids := make(map[int]*raster.Grid, len(p.reg.Epochs))
	var elevation *raster.FloatGrid

	if err := trackPhase("load", func() (int, error) {
		g, gCtx := errgroup.WithContext(ctx)
		grids := make([]*raster.Grid, len(p.reg.Epochs))

		for i, epoch := range p.reg.Epochs {
			g.Go(func() error {
				payload, fetchErr := p.engine.FetchRaster(gCtx, epoch.Asset)
				if fetchErr != nil {
					return fetchErr
				}
				grid, convErr := gridFromPayload(payload)
				if convErr != nil {
					return eris.Wrapf(convErr, "epoch %d", epoch.Year)
				}
				grids[i] = grid
				return nil
			})
		}
		g.Go(func() error {
			payload, fetchErr := p.engine.FetchRaster(gCtx, p.reg.ElevationAsset)
			if fetchErr != nil {
				return fetchErr
			}
			fg, convErr := floatGridFromPayload(payload)
			if convErr != nil {
				return eris.Wrap(convErr, "elevation")
			}
			elevation = fg
			return nil
		})
		if waitErr := g.Wait(); waitErr != nil {
			return 0, waitErr
		}
		for i, epoch := range p.reg.Epochs {
			epochGrids[epoch.Year] = grids[i]
		}
		return len(grids) + 1, nil
	}); err != nil {
		return result, err
	}

	fromGrid := epochGrids[p.reg.Earliest().Year]
	toGrid := epochGrids[p.reg.Latest().Year]

	// ===== Encode the pairwise transition =====
	setStatus(model.RunStatusEncoding)

	var tr *raster.Transition
	if err := trackPhase("encode", func() (int, error) {
		var encErr error
		tr, encErr = encoder.Encode(fromGrid, toGrid)
		if encErr != nil {
			return 0, encErr
		}
		return len(tr.Catalog), nil
	}); err != nil {
		return result, err
	}

	// ===== Assemble training features, sample, split =====
	setStatus(model.RunStatusSampling)

	var train, test []model.FeatureRecord
	if err := trackPhase("sample", func() (int, error) {
		img, asmErr := feature.Assemble(fromGrid, toGrid, tr, elevation, p.reg.Latest().Year)
		if asmErr != nil {
			return 0, asmErr
		}

		sampler := sample.New(p.engine, sample.Config{
			Count: p.cfg.Analysis.SampleCount,
			Scale: p.cfg.Analysis.Scale,
			Seed:  p.cfg.Analysis.Seed,
		})
		records, sampleErr := sampler.Sample(ctx, img, p.region)
		if sampleErr != nil {
			return 0, sampleErr
		}

		var splitErr error
		train, test, splitErr = sample.Split(records, p.cfg.Analysis.SplitThreshold)
		if splitErr != nil {
			return 0, splitErr
		}
		result.SampleCount = len(records)
		result.TrainCount = len(train)
		result.TestCount = len(test)
		return len(records), nil
	}); err != nil {
		return result, err
	}

	// ===== Train =====
	setStatus(model.RunStatusTraining)

	var modelRef geoengine.ModelRef
	if err := trackPhase("train", func() (int, error) {
		var trainErr error
		modelRef, trainErr = p.engine.Train(ctx, geoengine.TrainRequest{
			Records:         sample.ToEngine(train),
			TargetField:     model.BandEnd,
			PredictorFields: model.PredictorBands,
			Trees:           p.cfg.Analysis.Trees,
		})
		return len(train), trainErr
	}); err != nil {
		return result, err
	}

	// ===== Evaluate on the held-out partition =====
	var cm *eval.Matrix
	if err := trackPhase("evaluate", func() (int, error) {
		preds, applyErr := p.engine.Apply(ctx, modelRef, sample.ToEngine(test))
		if applyErr != nil {
			return 0, applyErr
		}
		truth := make([]int, len(test))
		for i, rec := range test {
			truth[i] = rec.End
		}
		var cmErr error
		cm, cmErr = eval.Confusion(truth, preds, p.reg.Catalog.Codes())
		if cmErr != nil {
			return 0, cmErr
		}
		result.Accuracy = cm.Accuracy()
		result.Kappa = cm.Kappa()
		log.Info("pipeline: evaluation",
			zap.Float64("accuracy", result.Accuracy),
			zap.Float64("kappa", result.Kappa),
			zap.String("confusion", cm.String()),
		)
		return len(test), nil
	}); err != nil {
		return result, err
	}

	// ===== Forecast: classify future-period features =====
	setStatus(model.RunStatusForecasting)

	var forecastGrid *raster.Grid
	if err := trackPhase("forecast", func() (int, error) {
		futureImg, asmErr := feature.AssembleForecast(toGrid, tr, elevation, p.reg.ForecastYear)
		if asmErr != nil {
			return 0, asmErr
		}
		payload, classifyErr := p.engine.Classify(ctx, modelRef, feature.ToPayload(futureImg))
		if classifyErr != nil {
			return 0, classifyErr
		}
		var convErr error
		forecastGrid, convErr = gridFromPayload(payload)
		if convErr != nil {
			return 0, eris.Wrap(convErr, "forecast raster")
		}
		if !forecastGrid.SameShape(toGrid) {
			return 0, eris.Errorf("forecast raster shape %dx%d does not match input %dx%d",
				forecastGrid.Width, forecastGrid.Height, toGrid.Width, toGrid.Height)
		}
		return forecastGrid.Width * forecastGrid.Height, nil
	}); err != nil {
		return result, err
	}

	// ===== Aggregate per-class areas across all epochs =====
	setStatus(model.RunStatusAggregating)

	if err := trackPhase("aggregate", func() (int, error) {
		epochs := make(map[int]*raster.Grid, len(epochGrids)+1)
		for year, grid := range epochGrids {
			epochs[year] = grid
		}
		epochs[p.reg.ForecastYear] = forecastGrid

		aggregator := area.New(p.engine, p.reg.Catalog, area.Config{
			Scale:      p.cfg.Analysis.Scale,
			BestEffort: p.cfg.Analysis.BestEffort,
		})
		areas, aggErr := aggregator.AllEpochs(ctx, epochs, p.region)
		if aggErr != nil {
			return 0, aggErr
		}
		result.Areas = areas
		return len(areas), nil
	}); err != nil {
		return result, err
	}

	// ===== Render the chart =====
	setStatus(model.RunStatusRendering)

	if err := trackPhase("render", func() (int, error) {
		title := fmt.Sprintf("Land cover area by class, %s", p.region.Name)
		bar, chartErr := render.AreaChart(result.Areas, p.reg.Catalog, title)
		if chartErr != nil {
			return 0, chartErr
		}
		name := fmt.Sprintf("areas-%s.html", run.ID)
		path, writeErr := render.WriteChartFile(p.cfg.Report.OutDir, name, bar, p.reg.Catalog)
		if writeErr != nil {
			return 0, writeErr
		}
		result.ChartPath = path

		if p.cfg.Report.XLSX {
			xlsxPath := filepath.Join(p.cfg.Report.OutDir, fmt.Sprintf("areas-%s.xlsx", run.ID))
			if exportErr := export.WriteXLSX(xlsxPath, result.Areas, cm); exportErr != nil {
				return 0, exportErr
			}
		}
		return 1, nil
	}); err != nil {
		return result, err
	}

	// Persist the final result and area records.
	if err := p.store.InsertAreaRecords(ctx, run.ID, result.Areas); err != nil {
		return result, eris.Wrap(err, "pipeline: persist area records")
	}
	if err := p.store.UpdateRunResult(ctx, run.ID, result); err != nil {
		return result, eris.Wrap(err, "pipeline: persist result")
	}

	log.Info("pipeline: analysis complete",
		zap.String("run_id", run.ID),
		zap.Float64("accuracy", result.Accuracy),
		zap.Float64("kappa", result.Kappa),
		zap.Int("area_records", len(result.Areas)),
	)
	return result, nil
}

func gridFromPayload(p *geoengine.RasterPayload) (*raster.Grid, error) {
	if !p.Categorical {
		return nil, eris.New("pipeline: expected categorical raster")
	}
	return raster.NewGridFromCells(p.Width, p.Height, p.Ints)
}

func floatGridFromPayload(p *geoengine.RasterPayload) (*raster.FloatGrid, error) {
	if p.Categorical {
		return nil, eris.New("pipeline: expected continuous raster")
	}
	return raster.NewFloatGridFromCells(p.Width, p.Height, p.Floats)
}

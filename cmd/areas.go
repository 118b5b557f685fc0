package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-geo/lulc-cli/internal/area"
	"github.com/meridian-geo/lulc-cli/internal/export"
	"github.com/meridian-geo/lulc-cli/internal/raster"
	"github.com/meridian-geo/lulc-cli/internal/render"
)

var areasXLSX string

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "Aggregate per-class area for the observed epochs and chart it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		rgn, err := loadRegion()
		if err != nil {
			return err
		}
		engine := initEngine()

		// Fetch every observed epoch raster in parallel.
		epochs := make(map[int]*raster.Grid, len(reg.Epochs))
		grids := make([]*raster.Grid, len(reg.Epochs))
		g, gCtx := errgroup.WithContext(ctx)
		for i, epoch := range reg.Epochs {
			g.Go(func() error {
				payload, fetchErr := engine.FetchRaster(gCtx, epoch.Asset)
				if fetchErr != nil {
					return fetchErr
				}
				grid, convErr := raster.NewGridFromCells(payload.Width, payload.Height, payload.Ints)
				if convErr != nil {
					return eris.Wrapf(convErr, "epoch %d", epoch.Year)
				}
				grids[i] = grid
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "fetch epoch rasters")
		}
		for i, epoch := range reg.Epochs {
			epochs[epoch.Year] = grids[i]
		}

		aggregator := area.New(engine, reg.Catalog, area.Config{
			Scale:      cfg.Analysis.Scale,
			BestEffort: cfg.Analysis.BestEffort,
		})
		records, err := aggregator.AllEpochs(ctx, epochs, rgn)
		if err != nil {
			return err
		}

		title := fmt.Sprintf("Land cover area by class, %s", rgn.Name)
		bar, err := render.AreaChart(records, reg.Catalog, title)
		if err != nil {
			return err
		}
		path, err := render.WriteChartFile(cfg.Report.OutDir, "areas.html", bar, reg.Catalog)
		if err != nil {
			return err
		}
		fmt.Println("chart:", path)

		if areasXLSX != "" {
			out := areasXLSX
			if !filepath.IsAbs(out) {
				out = filepath.Join(cfg.Report.OutDir, out)
			}
			if err := export.WriteXLSX(out, records, nil); err != nil {
				return err
			}
			fmt.Println("export:", out)
		}
		return nil
	},
}

func init() {
	areasCmd.Flags().StringVar(&areasXLSX, "xlsx", "", "also export area records to this xlsx file")
	rootCmd.AddCommand(areasCmd)
}

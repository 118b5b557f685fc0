package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-geo/lulc-cli/internal/raster"
)

var transitionsCounts bool

var transitionsCmd = &cobra.Command{
	Use:   "transitions",
	Short: "Print the transition catalog, optionally with observed cell counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		encoder, err := raster.NewEncoder(reg.Catalog)
		if err != nil {
			return err
		}

		counts := map[int]int{}
		if transitionsCounts {
			engine := initEngine()

			var fromGrid, toGrid *raster.Grid
			g, gCtx := errgroup.WithContext(ctx)
			g.Go(func() error {
				payload, fetchErr := engine.FetchRaster(gCtx, reg.Earliest().Asset)
				if fetchErr != nil {
					return fetchErr
				}
				var convErr error
				fromGrid, convErr = raster.NewGridFromCells(payload.Width, payload.Height, payload.Ints)
				return convErr
			})
			g.Go(func() error {
				payload, fetchErr := engine.FetchRaster(gCtx, reg.Latest().Asset)
				if fetchErr != nil {
					return fetchErr
				}
				var convErr error
				toGrid, convErr = raster.NewGridFromCells(payload.Width, payload.Height, payload.Ints)
				return convErr
			})
			if err := g.Wait(); err != nil {
				return eris.Wrap(err, "fetch epoch rasters")
			}

			tr, encErr := encoder.Encode(fromGrid, toGrid)
			if encErr != nil {
				return encErr
			}
			for _, code := range tr.Full.Cells() {
				counts[code]++
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()
		for _, tc := range encoder.Catalog() {
			if transitionsCounts {
				fmt.Fprintf(w, "%d\t%s\t%d\n", tc.Code, tc.Label, counts[tc.Code])
			} else {
				fmt.Fprintf(w, "%d\t%s\n", tc.Code, tc.Label)
			}
		}
		return nil
	},
}

func init() {
	transitionsCmd.Flags().BoolVar(&transitionsCounts, "counts", false, "fetch the epoch rasters and include observed cell counts")
	rootCmd.AddCommand(transitionsCmd)
}

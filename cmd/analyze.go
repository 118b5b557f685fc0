package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/meridian-geo/lulc-cli/internal/pipeline"
	"github.com/meridian-geo/lulc-cli/internal/render"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full transition analysis and forecast",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		rgn, err := loadRegion()
		if err != nil {
			return err
		}

		p := pipeline.New(cfg, st, initEngine(), reg, rgn)
		result, err := p.Run(ctx)
		if err != nil {
			return err
		}

		return render.WriteReport(os.Stdout, result)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

package render

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-geo/lulc-cli/internal/model"
)

// WriteReport writes a human-readable run summary: sample counts, agreement
// statistics, and per-epoch area totals with grouped digits.
func WriteReport(w io.Writer, result *model.RunResult) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "samples: %d (train %d / test %d)\n",
		result.SampleCount, result.TrainCount, result.TestCount); err != nil {
		return err
	}
	if _, err := p.Fprintf(w, "accuracy: %.4f  kappa: %.4f\n", result.Accuracy, result.Kappa); err != nil {
		return err
	}

	totals := make(map[int]float64)
	for _, rec := range result.Areas {
		totals[rec.Year] += rec.AreaHectares
	}
	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, year := range years {
		if _, err := p.Fprintf(w, "%d total area: %.1f ha\n", year, totals[year]); err != nil {
			return err
		}
	}
	if result.ChartPath != "" {
		if _, err := fmt.Fprintf(w, "chart: %s\n", result.ChartPath); err != nil {
			return err
		}
	}
	return nil
}

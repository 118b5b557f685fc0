// Package render produces the area-by-class chart, the class legend, and the
// textual run report.
package render

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rotisserie/eris"

	"github.com/meridian-geo/lulc-cli/internal/model"
)

// AreaChart builds a grouped bar chart of per-class area: one bar group per
// class in catalog order, one series per epoch year.
func AreaChart(records []model.AreaRecord, catalog model.Catalog, title string) (*charts.Bar, error) {
	if len(records) == 0 {
		return nil, eris.New("render: no area records to chart")
	}

	// Index area by (year, code); collect years in chronological order.
	byYear := make(map[int]map[int]float64)
	for _, rec := range records {
		if _, ok := catalog.Name(rec.ClassCode); !ok {
			return nil, eris.Errorf("render: class code %d not in catalog", rec.ClassCode)
		}
		if byYear[rec.Year] == nil {
			byYear[rec.Year] = make(map[int]float64)
		}
		byYear[rec.Year][rec.ClassCode] = rec.AreaHectares
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.Name
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Class"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Area (ha)"}),
	)
	bar.SetXAxis(names)

	for _, year := range years {
		data := make([]opts.BarData, len(catalog))
		for i, e := range catalog {
			data[i] = opts.BarData{Value: byYear[year][e.Code]}
		}
		bar.AddSeries(strconv.Itoa(year), data)
	}
	return bar, nil
}

// WriteChartHTML renders the chart and the class legend panel into a single
// HTML document.
func WriteChartHTML(w io.Writer, bar *charts.Bar, catalog model.Catalog) error {
	if err := bar.Render(w); err != nil {
		return eris.Wrap(err, "render: chart")
	}
	return eris.Wrap(writeLegend(w, catalog), "render: legend")
}

// WriteChartFile renders the chart document to outDir/name and returns the
// full path.
func WriteChartFile(outDir, name string, bar *charts.Bar, catalog model.Catalog) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "render: create %s", outDir)
	}
	path := filepath.Join(outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "render: create %s", path)
	}
	defer f.Close()

	if err := WriteChartHTML(f, bar, catalog); err != nil {
		return "", err
	}
	return path, nil
}

// writeLegend appends a legend panel keyed by (color, code, name), in
// catalog order.
func writeLegend(w io.Writer, catalog model.Catalog) error {
	if _, err := fmt.Fprint(w, `<div class="legend" style="font-family:sans-serif;margin:16px">`); err != nil {
		return err
	}
	for _, e := range catalog {
		color := e.Color
		if color == "" {
			color = "#999999"
		}
		_, err := fmt.Fprintf(w,
			`<div><span style="display:inline-block;width:12px;height:12px;background:%s;margin-right:6px"></span>%d %s</div>`,
			html.EscapeString(color), e.Code, html.EscapeString(e.Name))
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, `</div>`)
	return err
}

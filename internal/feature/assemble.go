// Package feature assembles co-registered rasters into multi-band feature
// images for sampling, training, and classification.
package feature

import (
	"github.com/rotisserie/eris"

	"github.com/meridian-geo/lulc-cli/internal/model"
	"github.com/meridian-geo/lulc-cli/internal/raster"
)

// Image is a multi-band feature image for one target year. End is nil for
// forecast-period images, where the label is unknown.
type Image struct {
	Year       int
	Start      *raster.Grid
	End        *raster.Grid
	Transition *raster.Grid
	Elevation  *raster.FloatGrid
	YearOf     *raster.Grid
}

// Bands returns the band names present on the image, predictors first.
func (im *Image) Bands() []string {
	bands := append([]string(nil), model.PredictorBands...)
	if im.End != nil {
		bands = append(bands, model.BandEnd)
	}
	return bands
}

// Labeled reports whether the image carries the training label band.
func (im *Image) Labeled() bool { return im.End != nil }

// At reads all bands at one cell into a FeatureRecord. The Rand field is left
// zero; the sampler attaches it.
func (im *Image) At(x, y int) model.FeatureRecord {
	rec := model.FeatureRecord{
		Start:      im.Start.At(x, y),
		Transition: im.Transition.At(x, y),
		Elevation:  im.Elevation.At(x, y),
		YearOf:     im.YearOf.At(x, y),
	}
	if im.End != nil {
		rec.End = im.End.At(x, y)
		rec.Labeled = true
	}
	return rec
}

// Assemble builds a labeled feature image for the training period. The
// year-of-change band holds year where the class changed between the two
// epochs and zero elsewhere.
func Assemble(from, to *raster.Grid, tr *raster.Transition, elevation *raster.FloatGrid, year int) (*Image, error) {
	if err := checkShapes(from, tr, elevation); err != nil {
		return nil, err
	}
	if to == nil {
		return nil, eris.New("feature: training assembly requires the end-epoch raster")
	}
	if !from.SameShape(to) {
		return nil, eris.Errorf("feature: shape mismatch %dx%d vs %dx%d", from.Width, from.Height, to.Width, to.Height)
	}

	yearOf, err := changeYearBand(tr, year)
	if err != nil {
		return nil, err
	}
	return &Image{
		Year:       year,
		Start:      from,
		End:        to,
		Transition: tr.Full,
		Elevation:  elevation,
		YearOf:     yearOf,
	}, nil
}

// AssembleForecast builds an unlabeled feature image for the forecast period.
// The most recent observed change mask stands in for future change locations;
// this heuristic is carried over from the source analysis as-is.
func AssembleForecast(latest *raster.Grid, tr *raster.Transition, elevation *raster.FloatGrid, year int) (*Image, error) {
	if err := checkShapes(latest, tr, elevation); err != nil {
		return nil, err
	}
	yearOf, err := changeYearBand(tr, year)
	if err != nil {
		return nil, err
	}
	return &Image{
		Year:       year,
		Start:      latest,
		Transition: tr.Full,
		Elevation:  elevation,
		YearOf:     yearOf,
	}, nil
}

func checkShapes(start *raster.Grid, tr *raster.Transition, elevation *raster.FloatGrid) error {
	if start == nil || tr == nil || tr.Full == nil || elevation == nil {
		return eris.New("feature: assembly requires start, transition, and elevation rasters")
	}
	if !start.SameShape(tr.Full) {
		return eris.Errorf("feature: transition shape %dx%d does not match start %dx%d",
			tr.Full.Width, tr.Full.Height, start.Width, start.Height)
	}
	if !elevation.SameShapeInt(start) {
		return eris.Errorf("feature: elevation shape %dx%d does not match start %dx%d",
			elevation.Width, elevation.Height, start.Width, start.Height)
	}
	return nil
}

// changeYearBand derives the year-of-change band from a transition's changed
// mask: year where changed, zero elsewhere.
func changeYearBand(tr *raster.Transition, year int) (*raster.Grid, error) {
	g, err := raster.NewGrid(tr.Full.Width, tr.Full.Height)
	if err != nil {
		return nil, err
	}
	cells := g.Cells()
	chg := tr.Changed.Cells()
	for i := range cells {
		if chg[i] != raster.NoData {
			cells[i] = year
		}
	}
	return g, nil
}

package feature

import (
	"github.com/meridian-geo/lulc-cli/internal/model"
	"github.com/meridian-geo/lulc-cli/pkg/geoengine"
)

// ToPayload converts a feature image into the engine's wire form. Band order
// matches Bands(): predictors first, then the label band when present.
func ToPayload(im *Image) geoengine.ImagePayload {
	bands := []geoengine.ImageBand{
		{Name: model.BandStart, Ints: im.Start.Cells()},
		{Name: model.BandTransition, Ints: im.Transition.Cells()},
		{Name: model.BandElevation, Floats: im.Elevation.Cells()},
		{Name: model.BandYearOf, Ints: im.YearOf.Cells()},
	}
	if im.End != nil {
		bands = append(bands, geoengine.ImageBand{Name: model.BandEnd, Ints: im.End.Cells()})
	}
	return geoengine.ImagePayload{
		Width:  im.Start.Width,
		Height: im.Start.Height,
		Bands:  bands,
	}
}

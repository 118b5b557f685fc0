// Package region defines the bounded spatial domain that sampling and
// reduction requests are scoped to.
package region

import (
	"encoding/json"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Region is a polygonal analysis boundary in lon/lat coordinates.
type Region struct {
	Name string
	poly *geom.Polygon
}

// FromBounds builds a rectangular region from min/max lon/lat bounds.
func FromBounds(name string, minX, minY, maxX, maxY float64) (*Region, error) {
	if minX >= maxX || minY >= maxY {
		return nil, eris.Errorf("region: degenerate bounds [%g %g %g %g]", minX, minY, maxX, maxY)
	}
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}})
	return &Region{Name: name, poly: poly}, nil
}

// FromShapefile reads a boundary shapefile and builds a region from the
// bounding box of all shapes it contains.
func FromShapefile(name, path string) (*Region, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "region: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	var (
		count                  int
		minX, minY, maxX, maxY float64
	)
	for reader.Next() {
		_, shape := reader.Shape()
		if shape == nil {
			continue
		}
		box := shape.BBox()
		if count == 0 {
			minX, minY, maxX, maxY = box.MinX, box.MinY, box.MaxX, box.MaxY
		} else {
			if box.MinX < minX {
				minX = box.MinX
			}
			if box.MinY < minY {
				minY = box.MinY
			}
			if box.MaxX > maxX {
				maxX = box.MaxX
			}
			if box.MaxY > maxY {
				maxY = box.MaxY
			}
		}
		count++
	}
	if count == 0 {
		return nil, eris.Errorf("region: shapefile %s contains no shapes", path)
	}

	zap.L().Debug("region: loaded shapefile boundary",
		zap.String("path", path),
		zap.Int("shapes", count),
	)
	return FromBounds(name, minX, minY, maxX, maxY)
}

// Bounds returns the region's bounding box as (minX, minY, maxX, maxY).
func (r *Region) Bounds() (minX, minY, maxX, maxY float64) {
	b := r.poly.Bounds()
	return b.Min(0), b.Min(1), b.Max(0), b.Max(1)
}

// GeoJSON serializes the region geometry for engine requests.
func (r *Region) GeoJSON() (json.RawMessage, error) {
	raw, err := geojson.Marshal(r.poly)
	if err != nil {
		return nil, eris.Wrap(err, "region: marshal geojson")
	}
	return raw, nil
}

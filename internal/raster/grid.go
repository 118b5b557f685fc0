// Package raster provides in-memory gridded rasters and the pairwise
// land-cover transition encoding.
package raster

import (
	"github.com/rotisserie/eris"
)

// NoData marks masked cells in integer grids. Valid class codes are positive
// and valid transition codes are >= 101, so zero is never a live value.
const NoData = 0

// Grid is a dense 2-D grid of integer category codes in row-major order.
type Grid struct {
	Width  int
	Height int
	cells  []int
}

// NewGrid allocates a Width x Height grid with all cells set to NoData.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("raster: invalid grid dimensions %dx%d", width, height)
	}
	return &Grid{Width: width, Height: height, cells: make([]int, width*height)}, nil
}

// NewGridFromCells wraps a row-major cell slice. The slice length must equal
// width*height; it is not copied.
func NewGridFromCells(width, height int, cells []int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("raster: invalid grid dimensions %dx%d", width, height)
	}
	if len(cells) != width*height {
		return nil, eris.Errorf("raster: cell count %d does not match %dx%d", len(cells), width, height)
	}
	return &Grid{Width: width, Height: height, cells: cells}, nil
}

// At returns the cell value at (x, y).
func (g *Grid) At(x, y int) int { return g.cells[y*g.Width+x] }

// Set assigns the cell value at (x, y).
func (g *Grid) Set(x, y, v int) { g.cells[y*g.Width+x] = v }

// Cells returns the backing row-major cell slice.
func (g *Grid) Cells() []int { return g.cells }

// SameShape reports whether two grids cover the same cell domain.
func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.Width == o.Width && g.Height == o.Height
}

// Fill sets every cell to v.
func (g *Grid) Fill(v int) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

// FloatGrid is a dense 2-D grid of continuous values in row-major order,
// used for terrain elevation and other auxiliary bands.
type FloatGrid struct {
	Width  int
	Height int
	cells  []float64
}

// NewFloatGrid allocates a zeroed Width x Height float grid.
func NewFloatGrid(width, height int) (*FloatGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("raster: invalid grid dimensions %dx%d", width, height)
	}
	return &FloatGrid{Width: width, Height: height, cells: make([]float64, width*height)}, nil
}

// NewFloatGridFromCells wraps a row-major cell slice without copying.
func NewFloatGridFromCells(width, height int, cells []float64) (*FloatGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("raster: invalid grid dimensions %dx%d", width, height)
	}
	if len(cells) != width*height {
		return nil, eris.Errorf("raster: cell count %d does not match %dx%d", len(cells), width, height)
	}
	return &FloatGrid{Width: width, Height: height, cells: cells}, nil
}

// At returns the cell value at (x, y).
func (g *FloatGrid) At(x, y int) float64 { return g.cells[y*g.Width+x] }

// Set assigns the cell value at (x, y).
func (g *FloatGrid) Set(x, y int, v float64) { g.cells[y*g.Width+x] = v }

// Cells returns the backing row-major cell slice.
func (g *FloatGrid) Cells() []float64 { return g.cells }

// SameShapeInt reports whether the float grid covers the same cell domain as
// an integer grid.
func (g *FloatGrid) SameShapeInt(o *Grid) bool {
	return o != nil && g.Width == o.Width && g.Height == o.Height
}

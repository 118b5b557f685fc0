package raster

import (
	"github.com/rotisserie/eris"

	"github.com/meridian-geo/lulc-cli/internal/model"
)

// encodeBase is the multiplicative base of the pairwise transition encoding.
// With class codes capped at model.MaxClassCode (99), from*100+to is
// injective over all ordered code pairs.
const encodeBase = 100

// EncodeCode combines an ordered pair of class codes into a single transition
// code.
func EncodeCode(from, to int) int { return from*encodeBase + to }

// DecodeCode recovers the ordered class pair from a transition code.
func DecodeCode(code int) (from, to int) { return code / encodeBase, code % encodeBase }

// TransitionClass is one entry of the transition catalog: an encoded code,
// its source and destination classes, and a display label.
type TransitionClass struct {
	Code  int    `json:"code"`
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label"` // "<FromName> -> <ToName>"
}

// Transition is the derived product of encoding two epoch class rasters.
// Full keeps every cell including no-change transitions (model feature);
// Changed masks cells where the class did not change (display product and
// change-year mask). Both are immutable once built.
type Transition struct {
	Full    *Grid
	Changed *Grid
	Catalog []TransitionClass
}

// ChangedMask reports whether the cell at (x, y) changed class.
func (t *Transition) ChangedMask(x, y int) bool { return t.Changed.At(x, y) != NoData }

// Encoder maps pairs of class rasters into transition rasters for one class
// catalog.
type Encoder struct {
	catalog model.Catalog
	names   map[int]string
}

// NewEncoder validates the catalog and builds an Encoder. Catalogs whose
// codes reach the encoding base are rejected here, before any raster work.
func NewEncoder(catalog model.Catalog) (*Encoder, error) {
	if err := catalog.Validate(); err != nil {
		return nil, eris.Wrap(err, "raster: invalid catalog")
	}
	if len(catalog) >= encodeBase {
		return nil, eris.Errorf("raster: catalog has %d classes, transition encoding supports at most %d", len(catalog), encodeBase-1)
	}
	return &Encoder{catalog: catalog, names: catalog.Names()}, nil
}

// Catalog returns the K*K transition catalog in class-catalog order: for each
// source class, one entry per destination class.
func (e *Encoder) Catalog() []TransitionClass {
	out := make([]TransitionClass, 0, len(e.catalog)*len(e.catalog))
	for _, from := range e.catalog {
		for _, to := range e.catalog {
			out = append(out, TransitionClass{
				Code:  EncodeCode(from.Code, to.Code),
				From:  from.Code,
				To:    to.Code,
				Label: from.Name + " -> " + to.Name,
			})
		}
	}
	return out
}

// Encode folds two same-shape class rasters into a Transition. Every cell
// pair must name codes present in the catalog; unknown codes are a data
// error. No-change cells are kept in Full and masked in Changed.
func (e *Encoder) Encode(from, to *Grid) (*Transition, error) {
	if from == nil || to == nil {
		return nil, eris.New("raster: encode requires two rasters")
	}
	if !from.SameShape(to) {
		return nil, eris.Errorf("raster: shape mismatch %dx%d vs %dx%d",
			from.Width, from.Height, to.Width, to.Height)
	}

	full, err := NewGrid(from.Width, from.Height)
	if err != nil {
		return nil, err
	}
	changed, err := NewGrid(from.Width, from.Height)
	if err != nil {
		return nil, err
	}

	fc, tc := from.Cells(), to.Cells()
	out := full.Cells()
	chg := changed.Cells()
	for i := range fc {
		v1, v2 := fc[i], tc[i]
		if _, ok := e.names[v1]; !ok {
			return nil, eris.Errorf("raster: cell %d holds class code %d not in catalog", i, v1)
		}
		if _, ok := e.names[v2]; !ok {
			return nil, eris.Errorf("raster: cell %d holds class code %d not in catalog", i, v2)
		}
		code := EncodeCode(v1, v2)
		out[i] = code
		if v1 != v2 {
			chg[i] = code
		}
	}

	return &Transition{Full: full, Changed: changed, Catalog: e.Catalog()}, nil
}

// Package model defines the core domain types shared across the analysis
// pipeline: class catalogs, feature records, area records, and run tracking.
package model

import (
	"fmt"
	"regexp"

	"github.com/rotisserie/eris"
)

// MaxClassCode is the largest class code the pairwise transition encoding can
// represent without collisions (from*100 + to).
const MaxClassCode = 99

var hexColorRe = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// ClassEntry is one land-cover category: a numeric code, a display name, and
// a legend color.
type ClassEntry struct {
	Code  int    `yaml:"code" json:"code"`
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"` // hex RGB, e.g. "#419BDF"
}

// Catalog is the ordered set of land-cover classes. Order defines legend and
// chart order; codes are unique and 1-indexed.
type Catalog []ClassEntry

// Validate checks catalog invariants: non-empty, unique positive codes below
// the encoding limit, non-empty names, well-formed colors.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return eris.New("model: catalog is empty")
	}
	seen := make(map[int]bool, len(c))
	for i, e := range c {
		if e.Code <= 0 {
			return eris.Errorf("model: catalog entry %d: code %d is not positive", i, e.Code)
		}
		if e.Code > MaxClassCode {
			return eris.Errorf("model: catalog entry %d: code %d exceeds %d, pairwise transition encoding would collide", i, e.Code, MaxClassCode)
		}
		if seen[e.Code] {
			return eris.Errorf("model: catalog entry %d: duplicate code %d", i, e.Code)
		}
		seen[e.Code] = true
		if e.Name == "" {
			return eris.Errorf("model: catalog entry %d: empty name", i)
		}
		if e.Color != "" && !hexColorRe.MatchString(e.Color) {
			return eris.Errorf("model: catalog entry %d: malformed color %q", i, e.Color)
		}
	}
	return nil
}

// Name returns the display name for a class code.
func (c Catalog) Name(code int) (string, bool) {
	for _, e := range c {
		if e.Code == code {
			return e.Name, true
		}
	}
	return "", false
}

// Codes returns the class codes in catalog order.
func (c Catalog) Codes() []int {
	codes := make([]int, len(c))
	for i, e := range c {
		codes[i] = e.Code
	}
	return codes
}

// Names returns a code -> name lookup map.
func (c Catalog) Names() map[int]string {
	names := make(map[int]string, len(c))
	for _, e := range c {
		names[e.Code] = e.Name
	}
	return names
}

// Colors returns a code -> color lookup map.
func (c Catalog) Colors() map[int]string {
	colors := make(map[int]string, len(c))
	for _, e := range c {
		colors[e.Code] = e.Color
	}
	return colors
}

func (e ClassEntry) String() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Name)
}

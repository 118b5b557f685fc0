package area

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-geo/lulc-cli/internal/model"
	"github.com/meridian-geo/lulc-cli/internal/raster"
	"github.com/meridian-geo/lulc-cli/internal/region"
	"github.com/meridian-geo/lulc-cli/pkg/geoengine"
)

func testCatalog() model.Catalog {
	return model.Catalog{
		{Code: 1, Name: "Water", Color: "#419BDF"},
		{Code: 2, Name: "Forest", Color: "#397D49"},
		{Code: 3, Name: "Crops", Color: "#E49635"},
	}
}

type stubEngine struct {
	geoengine.Client

	reqs    []geoengine.ReduceRequest
	results map[int][]geoengine.GroupResult // keyed by first cell of the image
	err     error
}

func (s *stubEngine) ReduceByGroup(ctx context.Context, req geoengine.ReduceRequest) ([]geoengine.GroupResult, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[req.Image.Bands[0].Ints[0]], nil
}

func TestRelabel(t *testing.T) {
	groups := []geoengine.GroupResult{
		{Group: 2, Value: 250_000}, // 25 ha
		{Group: 1, Value: 10_000},  // 1 ha
	}
	records, err := Relabel(groups, testCatalog(), 2024)
	require.NoError(t, err)

	// Catalog order, not group order.
	require.Len(t, records, 2)
	assert.Equal(t, model.AreaRecord{Year: 2024, ClassCode: 1, ClassName: "Water", AreaHectares: 1}, records[0])
	assert.Equal(t, model.AreaRecord{Year: 2024, ClassCode: 2, ClassName: "Forest", AreaHectares: 25}, records[1])
}

func TestRelabel_DropsZeroArea(t *testing.T) {
	groups := []geoengine.GroupResult{
		{Group: 1, Value: 0},
		{Group: 3, Value: 5_000},
	}
	records, err := Relabel(groups, testCatalog(), 2014)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].ClassCode)
	assert.InDelta(t, 0.5, records[0].AreaHectares, 1e-12)
}

func TestRelabel_MergesRepeatedGroups(t *testing.T) {
	groups := []geoengine.GroupResult{
		{Group: 1, Value: 4_000},
		{Group: 1, Value: 6_000},
	}
	records, err := Relabel(groups, testCatalog(), 2014)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 1.0, records[0].AreaHectares, 1e-12)
}

func TestRelabel_Errors(t *testing.T) {
	tests := []struct {
		name    string
		groups  []geoengine.GroupResult
		wantErr string
	}{
		{
			name:    "unknown class code",
			groups:  []geoengine.GroupResult{{Group: 42, Value: 100}},
			wantErr: "not in catalog",
		},
		{
			name:    "negative area",
			groups:  []geoengine.GroupResult{{Group: 1, Value: -5}},
			wantErr: "negative area",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Relabel(tt.groups, testCatalog(), 2024)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEpochAreas(t *testing.T) {
	engine := &stubEngine{results: map[int][]geoengine.GroupResult{
		1: {{Group: 1, Value: 30_000}, {Group: 2, Value: 70_000}},
	}}
	classes, err := raster.NewGridFromCells(2, 1, []int{1, 2})
	require.NoError(t, err)
	rgn, err := region.FromBounds("test", 0, 0, 1, 1)
	require.NoError(t, err)

	a := New(engine, testCatalog(), Config{Scale: 10, BestEffort: true})
	records, err := a.EpochAreas(context.Background(), classes, 2024, rgn)
	require.NoError(t, err)

	require.Len(t, engine.reqs, 1)
	req := engine.reqs[0]
	assert.Equal(t, "class", req.GroupBand)
	assert.Equal(t, "area", req.ValueBand)
	assert.Equal(t, "sum", req.Reducer)
	assert.Equal(t, 10, req.Scale)
	assert.True(t, req.BestEffort)
	assert.NotEmpty(t, req.Region)

	require.Len(t, records, 2)
	assert.InDelta(t, 3, records[0].AreaHectares, 1e-12)
	assert.InDelta(t, 7, records[1].AreaHectares, 1e-12)
}

func TestAllEpochs_ChronologicalOrder(t *testing.T) {
	engine := &stubEngine{results: map[int][]geoengine.GroupResult{
		1: {{Group: 1, Value: 10_000}},
		2: {{Group: 2, Value: 20_000}},
		3: {{Group: 3, Value: 30_000}},
	}}
	grid := func(code int) *raster.Grid {
		g, err := raster.NewGridFromCells(1, 1, []int{code})
		require.NoError(t, err)
		return g
	}
	rgn, err := region.FromBounds("test", 0, 0, 1, 1)
	require.NoError(t, err)

	a := New(engine, testCatalog(), Config{Scale: 10})
	records, err := a.AllEpochs(context.Background(), map[int]*raster.Grid{
		2033: grid(3),
		2014: grid(1),
		2024: grid(2),
	}, rgn)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []int{2014, 2024, 2033}, []int{records[0].Year, records[1].Year, records[2].Year})
	assert.Equal(t, "Water", records[0].ClassName)
	assert.Equal(t, "Forest", records[1].ClassName)
	assert.Equal(t, "Crops", records[2].ClassName)
}

package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-geo/lulc-cli/internal/model"
)

const registryYAML = `
classes:
  - code: 1
    name: Water
    color: "#419BDF"
  - code: 2
    name: Trees
    color: "#397D49"
epochs:
  - year: 2014
    asset: projects/demo/lulc-2014
  - year: 2024
    asset: projects/demo/lulc-2024
forecast_year: 2033
elevation_asset: projects/demo/dem
`

func writeRegistry(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	reg, err := Load(writeRegistry(t, registryYAML))
	require.NoError(t, err)

	assert.Equal(t, model.Catalog{
		{Code: 1, Name: "Water", Color: "#419BDF"},
		{Code: 2, Name: "Trees", Color: "#397D49"},
	}, reg.Catalog)
	assert.Equal(t, 2033, reg.ForecastYear)
	assert.Equal(t, "projects/demo/dem", reg.ElevationAsset)
	assert.Equal(t, Epoch{Year: 2014, Asset: "projects/demo/lulc-2014"}, reg.Earliest())
	assert.Equal(t, Epoch{Year: 2024, Asset: "projects/demo/lulc-2024"}, reg.Latest())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeRegistry(t, "classes: [not: closed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func validRegistry() Registry {
	return Registry{
		Catalog: model.Catalog{
			{Code: 1, Name: "Water"},
			{Code: 2, Name: "Trees"},
		},
		Epochs: []Epoch{
			{Year: 2014, Asset: "a/2014"},
			{Year: 2024, Asset: "a/2024"},
		},
		ForecastYear:   2033,
		ElevationAsset: "a/dem",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Registry)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Registry) {},
		},
		{
			name:    "single epoch",
			mutate:  func(r *Registry) { r.Epochs = r.Epochs[:1] },
			wantErr: "at least two",
		},
		{
			name: "out of order",
			mutate: func(r *Registry) {
				r.Epochs[0], r.Epochs[1] = r.Epochs[1], r.Epochs[0]
			},
			wantErr: "chronological",
		},
		{
			name: "duplicate year",
			mutate: func(r *Registry) {
				r.Epochs[1].Year = r.Epochs[0].Year
			},
			wantErr: "duplicate",
		},
		{
			name:    "missing asset",
			mutate:  func(r *Registry) { r.Epochs[1].Asset = "" },
			wantErr: "no raster asset",
		},
		{
			name:    "forecast not after last epoch",
			mutate:  func(r *Registry) { r.ForecastYear = 2024 },
			wantErr: "not after",
		},
		{
			name:    "missing elevation asset",
			mutate:  func(r *Registry) { r.ElevationAsset = "" },
			wantErr: "elevation",
		},
		{
			name:    "bad catalog",
			mutate:  func(r *Registry) { r.Catalog = nil },
			wantErr: "catalog",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistry()
			tt.mutate(&reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

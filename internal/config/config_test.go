package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "lulc.db", cfg.Store.SQLitePath)
	assert.Equal(t, "registry.yaml", cfg.Registry.Path)
	assert.Equal(t, 10.0, cfg.Engine.RateLimit)
	assert.Equal(t, 3000, cfg.Analysis.SampleCount)
	assert.Equal(t, 0.8, cfg.Analysis.SplitThreshold)
	assert.Equal(t, 50, cfg.Analysis.Trees)
	assert.Equal(t, 10, cfg.Analysis.Scale)
	assert.True(t, cfg.Analysis.BestEffort)
	assert.Equal(t, "out", cfg.Report.OutDir)
	assert.True(t, cfg.Report.XLSX)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("LULC_ENGINE_BASE_URL", "https://engine.example.com")
	t.Setenv("LULC_ANALYSIS_SAMPLE_COUNT", "500")
	t.Setenv("LULC_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://engine.example.com", cfg.Engine.BaseURL)
	assert.Equal(t, 500, cfg.Analysis.SampleCount)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func validConfig() *Config {
	return &Config{
		Engine: EngineConfig{BaseURL: "https://engine.example.com"},
		Region: RegionConfig{Name: "duhok", Bounds: []float64{42.5, 36.5, 43.5, 37.2}},
		Analysis: AnalysisConfig{
			SampleCount:    3000,
			SplitThreshold: 0.8,
			Trees:          50,
			Scale:          10,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid with bounds",
			mutate: func(*Config) {},
		},
		{
			name: "valid with shapefile",
			mutate: func(c *Config) {
				c.Region.Bounds = nil
				c.Region.Shapefile = "boundary.shp"
			},
		},
		{
			name:    "missing engine url",
			mutate:  func(c *Config) { c.Engine.BaseURL = "" },
			wantErr: "base_url",
		},
		{
			name:    "zero sample count",
			mutate:  func(c *Config) { c.Analysis.SampleCount = 0 },
			wantErr: "sample_count",
		},
		{
			name:    "threshold at one",
			mutate:  func(c *Config) { c.Analysis.SplitThreshold = 1 },
			wantErr: "split_threshold",
		},
		{
			name:    "zero trees",
			mutate:  func(c *Config) { c.Analysis.Trees = 0 },
			wantErr: "trees",
		},
		{
			name:    "zero scale",
			mutate:  func(c *Config) { c.Analysis.Scale = 0 },
			wantErr: "scale",
		},
		{
			name: "no region",
			mutate: func(c *Config) {
				c.Region.Bounds = nil
				c.Region.Shapefile = ""
			},
			wantErr: "region",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine" mapstructure:"engine"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Region   RegionConfig   `yaml:"region" mapstructure:"region"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// EngineConfig holds compute engine endpoint settings.
type EngineConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey    string  `yaml:"api_key" mapstructure:"api_key"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// StoreConfig configures the run persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// RegistryConfig locates the class catalog / epoch registry file.
type RegistryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// RegionConfig defines the analysis boundary. A shapefile takes precedence
// over explicit bounds.
type RegionConfig struct {
	Name      string    `yaml:"name" mapstructure:"name"`
	Shapefile string    `yaml:"shapefile" mapstructure:"shapefile"`
	Bounds    []float64 `yaml:"bounds" mapstructure:"bounds"` // minX, minY, maxX, maxY
}

// AnalysisConfig holds sampling, split, and classifier parameters.
type AnalysisConfig struct {
	SampleCount    int     `yaml:"sample_count" mapstructure:"sample_count"`
	SplitThreshold float64 `yaml:"split_threshold" mapstructure:"split_threshold"`
	Trees          int     `yaml:"trees" mapstructure:"trees"`
	Scale          int     `yaml:"scale" mapstructure:"scale"`
	Seed           int64   `yaml:"seed" mapstructure:"seed"`
	BestEffort     bool    `yaml:"best_effort" mapstructure:"best_effort"`
}

// ReportConfig configures chart and export output.
type ReportConfig struct {
	OutDir string `yaml:"out_dir" mapstructure:"out_dir"`
	XLSX   bool   `yaml:"xlsx" mapstructure:"xlsx"`
}

// ServerConfig configures the report HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LULC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "lulc.db")
	v.SetDefault("registry.path", "registry.yaml")
	v.SetDefault("engine.rate_limit", 10.0)
	v.SetDefault("analysis.sample_count", 3000)
	v.SetDefault("analysis.split_threshold", 0.8)
	v.SetDefault("analysis.trees", 50)
	v.SetDefault("analysis.scale", 10)
	v.SetDefault("analysis.seed", 0)
	v.SetDefault("analysis.best_effort", true)
	v.SetDefault("report.out_dir", "out")
	v.SetDefault("report.xlsx", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks settings that must be present before a run starts.
func (c *Config) Validate() error {
	if c.Engine.BaseURL == "" {
		return eris.New("config: engine.base_url is required")
	}
	if c.Analysis.SampleCount <= 0 {
		return eris.Errorf("config: analysis.sample_count %d is not positive", c.Analysis.SampleCount)
	}
	if c.Analysis.SplitThreshold <= 0 || c.Analysis.SplitThreshold >= 1 {
		return eris.Errorf("config: analysis.split_threshold %g outside (0,1)", c.Analysis.SplitThreshold)
	}
	if c.Analysis.Trees <= 0 {
		return eris.Errorf("config: analysis.trees %d is not positive", c.Analysis.Trees)
	}
	if c.Analysis.Scale <= 0 {
		return eris.Errorf("config: analysis.scale %d is not positive", c.Analysis.Scale)
	}
	if c.Region.Shapefile == "" && len(c.Region.Bounds) != 4 {
		return eris.New("config: region requires a shapefile or four bounds values")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

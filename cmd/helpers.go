package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/meridian-geo/lulc-cli/internal/region"
	"github.com/meridian-geo/lulc-cli/internal/registry"
	"github.com/meridian-geo/lulc-cli/internal/store"
	"github.com/meridian-geo/lulc-cli/pkg/geoengine"
)

// initStore opens the configured persistence backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "init postgres store")
		}
		return st, nil
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, eris.Wrap(err, "init sqlite store")
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEngine builds the compute engine client from config.
func initEngine() geoengine.Client {
	return geoengine.NewClient(cfg.Engine.APIKey,
		geoengine.WithBaseURL(cfg.Engine.BaseURL),
		geoengine.WithRateLimit(cfg.Engine.RateLimit),
	)
}

// loadRegistry loads and validates the class catalog / epoch registry.
func loadRegistry() (*registry.Registry, error) {
	return registry.Load(cfg.Registry.Path)
}

// loadRegion builds the analysis boundary from config. A shapefile takes
// precedence over explicit bounds.
func loadRegion() (*region.Region, error) {
	if cfg.Region.Shapefile != "" {
		return region.FromShapefile(cfg.Region.Name, cfg.Region.Shapefile)
	}
	if len(cfg.Region.Bounds) == 4 {
		b := cfg.Region.Bounds
		return region.FromBounds(cfg.Region.Name, b[0], b[1], b[2], b[3])
	}
	return nil, eris.New("region requires a shapefile or four bounds values")
}

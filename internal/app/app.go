// Package app wires configuration into a pricing engine and quote store for
// the CLI and server binaries.
package app

import (
	"context"

	"go.uber.org/zap"

	"fencecost/adapters/pricing"
	"fencecost/adapters/storage"
	"fencecost/core/catalog"
	"fencecost/core/cost"
	"fencecost/internal/config"
)

// App holds the long-lived components built from configuration
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Engine *cost.Engine

	// Source describes where the pricebook was loaded from
	Source string
}

// New loads the pricebook named by cfg and builds an engine around it
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c, source, err := LoadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("pricebook loaded",
		zap.String("source", source),
		zap.Int("items", c.Len()))

	return &App{
		Config: cfg,
		Logger: logger,
		Engine: cost.NewEngine(c, cfg.Estimate.Ratios, logger.Named("engine")),
		Source: source,
	}, nil
}

// LoadCatalog resolves the pricebook source. File sources take the first
// existing candidate path.
func LoadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, string, error) {
	opts := pricing.Options{
		Kind:  pricing.SourceKind(cfg.Pricebook.Source),
		DSN:   cfg.Pricebook.DSN,
		Table: cfg.Pricebook.Table,
		Sheet: cfg.Pricebook.Sheet,
	}

	source := string(pricing.SourcePostgres)
	if opts.Kind != pricing.SourcePostgres {
		path, err := pricing.Discover(cfg.PricebookCandidates()...)
		if err != nil {
			return nil, "", err
		}
		opts.Path = path
		source = path
	}

	c, err := pricing.Open(ctx, opts)
	if err != nil {
		return nil, "", err
	}
	return c, source, nil
}

// OpenStore opens the configured quote store
func OpenStore(cfg *config.Config) (storage.Store, error) {
	return storage.Open(storage.Options{
		Backend: storage.Backend(cfg.Storage.Backend),
		Path:    cfg.Storage.Path,
	})
}

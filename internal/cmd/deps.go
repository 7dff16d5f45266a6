package cmd

import (
	"context"
	"errors"

	"github.com/fulmenhq/gofulmen/logging"

	"github.com/phishnix/phishnix/internal/config"
	"github.com/phishnix/phishnix/internal/core/analyzer"
	"github.com/phishnix/phishnix/internal/core/store"
	"github.com/phishnix/phishnix/internal/domainintel"
	"github.com/phishnix/phishnix/internal/engine"
)

// buildAnalyzer assembles the verdict pipeline from the loaded configuration.
func buildAnalyzer(cfg *config.Config, logger *logging.Logger) (*analyzer.Analyzer, error) {
	if cfg == nil {
		return nil, errors.New("config not loaded")
	}

	service, err := engine.NewService(cfg.Engine)
	if err != nil {
		return nil, err
	}

	var intel analyzer.IntelSource
	if cfg.Intel.Enabled {
		intel = domainintel.New(cfg.Intel.Timeout, cfg.Intel.WhoisFallback)
	}

	return &analyzer.Analyzer{
		Engine:  service,
		Intel:   intel,
		Logger:  logger,
		Timeout: cfg.Engine.DefaultTimeout,
	}, nil
}

// openStore opens the verdict store and applies migrations.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if cfg == nil {
		return nil, errors.New("config not loaded")
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	return st, nil
}

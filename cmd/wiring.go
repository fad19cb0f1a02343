package cmd

import (
	"context"
	"fmt"

	"bucket-diff/core/config"
	"bucket-diff/core/database"
	"bucket-diff/feature/replication"

	"go.uber.org/zap"
)

// openCheckpoints connects to the checkpoint database. Without a database the
// checkpoints live in memory and are lost when the process exits.
func openCheckpoints(cfg *config.Config, logg *zap.Logger) (replication.Checkpoints, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Warn("Checkpoint database unavailable, keeping checkpoints in memory", zap.Error(err))
		return replication.NewMemoryCheckpoints(), nil
	}

	store := replication.NewCheckpointStore(db)
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate checkpoint table: %w", err)
	}
	logg.Info("Connected to checkpoint database", zap.String("driver", db.Dialector.Name()))
	return store, nil
}

// newService builds both endpoints and the replication service for the configured pair.
func newService(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*replication.Service, error) {
	if err := cfg.Diff.Validate(); err != nil {
		return nil, err
	}

	rcfg := cfg.Diff.RetryConfig()
	first, err := replication.NewEndpoint(ctx, cfg.First, rcfg, logg)
	if err != nil {
		return nil, fmt.Errorf("failed to create first endpoint: %w", err)
	}
	second, err := replication.NewEndpoint(ctx, cfg.Second, rcfg, logg)
	if err != nil {
		return nil, fmt.Errorf("failed to create second endpoint: %w", err)
	}

	store, err := openCheckpoints(cfg, logg)
	if err != nil {
		return nil, err
	}

	return replication.NewService(first, second, cfg.Diff, store, logg), nil
}

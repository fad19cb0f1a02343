package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"bucket-diff/core/config"
	"bucket-diff/core/logger"
	"bucket-diff/feature/replication"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// checkpointCmd is the parent command for checkpoint operations.
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or reset the saved diff progress",
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the checkpoint of the configured pair as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *replication.Service, l *zap.Logger) error {
			status, err := svc.Status(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		})
	},
}

var checkpointResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the checkpoint so the next diff starts over",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *replication.Service, l *zap.Logger) error {
			return svc.Reset(ctx)
		})
	},
}

func init() {
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointResetCmd)
	RootCmd.AddCommand(checkpointCmd)
}

func withService(fn func(ctx context.Context, svc *replication.Service, l *zap.Logger) error) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	svc, err := newService(ctx, cfg, l)
	if err != nil {
		return err
	}
	return fn(ctx, svc, l)
}

package cmd

import (
	"fmt"
	"os"

	"bucket-diff/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "bucket-diff",
	Short: "Resumable bucket diff and replication service",
	Long: `Bucket Diff compares two object storage buckets page by page and reports
the keys and versions that must be copied to bring the second bucket up to date.
Progress is checkpointed, so a diff over millions of keys can be resumed at any round.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding with the development config gives readable CLI errors.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

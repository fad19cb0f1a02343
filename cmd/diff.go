package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bucket-diff/core/config"
	"bucket-diff/core/logger"
	"bucket-diff/feature/replication"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the diff command
	diffRounds int
	diffReset  bool
	diffApply  bool
	diffDryRun bool
	yesConfirm bool
)

// diffCmd runs diff rounds for the configured pair.
var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the configured buckets (report + optionally replicate)",
	Long: `Run diff rounds between the first and second bucket.

Every round lists one page from each side that needs more data, classifies the keys
it can decide and checkpoints the rest. An interrupted diff continues from the
last saved round.

Examples:
  # Report only, until both listings are exhausted
  bucket-diff diff

  # Run at most 10 rounds
  bucket-diff diff --rounds 10

  # Start over, discarding the saved checkpoint
  bucket-diff diff --reset

  # Copy missing versions to the second bucket (with interactive confirmation)
  bucket-diff diff --apply

  # Copy with auto-confirm (non-interactive)
  bucket-diff diff --apply --yes`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().IntVar(&diffRounds, "rounds", 0, "Stop after this many rounds (0 = until done)")
	diffCmd.Flags().BoolVar(&diffReset, "reset", false, "Discard the saved checkpoint before running")
	diffCmd.Flags().BoolVar(&diffApply, "apply", false, "Execute the planned copies and deletes")
	diffCmd.Flags().BoolVar(&diffDryRun, "dry-run", false, "Force dry-run (no mutations even with --apply --yes)")
	diffCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	l = l.With(zap.String("pair", svc.PairKey()))

	if diffReset {
		if err := svc.Reset(ctx); err != nil {
			return err
		}
	}

	opts := replication.ApplyOptions{DryRun: diffDryRun}
	if diffApply && !diffDryRun {
		// Rounds checkpoint as they go, so confirmation happens before the first one.
		if !confirmDestructiveAction(cfg.Second.Bucket) {
			l.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
		opts.Confirmed = true
	}

	l.Info("Starting diff", zap.Int("max_rounds", diffRounds), zap.Bool("apply", opts.Enabled()))
	report, err := svc.RunToCompletion(ctx, diffRounds, opts, true)
	if report != nil {
		printDiffReport(l, report)
	}
	if errors.Is(err, context.Canceled) {
		l.Warn("Diff interrupted, progress up to the last completed round is saved")
		return nil
	}
	if err != nil {
		return fmt.Errorf("diff failed: %w", err)
	}

	switch {
	case !report.Done:
		l.Info("Round limit reached, run again to continue")
	case !opts.Enabled() && report.Summary.CopyActions+report.Summary.DeleteActions > 0:
		l.Info("No changes were made. Use --apply to replicate the planned actions.")
	}
	return nil
}

// printDiffReport prints a formatted diff report using logger.
func printDiffReport(l *zap.Logger, report *replication.RunReport) {
	s := report.Summary

	l.Info("Diff report",
		zap.Int("rounds", report.Rounds),
		zap.Bool("done", report.Done),
		zap.Int("only_in_first", s.OnlyInFirst),
		zap.Int("only_in_second", s.OnlyInSecond),
		zap.Int("differing", s.Differing),
		zap.Int("equal", s.Equal),
	)

	if len(report.Actions) == 0 {
		return
	}

	l.Info("Planned actions",
		zap.Int("copy_actions", s.CopyActions),
		zap.Int64("copy_bytes", s.CopyBytes),
		zap.Int("delete_actions", s.DeleteActions),
		zap.Int("report_actions", s.ReportActions),
		zap.Int("executed", report.Executed),
	)

	maxShow := 5
	if len(report.Actions) < maxShow {
		maxShow = len(report.Actions)
	}
	for _, action := range report.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.Int("versions", len(action.Versions)),
			zap.String("reason", action.Reason),
		)
	}
	if len(report.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(report.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(bucket string) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  Type 'yes' to write to bucket %s: ", bucket)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}

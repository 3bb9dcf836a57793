package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/career-services/internal/observability"
	"github.com/jonathan/career-services/internal/records"
	"github.com/jonathan/career-services/internal/types"
	"github.com/jonathan/career-services/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	reconcileCascadeID string
	reconcileStale     time.Duration
	reconcileVerbose   bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Replay cascades that stopped part way",
	Long: `Replays the remaining steps of partial cascades, and of running cascades older than --stale.
With --cascade, only that cascade is replayed. Every step is idempotent, so running this more than once is safe.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileCascadeID, "cascade", "", "Cascade ID to reconcile (default: all partial and stale cascades)")
	reconcileCmd.Flags().DurationVar(&reconcileStale, "stale", 0, "Age after which a running cascade is treated as abandoned (default from config)")
	reconcileCmd.Flags().BoolVarP(&reconcileVerbose, "verbose", "v", false, "Print the cascade logs to stderr")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	repo := records.New(store)
	svc := workflow.New(repo, workflow.WithLogger(logger))
	printer := observability.NewPrinter(cmd.ErrOrStderr())
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if reconcileCascadeID != "" {
		cascade, err := svc.Reconcile(ctx, reconcileCascadeID)
		if reconcileVerbose {
			printer.PrintCascade(cascade)
		}
		if err != nil {
			return fmt.Errorf("failed to reconcile cascade %s: %w", reconcileCascadeID, err)
		}
		return enc.Encode(cascade)
	}

	if reconcileVerbose {
		partial, err := repo.ListCascades(ctx, types.CascadePartial)
		if err != nil {
			return err
		}
		printer.PrintCascades("PARTIAL CASCADES", partial)
	}

	staleAfter := cfg.StaleAfter()
	if cmd.Flags().Changed("stale") {
		staleAfter = reconcileStale
	}
	report, err := svc.ReconcileAll(ctx, staleAfter)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	if err := enc.Encode(report); err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d cascade(s) could not be reconciled", len(report.Failed))
	}
	return nil
}

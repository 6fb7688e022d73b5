package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"content-manager/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	purgeBundles  bool
	dryRunBundles bool
	yesConfirm    bool
)

// reconcileCmd compares the build index, the output directory and the bucket.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile bundles between build index, disk and storage",
	Long: `Reconcile generated bundles to detect orphans, missing bundles and stale
bucket objects. Optionally purge them.

Examples:
  # Report only
  reconcile

  # Purge with interactive confirmation
  reconcile --purge

  # Purge with auto-confirm (non-interactive)
  reconcile --purge --yes`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&purgeBundles, "purge", false, "Enable purge (forget broken records, delete orphans and stale objects)")
	reconcileCmd.Flags().BoolVar(&dryRunBundles, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	l := rt.logg

	in := reconcile.Inputs{
		Cache:     rt.cache,
		Fs:        rt.fs,
		OutputDir: rt.cfg.Pipeline.OutputDir,
		Client:    rt.store,
		Bucket:    rt.cfg.Storage.Bucket,
	}
	opts := reconcile.ReconcileOptions{
		DoPurge: purgeBundles,
		DryRun:  dryRunBundles,
	}

	// Step 1: Plan (always runs)
	l.Info("Planning reconciliation...")
	plan, err := reconcile.ReconcileWithPlan(ctx, in, opts)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}

	// Step 2: Print report
	printReconcileReport(l, plan)

	if !purgeBundles {
		l.Info("No actions requested. Use --purge to remove orphans and stale objects.")
		return nil
	}
	if dryRunBundles {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if len(plan.Actions) == 0 {
		l.Info("No actions required.")
		return nil
	}

	// Step 3: Apply (if confirmed)
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}
	opts.Confirmed = true

	l.Info("Applying actions...")
	executed, err := reconcile.ApplyPlan(ctx, in, plan, opts)
	if err != nil {
		return fmt.Errorf("failed to apply plan after %d action(s): %w", executed, err)
	}
	l.Info("Successfully executed actions", zap.Int("count", executed))
	return nil
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.ReconcilePlan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("total_items", s.TotalItems),
		zap.Bool("bucket_checked", s.BucketChecked),
		zap.Int("missing_index", s.MissingIndex),
		zap.Int("missing_disk", s.MissingDisk),
		zap.Int("missing_bucket", s.MissingBucket),
		zap.Int("mismatches", s.Mismatches),
	)

	if len(plan.Actions) == 0 {
		return
	}
	l.Info("Planned actions", zap.Int("total_actions", s.PurgeActions))

	// Show sample of actions (max 5 for logger)
	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("target", action.Target),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

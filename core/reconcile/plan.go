package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
)

// ReconcileWithPlan performs reconciliation and returns a plan with results and actions.
// It does NOT execute actions; use ApplyPlan for that.
func ReconcileWithPlan(ctx context.Context, in Inputs, opts ReconcileOptions) (*ReconcilePlan, error) {
	idx, err := loadIndices(ctx, in)
	if err != nil {
		return nil, err
	}

	results := reconcileFromIndices(idx)
	summary, actions := buildPlanFromResults(results, idx, opts)

	return &ReconcilePlan{
		Results: results,
		Actions: actions,
		Summary: summary,
	}, nil
}

// ApplyPlan executes the actions in a reconcile plan.
// Returns the number of actions executed and any error encountered.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, in Inputs, plan *ReconcilePlan, opts ReconcileOptions) (executed int, err error) {
	// Safety check: do not execute if not confirmed or dry-run
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}

	for _, action := range plan.Actions {
		switch action.Type {
		case ActionForgetRecord:
			if in.Cache == nil {
				return executed, errors.New("no build cache to forget records in")
			}
			in.Cache.Forget(action.Target)
		case ActionDeleteDisk:
			if err := in.Fs.Remove(action.Target); err != nil && !os.IsNotExist(err) {
				return executed, fmt.Errorf("failed to delete %s: %w", action.Target, err)
			}
		case ActionDeleteBucket:
			if in.Client == nil {
				return executed, errors.New("no storage client to delete objects with")
			}
			if err := in.Client.RemoveObject(ctx, in.Bucket, action.Target, minio.RemoveObjectOptions{}); err != nil {
				return executed, fmt.Errorf("failed to delete object %s: %w", action.Target, err)
			}
		default:
			return executed, fmt.Errorf("unknown action type %q", action.Type)
		}
		executed++
	}

	return executed, nil
}

// ReconcileAndApply is a convenience wrapper that plans and optionally applies actions.
// It returns the plan, number of actions executed, and any error.
func ReconcileAndApply(ctx context.Context, in Inputs, opts ReconcileOptions) (*ReconcilePlan, int, error) {
	plan, err := ReconcileWithPlan(ctx, in, opts)
	if err != nil {
		return nil, 0, err
	}

	executed, err := ApplyPlan(ctx, in, plan, opts)
	return plan, executed, err
}

// buildPlanFromResults generates a summary and action plan from reconciliation results.
func buildPlanFromResults(results []ReconcileResult, idx *indices, opts ReconcileOptions) (PlanSummary, []Action) {
	summary := PlanSummary{TotalItems: len(results), BucketChecked: idx.bucketChecked}
	actions := []Action{}

	for _, result := range results {
		if !result.IndexPresent && (result.DiskPresent || result.BucketPresent) {
			summary.MissingIndex++
		}
		if result.IndexPresent && !result.DiskPresent {
			summary.MissingDisk++
		}
		if idx.bucketChecked && result.IndexPresent && !hasCurrentObject(result.Key, idx) {
			summary.MissingBucket++
		}
		if len(result.Mismatch) > 0 {
			summary.Mismatches++
		}

		if !opts.DoPurge {
			continue
		}

		planned := planActions(result, idx)
		summary.PurgeActions += len(planned)
		actions = append(actions, planned...)
	}

	return summary, actions
}

// planActions decides the purge actions of one key.
//
// Without a record the key is an orphan: its bundle and all its objects go.
// With a record, a bundle that is gone or no longer matches the record
// loses the record so the next pipeline run rebuilds it, and bucket objects
// for fingerprints other than the recorded one are deleted.
func planActions(result ReconcileResult, idx *indices) []Action {
	var actions []Action
	disk := idx.disk[result.Key]

	if !result.IndexPresent {
		if result.DiskPresent {
			actions = append(actions, Action{
				Type:   ActionDeleteDisk,
				Key:    result.Key,
				Target: disk.path,
				Reason: "bundle has no build record",
			})
		}
		for _, obj := range idx.bucket[result.Key] {
			actions = append(actions, Action{
				Type:   ActionDeleteBucket,
				Key:    result.Key,
				Target: obj.name,
				Reason: "object has no build record",
			})
		}
		return actions
	}

	item := idx.index[result.Key]
	switch {
	case !result.DiskPresent:
		actions = append(actions, Action{
			Type:   ActionForgetRecord,
			Key:    result.Key,
			Target: item.owner,
			Reason: "bundle missing on disk",
		})
	case disk.fp != item.artifact:
		actions = append(actions, Action{
			Type:   ActionForgetRecord,
			Key:    result.Key,
			Target: item.owner,
			Reason: "bundle on disk does not match its record",
		})
	}

	for _, obj := range idx.bucket[result.Key] {
		if obj.fp == item.artifact {
			continue
		}
		actions = append(actions, Action{
			Type:   ActionDeleteBucket,
			Key:    result.Key,
			Target: obj.name,
			Reason: fmt.Sprintf("stale object, recorded artifact is %s", item.artifact.Short()),
		})
	}
	return actions
}

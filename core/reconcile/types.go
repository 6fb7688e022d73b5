package reconcile

import (
	"content-manager/core/buildcache"
	"content-manager/core/storage"

	"github.com/spf13/afero"
)

// Inputs names the stores taking part in a reconciliation. Client is
// optional; without it the bucket is not inspected.
type Inputs struct {
	Cache     *buildcache.Cache
	Fs        afero.Fs
	OutputDir string
	Client    storage.Client
	Bucket    string
}

// ReconcileResult represents the reconciliation output for a single owner.
type ReconcileResult struct {
	// Key is the file-name-safe owner id.
	Key string `json:"key"`

	// Owner is the owner id as recorded in the index, when there is a record.
	Owner string `json:"owner,omitempty"`

	// IndexPresent indicates whether the build index holds a record.
	IndexPresent bool `json:"index_present"`

	// DiskPresent indicates whether the output directory holds the bundle.
	DiskPresent bool `json:"disk_present"`

	// BucketPresent indicates whether the bucket holds any object for the owner.
	BucketPresent bool `json:"bucket_present"`

	// Mismatch describes fingerprint disagreements, e.g.
	// "disk: index=1a2b3c4d disk=5e6f7a8b".
	Mismatch []string `json:"mismatch"`
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionForgetRecord drops a build index record.
	ActionForgetRecord ActionType = "forget_record"
	// ActionDeleteDisk deletes a bundle from the output directory.
	ActionDeleteDisk ActionType = "delete_disk"
	// ActionDeleteBucket deletes an object from the bucket.
	ActionDeleteBucket ActionType = "delete_bucket"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the owner key the action belongs to.
	Key string `json:"key"`

	// Target is what the action removes: an owner id, a file path or an
	// object name depending on Type.
	Target string `json:"target"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// ReconcilePlan contains reconciliation results and planned actions.
type ReconcilePlan struct {
	Results []ReconcileResult `json:"results"`
	Actions []Action          `json:"actions"`
	Summary PlanSummary       `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// TotalItems is the total number of unique owner keys.
	TotalItems int `json:"total_items"`

	// BucketChecked reports whether the bucket took part.
	BucketChecked bool `json:"bucket_checked"`

	// MissingIndex counts keys found on disk or in the bucket without a record.
	MissingIndex int `json:"missing_index"`

	// MissingDisk counts records whose bundle is not on disk.
	MissingDisk int `json:"missing_disk"`

	// MissingBucket counts records without an object for the recorded
	// fingerprint. Zero when the bucket was not checked.
	MissingBucket int `json:"missing_bucket"`

	// Mismatches counts keys with fingerprint discrepancies.
	Mismatches int `json:"mismatches"`

	// PurgeActions counts planned actions.
	PurgeActions int `json:"purge_actions"`
}

// ReconcileOptions controls reconcile behavior for purge operations.
type ReconcileOptions struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// DoPurge plans removal of orphans and stale objects.
	DoPurge bool

	// Confirmed indicates user has confirmed destructive actions.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}

package reconcile

import (
	"context"
	"fmt"
	"sort"
)

// ReconcileAll performs a full reconciliation across all owners.
// It builds the three indices, computes the union of keys and returns a
// result for each key indicating presence and mismatches.
func ReconcileAll(ctx context.Context, in Inputs) ([]ReconcileResult, error) {
	idx, err := loadIndices(ctx, in)
	if err != nil {
		return nil, err
	}
	return reconcileFromIndices(idx), nil
}

// reconcileFromIndices builds sorted results from loaded indices.
func reconcileFromIndices(idx *indices) []ReconcileResult {
	union := buildUnion(idx)

	results := make([]ReconcileResult, 0, len(union))
	for key := range union {
		results = append(results, buildResult(key, idx))
	}

	// Sort results by key for deterministic output
	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})
	return results
}

// buildUnion creates a union of all keys from the index, disk and bucket.
func buildUnion(idx *indices) map[string]struct{} {
	union := make(map[string]struct{})
	for key := range idx.index {
		union[key] = struct{}{}
	}
	for key := range idx.disk {
		union[key] = struct{}{}
	}
	for key := range idx.bucket {
		union[key] = struct{}{}
	}
	return union
}

// buildResult creates a ReconcileResult for a single key.
func buildResult(key string, idx *indices) ReconcileResult {
	item, indexPresent := idx.index[key]
	disk, diskPresent := idx.disk[key]
	objects := idx.bucket[key]

	result := ReconcileResult{
		Key:           key,
		Owner:         item.owner,
		IndexPresent:  indexPresent,
		DiskPresent:   diskPresent,
		BucketPresent: len(objects) > 0,
		Mismatch:      []string{},
	}

	if !indexPresent {
		return result
	}

	if diskPresent && disk.fp != item.artifact {
		result.Mismatch = append(result.Mismatch,
			fmt.Sprintf("disk: index=%s disk=%s", item.artifact.Short(), disk.fp.Short()))
	}

	if idx.bucketChecked && len(objects) > 0 {
		for _, obj := range objects {
			if obj.fp != item.artifact {
				result.Mismatch = append(result.Mismatch, fmt.Sprintf("bucket: stale object %s", obj.fp.Short()))
			}
		}
	}

	return result
}

// hasCurrentObject reports whether the bucket holds the recorded artifact.
func hasCurrentObject(key string, idx *indices) bool {
	item, ok := idx.index[key]
	if !ok {
		return false
	}
	for _, obj := range idx.bucket[key] {
		if obj.fp == item.artifact {
			return true
		}
	}
	return false
}

// Package reconcile compares the three places a generated bundle lives:
// the build cache index, the output directory on disk and the object
// storage bucket.
//
// Drift between them builds up over time. Owners disappear from the plugins
// directory but keep their records, bundles are deleted or edited by hand,
// and every rebuild published to the bucket leaves the previous
// content-addressed object behind.
//
// # Architecture
//
// 1. Engine: Loads the three indices concurrently, builds the union of
// owner keys and reports presence and fingerprint mismatches per key.
//
// 2. Plan: Turns results into a summary and, when purging is requested, a
// list of actions (forget a record, delete a file, delete an object).
//
// 3. Apply: Executes a plan. Nothing is mutated unless the options are
// confirmed and not a dry run.
//
// Keys are owner ids in their file-name-safe form, the same form used for
// artifact file names and bucket folders.
//
// # Usage Example
//
//	in := reconcile.Inputs{Cache: cache, Fs: fs, OutputDir: "generated/bundles", Client: client, Bucket: "content"}
//	plan, executed, err := reconcile.ReconcileAndApply(ctx, in, reconcile.Options{DoPurge: true, Confirmed: true})
package reconcile

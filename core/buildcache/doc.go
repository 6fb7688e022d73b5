// Package buildcache decides whether an owner's artifact must be rebuilt.
//
// The cache maps an owner (a plugin) to the fingerprint of the source entries
// it was last built from and the fingerprint of the artifact that build
// produced. A rebuild is required unless both still hold:
//
//  1. the current source fingerprint equals the recorded one, and
//  2. the artifact file still exists and re-hashes to the recorded value.
//
// The second check catches artifacts deleted or modified out of band without
// any filesystem notification machinery. Every failure during the check is
// treated as "not cached": the cache fails open to a rebuild and never skips
// a needed one.
//
// # Persistence
//
// Records live in a sync.Map and are updated synchronously, so a RecordBuild
// is visible to the very next IsCached. The whole index is then written by a
// background persister that runs at most one save at a time and coalesces
// bursts of RecordBuild calls into a single trailing save. Save failures are
// logged and otherwise ignored; memory stays authoritative for the process.
//
// Two stores are available:
//
//   - FileStore: one JSON document written atomically (temp file + rename).
//   - DBStore: a gorm table replaced wholesale inside one transaction.
//
// A missing index is created empty on Load. A corrupt one is fatal
// (ErrCorruptIndex): a cache that cannot be trusted must not gate builds.
//
// # Usage
//
//	cache := buildcache.New(buildcache.NewFileStore(fs, cfg.Cache.IndexPath), fs, logger)
//	if err := cache.Load(ctx); err != nil {
//	    logger.Fatal("Build cache unusable", zap.Error(err))
//	}
//	defer cache.Close()
//
//	if !cache.IsCached(owner, sourceFP, artifactPath) {
//	    // rebuild, then:
//	    _ = cache.RecordBuild(owner, sourceFP, artifactPath)
//	}
package buildcache

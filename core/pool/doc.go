// Package pool resolves named binary resources lazily from a weighted set of
// candidates.
//
// A Pool is built once from a list of entries, each pointing at a content
// entry inside some Source. Nothing is read at construction time: the first
// request for an entry reads and decodes it, and the decoded value is kept
// for the lifetime of the pool. Concurrent first requests for the same key
// share a single load.
//
// An entry whose load fails (missing from its source, unreadable, or
// rejected by the decoder) is quarantined. Quarantine is permanent; a pool
// has to be rebuilt to retry it.
//
// # Weighted draws
//
// ResolveRandom draws r uniformly from [0, total) where total is the summed
// weight of the entries that are not quarantined, then walks the entries in
// declaration order subtracting weights. The first entry that brings r below
// zero is the candidate, so zero-weight entries are never drawn. If the
// candidate fails to load it is quarantined and the whole draw starts over
// against the remaining entries. When nothing is left the pool returns its
// fallback value.
//
//	p, err := pool.New("ruins", entries, decodeSchematic, pool.WithLogger[*Schematic](logger))
//	s, ok := p.ResolveRandom(ctx, rand.New(rand.NewPCG(seed, seed)))
//	if !ok {
//	    // pool exhausted, s is the fallback
//	}
package pool

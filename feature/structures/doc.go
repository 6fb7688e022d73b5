// Package structures serves structure schematics out of weighted pools.
//
// Pools are declared in a YAML file. Each pool belongs to one owner and lists
// entries by content identifier (resolved through the owner's data index) or
// by explicit path:
//
//	pools:
//	  - name: village_houses
//	    owner: alpha
//	    entries:
//	      - id: alpha:structures/small_house
//	        weight: 3
//	      - path: data/alpha/structures/tower.cbor.lz4
//
// Weight defaults to 1. Entries are only read when first requested; a
// schematic that cannot be read or decoded is quarantined for the lifetime
// of the loaded pools.
//
// Schematics are CBOR documents, optionally wrapped in an LZ4 or zstd frame.
//
// # HTTP Endpoints
//
//   - GET /structures : Lists pools with their keys and load statistics.
//   - GET /structures/:pool/random : Weighted draw (supports ?seed=N).
//   - GET /structures/:pool/:key : Resolves one entry by key.
package structures

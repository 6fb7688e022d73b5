// Package content defines the content-source boundary and indexes the
// entries a source exposes.
//
// A Source is anything that can list raw entries by logical path and open a
// byte stream for one of them: a plugin directory (DirSource), a plugin
// archive (ZipSource) or a prefix in an object storage bucket (BucketSource).
// The rest of the system never learns how a source is populated.
//
// # Index
//
// BuildIndex walks every non-directory entry of a source once and classifies
// it by its path:
//
//	data/<namespace>/<type>/<key>.<ext>    -> Data entry, id "<namespace>:<type>/<key>"
//	assets/<namespace>/<type>/<key>.<ext>  -> Asset entry
//	data/<namespace>/<key>.<ext>           -> Data entry, id "<namespace>:<key>"
//
// Paths under data/ or assets/ with fewer than three segments are rejected
// with a warning; the rest of the scan continues. Metadata descriptors
// (pack.mcmeta and friends) never enter the data collection.
//
// An Index is immutable. When a source reloads, build a new one.
//
// # Discovery
//
// Discover maps every sub-directory and every .zip/.jar archive of a plugins
// directory to an owner name, which is the unit the build pipeline caches and
// publishes artifacts for.
package content

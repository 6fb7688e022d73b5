// Package pipeline turns each owner's content into a published bundle.
//
// For every owner the pipeline indexes the owner's Source, fingerprints the
// selected entries and asks the build cache whether the artifact on disk is
// still the build of that fingerprint. Only on a miss does it run the
// Transform; the result is recorded in the cache and handed to a Publisher.
// The resulting Descriptor replaces the owner's previous one in the Registry.
//
// A failure for one owner withdraws that owner's descriptor and is logged;
// other owners are unaffected. Run processes many owners with bounded
// concurrency and returns a Report.
package pipeline

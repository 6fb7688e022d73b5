// Package fingerprint computes content digests used for change detection.
//
// A Fingerprint is a fixed-size BLAKE3 digest of a byte sequence. Identical
// bytes always produce identical fingerprints, which makes them suitable as
// cache keys and as validity signals for previously produced artifacts. They
// are compared for equality only and carry no integrity guarantee against a
// malicious writer.
//
// # Textual Form
//
// Fingerprints serialize as 64 lowercase hex characters. The type implements
// encoding.TextMarshaler, so it can be embedded directly in JSON documents and
// database rows.
//
// # Usage
//
//	fp := fingerprint.Of(data)
//
//	fp, err := fingerprint.File(fs, "generated/bundles/example.zip")
//
//	b := fingerprint.NewBuilder()
//	_ = b.Add("assets/example/textures/stone.png", file)
//	sourceFP := b.Sum()
package fingerprint

package buildcache

import (
	"errors"

	"content-manager/core/fingerprint"
)

// ErrCorruptIndex marks a persisted index that exists but cannot be read.
var ErrCorruptIndex = errors.New("build cache index is corrupt")

// Record is the last successful build of one owner.
type Record struct {
	Owner    string
	Source   fingerprint.Fingerprint
	Artifact fingerprint.Fingerprint
}

// indexEntry is the persisted form of a Record, keyed by owner.
type indexEntry struct {
	SourceFingerprint   fingerprint.Fingerprint `json:"sourceFingerprint"`
	ArtifactFingerprint fingerprint.Fingerprint `json:"artifactFingerprint"`
}

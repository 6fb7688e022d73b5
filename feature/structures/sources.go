package structures

import (
	"path"

	"content-manager/core/content"
	"content-manager/core/storage"
)

// BucketFolder is the bucket folder holding remotely hosted pool owners.
const BucketFolder = "structures"

// WithBucketOwners returns sources extended with a bucket-backed source for
// every declared owner that is not available locally. Local sources win.
func WithBucketOwners(decls *Declarations, sources map[string]content.Source, client storage.Client, bucket string) map[string]content.Source {
	out := make(map[string]content.Source, len(sources))
	for owner, src := range sources {
		out[owner] = src
	}
	if client == nil || decls == nil {
		return out
	}
	for _, d := range decls.Pools {
		if _, ok := out[d.Owner]; ok {
			continue
		}
		out[d.Owner] = content.NewBucketSource(client, bucket, path.Join(BucketFolder, d.Owner))
	}
	return out
}

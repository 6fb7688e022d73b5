// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface. Published bundles
// are uploaded through it, plugin content can be read from a bucket prefix,
// and the integrity feature checks the bucket layout with it. Both AWS S3 and
// self-hosted MinIO instances are supported.
//
// # Client Interface
//
// The Client interface keeps feature code independent of the provider and
// lets tests substitute the testify mock in core/storage/mocks.
//
// # Helpers
//
//   - EnsureBucket: creates the target bucket on first use.
//   - IsNotFound: classifies NoSuchKey / NoSuchBucket responses.
//   - ObjectURL: builds the public URL of an uploaded object.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage

package pipeline

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"content-manager/core/fingerprint"
	"content-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
)

// Publisher makes a built artifact reachable and returns its URI.
type Publisher interface {
	Publish(ctx context.Context, owner, artifactPath string, fp fingerprint.Fingerprint) (string, error)
}

// Publisher kinds accepted in configuration.
const (
	PublisherLocal  = "local"
	PublisherBucket = "bucket"
)

// ArtifactRoute is the HTTP prefix the server mounts the output directory on.
const ArtifactRoute = "/artifacts"

// LocalPublisher serves artifacts straight from the output directory.
type LocalPublisher struct {
	// BaseURL is prepended to the artifact route; empty yields relative URIs.
	BaseURL string
}

// Publish returns the static route of the artifact. The fingerprint is
// appended as a version parameter so clients refetch changed bundles.
func (p LocalPublisher) Publish(_ context.Context, _ string, artifactPath string, fp fingerprint.Fingerprint) (string, error) {
	return fmt.Sprintf("%s%s/%s?v=%s",
		strings.TrimSuffix(p.BaseURL, "/"), ArtifactRoute, filepath.Base(artifactPath), fp.Short()), nil
}

// BucketPublisher uploads artifacts to object storage under a
// content-addressed name, skipping uploads that already exist.
type BucketPublisher struct {
	client    storage.Client
	fs        afero.Fs
	bucket    string
	publicURL string
}

// NewBucketPublisher returns a publisher uploading into bucket.
func NewBucketPublisher(client storage.Client, fs afero.Fs, bucket, publicURL string) *BucketPublisher {
	return &BucketPublisher{client: client, fs: fs, bucket: bucket, publicURL: publicURL}
}

// BucketPrefix is the top-level folder published bundles are stored under.
const BucketPrefix = "bundles"

// ObjectName returns the object key of an owner's artifact.
func ObjectName(owner string, fp fingerprint.Fingerprint) string {
	return path.Join(BucketPrefix, SanitizeOwner(owner), fp.String()+".zip")
}

// Publish uploads the artifact unless an object with its fingerprint exists.
func (p *BucketPublisher) Publish(ctx context.Context, owner, artifactPath string, fp fingerprint.Fingerprint) (string, error) {
	object := ObjectName(owner, fp)
	uri := storage.ObjectURL(p.publicURL, p.bucket, object)

	_, err := p.client.StatObject(ctx, p.bucket, object, minio.StatObjectOptions{})
	if err == nil {
		return uri, nil
	}
	if !storage.IsNotFound(err) {
		return "", fmt.Errorf("checking %s: %w", object, err)
	}

	f, err := p.fs.Open(artifactPath)
	if err != nil {
		return "", fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat artifact: %w", err)
	}

	_, err = p.client.PutObject(ctx, p.bucket, object, f, info.Size(), minio.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", object, err)
	}
	return uri, nil
}

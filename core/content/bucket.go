package content

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"content-manager/core/storage"

	"github.com/minio/minio-go/v7"
)

// BucketSource serves the objects below a prefix of a storage bucket.
type BucketSource struct {
	client storage.Client
	bucket string
	prefix string
}

// NewBucketSource returns a source over bucket/prefix.
func NewBucketSource(client storage.Client, bucket, prefix string) *BucketSource {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &BucketSource{client: client, bucket: bucket, prefix: prefix}
}

// Entries lists every object below the prefix.
func (s *BucketSource) Entries(ctx context.Context) ([]RawEntry, error) {
	opts := minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}

	var entries []RawEntry
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing %s/%s: %w", s.bucket, s.prefix, obj.Err)
		}
		rel := strings.TrimPrefix(obj.Key, s.prefix)
		if rel == "" {
			continue
		}
		entries = append(entries, RawEntry{
			Path: cleanPath(rel),
			Size: obj.Size,
			Dir:  strings.HasSuffix(obj.Key, "/"),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Open downloads one object.
func (s *BucketSource) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	key := s.prefix + cleanPath(p)
	// GetObject is lazy for real minio clients, so existence is checked first.
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	rc, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", key, err)
	}
	return rc, nil
}

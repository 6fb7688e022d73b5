package reconcile

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"content-manager/core/buildcache"
	"content-manager/core/fingerprint"
	"content-manager/core/pipeline"
	"content-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

type indexItem struct {
	owner    string
	artifact fingerprint.Fingerprint
}

type diskItem struct {
	path string
	fp   fingerprint.Fingerprint
}

type bucketObject struct {
	name string
	fp   fingerprint.Fingerprint
}

// indices holds the three views of the bundles, keyed by owner key.
type indices struct {
	index         map[string]indexItem
	disk          map[string]diskItem
	bucket        map[string][]bucketObject
	bucketChecked bool
}

// loadIndices builds all three indices concurrently.
func loadIndices(ctx context.Context, in Inputs) (*indices, error) {
	idx := &indices{bucketChecked: in.Client != nil}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		idx.index = loadIndex(in.Cache)
		return nil
	})
	g.Go(func() error {
		disk, err := loadDisk(in.Fs, in.OutputDir)
		idx.disk = disk
		return err
	})
	g.Go(func() error {
		if in.Client == nil {
			idx.bucket = map[string][]bucketObject{}
			return nil
		}
		bucket, err := loadBucket(gctx, in.Client, in.Bucket)
		idx.bucket = bucket
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return idx, nil
}

func loadIndex(cache *buildcache.Cache) map[string]indexItem {
	out := make(map[string]indexItem)
	if cache == nil {
		return out
	}
	for _, rec := range cache.Records() {
		out[pipeline.SanitizeOwner(rec.Owner)] = indexItem{owner: rec.Owner, artifact: rec.Artifact}
	}
	return out
}

// loadDisk hashes every bundle in the output directory. A missing directory
// is an empty index.
func loadDisk(fs afero.Fs, dir string) (map[string]diskItem, error) {
	out := make(map[string]diskItem)
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".zip") {
			continue
		}
		p := filepath.Join(dir, info.Name())
		fp, err := fingerprint.File(fs, p)
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(info.Name(), ".zip")] = diskItem{path: p, fp: fp}
	}
	return out, nil
}

// loadBucket lists published objects in a single recursive pass. Objects
// that do not follow the <prefix>/<key>/<fingerprint>.zip layout are ignored.
func loadBucket(ctx context.Context, client storage.Client, bucket string) (map[string][]bucketObject, error) {
	out := make(map[string][]bucketObject)
	opts := minio.ListObjectsOptions{Prefix: pipeline.BucketPrefix + "/", Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", bucket, obj.Err)
		}
		key, fp, ok := parseObjectName(obj.Key)
		if !ok {
			continue
		}
		out[key] = append(out[key], bucketObject{name: obj.Key, fp: fp})
	}
	return out, nil
}

func parseObjectName(name string) (string, fingerprint.Fingerprint, bool) {
	rest, ok := strings.CutPrefix(name, pipeline.BucketPrefix+"/")
	if !ok {
		return "", fingerprint.Fingerprint{}, false
	}
	key, file := path.Split(rest)
	key = strings.TrimSuffix(key, "/")
	if key == "" || strings.Contains(key, "/") || !strings.HasSuffix(file, ".zip") {
		return "", fingerprint.Fingerprint{}, false
	}
	fp, err := fingerprint.Parse(strings.TrimSuffix(file, ".zip"))
	if err != nil {
		return "", fingerprint.Fingerprint{}, false
	}
	return key, fp, true
}

package reconcile

import (
	"context"
	"errors"
	"testing"

	"content-manager/core/buildcache"
	"content-manager/core/fingerprint"
	"content-manager/core/pipeline"
	"content-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const outputDir = "out"

type fixture struct {
	fs     afero.Fs
	cache  *buildcache.Cache
	client *mocks.Client
	stale  fingerprint.Fingerprint
}

func (f *fixture) inputs() Inputs {
	return Inputs{Cache: f.cache, Fs: f.fs, OutputDir: outputDir, Client: f.client, Bucket: "content"}
}

func bundlePath(key string) string {
	return outputDir + "/" + key + ".zip"
}

// newFixture sets up four owners:
//   - alpha: recorded, on disk, current and one stale object in the bucket
//   - beta: recorded, bundle deleted from disk
//   - delta: recorded, bundle edited on disk
//   - gamma: not recorded, bundle and object left behind
func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	cache := buildcache.New(buildcache.NewFileStore(fs, "cache/index.json"), fs, nil)
	require.NoError(t, cache.Load(context.Background()))
	t.Cleanup(cache.Close)

	for _, owner := range []string{"alpha", "beta", "delta"} {
		require.NoError(t, afero.WriteFile(fs, bundlePath(owner), []byte(owner+" bundle"), 0o644))
		require.NoError(t, cache.RecordBuild(owner, fingerprint.Of([]byte(owner)), bundlePath(owner)))
	}
	require.NoError(t, fs.Remove(bundlePath("beta")))
	require.NoError(t, afero.WriteFile(fs, bundlePath("delta"), []byte("edited"), 0o644))
	require.NoError(t, afero.WriteFile(fs, bundlePath("gamma"), []byte("gamma bundle"), 0o644))
	require.NoError(t, afero.WriteFile(fs, outputDir+"/notes.txt", []byte("ignored"), 0o644))

	stale := fingerprint.Of([]byte("alpha old bundle"))
	objects := []minio.ObjectInfo{
		{Key: pipeline.ObjectName("alpha", fingerprint.Of([]byte("alpha bundle")))},
		{Key: pipeline.ObjectName("alpha", stale)},
		{Key: pipeline.ObjectName("gamma", fingerprint.Of([]byte("gamma bundle")))},
		{Key: "bundles/readme.txt"},
		{Key: "bundles/alpha/not-a-fingerprint.zip"},
	}

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "content", mock.Anything).Return(
		func(context.Context, string, minio.ListObjectsOptions) <-chan minio.ObjectInfo {
			ch := make(chan minio.ObjectInfo, len(objects))
			for _, obj := range objects {
				ch <- obj
			}
			close(ch)
			return ch
		})

	return &fixture{fs: fs, cache: cache, client: client, stale: stale}
}

func resultsByKey(results []ReconcileResult) map[string]ReconcileResult {
	out := make(map[string]ReconcileResult, len(results))
	for _, r := range results {
		out[r.Key] = r
	}
	return out
}

func TestReconcileAll_PresenceFlags(t *testing.T) {
	f := newFixture(t)

	results, err := ReconcileAll(context.Background(), f.inputs())
	require.NoError(t, err)
	require.Len(t, results, 4)

	keys := make([]string, 0, len(results))
	for _, r := range results {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"alpha", "beta", "delta", "gamma"}, keys)

	byKey := resultsByKey(results)

	alpha := byKey["alpha"]
	assert.Equal(t, "alpha", alpha.Owner)
	assert.True(t, alpha.IndexPresent)
	assert.True(t, alpha.DiskPresent)
	assert.True(t, alpha.BucketPresent)
	assert.Equal(t, []string{"bucket: stale object " + f.stale.Short()}, alpha.Mismatch)

	beta := byKey["beta"]
	assert.True(t, beta.IndexPresent)
	assert.False(t, beta.DiskPresent)
	assert.False(t, beta.BucketPresent)
	assert.Empty(t, beta.Mismatch)

	delta := byKey["delta"]
	require.Len(t, delta.Mismatch, 1)
	assert.Contains(t, delta.Mismatch[0], "disk: index=")

	gamma := byKey["gamma"]
	assert.False(t, gamma.IndexPresent)
	assert.True(t, gamma.DiskPresent)
	assert.True(t, gamma.BucketPresent)
	assert.Empty(t, gamma.Owner)
}

func TestReconcileAll_WithoutBucket(t *testing.T) {
	f := newFixture(t)
	in := f.inputs()
	in.Client = nil

	results, err := ReconcileAll(context.Background(), in)
	require.NoError(t, err)

	byKey := resultsByKey(results)
	assert.Empty(t, byKey["alpha"].Mismatch)
	assert.False(t, byKey["gamma"].BucketPresent)
	f.client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileAll_MissingOutputDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	results, err := ReconcileAll(context.Background(), Inputs{Fs: fs, OutputDir: "nowhere"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReconcileAll_BucketListingError(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "content", mock.Anything).Return(
		func(context.Context, string, minio.ListObjectsOptions) <-chan minio.ObjectInfo {
			ch := make(chan minio.ObjectInfo, 1)
			ch <- minio.ObjectInfo{Err: errors.New("access denied")}
			close(ch)
			return ch
		})

	_, err := ReconcileAll(context.Background(), Inputs{Fs: afero.NewMemMapFs(), OutputDir: outputDir, Client: client, Bucket: "content"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestParseObjectName(t *testing.T) {
	fp := fingerprint.Of([]byte("x"))

	key, got, ok := parseObjectName(pipeline.ObjectName("my plugin", fp))
	assert.True(t, ok)
	assert.Equal(t, pipeline.SanitizeOwner("my plugin"), key)
	assert.Equal(t, fp, got)

	for _, name := range []string{
		"other/alpha/" + fp.String() + ".zip",
		"bundles/" + fp.String() + ".zip",
		"bundles/a/b/" + fp.String() + ".zip",
		"bundles/alpha/" + fp.String() + ".tar",
	} {
		_, _, ok := parseObjectName(name)
		assert.False(t, ok, name)
	}
}

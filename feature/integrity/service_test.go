package integrity

import (
	"context"
	"testing"

	"content-manager/core/buildcache"
	"content-manager/core/database"
	"content-manager/core/fingerprint"
	"content-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func artifactPath(owner string) string {
	return "generated/" + owner + ".zip"
}

// newTestCache returns a loaded cache holding one recorded build for "alpha".
func newTestCache(t *testing.T, fs afero.Fs) *buildcache.Cache {
	t.Helper()
	cache := buildcache.New(buildcache.NewFileStore(fs, "generated/build-index.json"), fs, nil)
	require.NoError(t, cache.Load(context.Background()))
	t.Cleanup(cache.Close)

	require.NoError(t, afero.WriteFile(fs, artifactPath("alpha"), []byte("bundle"), 0o644))
	require.NoError(t, cache.RecordBuild("alpha", fingerprint.Of([]byte("src")), artifactPath("alpha")))
	return cache
}

func memoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func emptyListing() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func TestService_Structure(t *testing.T) {
	t.Run("Storage Disabled", func(t *testing.T) {
		svc := NewService(Options{}, nil)
		_, err := svc.CheckStructure(context.Background())
		assert.ErrorIs(t, err, ErrStorageDisabled)
		assert.ErrorIs(t, svc.FixStructure(context.Background(), []string{"bundles"}), ErrStorageDisabled)
	})

	t.Run("Missing Folders", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(emptyListing())

		svc := NewService(Options{Client: mockClient, Bucket: "test-bucket"}, nil)
		missing, err := svc.CheckStructure(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"bundles", "structures"}, missing)
	})

	t.Run("Fix", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("PutObject", mock.Anything, "test-bucket", "bundles/", mock.Anything, int64(0), mock.Anything).
			Return(minio.UploadInfo{}, nil)

		svc := NewService(Options{Client: mockClient, Bucket: "test-bucket"}, nil)
		assert.NoError(t, svc.FixStructure(context.Background(), []string{"bundles"}))
		mockClient.AssertExpectations(t)
	})
}

func TestService_Artifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache := newTestCache(t, fs)
	svc := NewService(Options{Fs: fs, Cache: cache, ArtifactPath: artifactPath}, nil)

	report := svc.CheckArtifacts()
	assert.True(t, report.Healthy())
	assert.Equal(t, []string{"alpha"}, report.OK)

	require.NoError(t, afero.WriteFile(fs, artifactPath("alpha"), []byte("tampered"), 0o644))
	report = svc.CheckArtifacts()
	assert.False(t, report.Healthy())
	assert.Equal(t, []string{"alpha"}, report.Modified)
}

func TestService_Database(t *testing.T) {
	db := memoryDB(t)
	require.NoError(t, buildcache.NewDBStore(db).Save(context.Background(), nil))

	svc := NewService(Options{DB: db}, nil)
	report, err := svc.CheckDatabase()
	require.NoError(t, err)
	assert.True(t, report.Exists)
	assert.Equal(t, "ok", report.Status)
}

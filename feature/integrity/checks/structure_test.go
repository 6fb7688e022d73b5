package checks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"content-manager/core/fingerprint"
	"content-manager/core/pipeline"
	"content-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestCheckStructure(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "content").Return(false, nil)

		_, err := CheckStructure(context.Background(), mockClient, "content")
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("Bucket Check Fails", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "content").Return(false, errors.New("dial tcp: refused"))

		_, err := CheckStructure(context.Background(), mockClient, "content")
		assert.ErrorContains(t, err, "refused")
	})

	t.Run("All Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "content").Return(true, nil)
		ch := make(chan minio.ObjectInfo)
		close(ch)
		mockClient.On("ListObjects", mock.Anything, "content", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		missing, err := CheckStructure(context.Background(), mockClient, "content")
		assert.NoError(t, err)
		assert.Equal(t, RequiredFolders, missing)
	})

	t.Run("All Present", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "content").Return(true, nil)

		for _, folder := range RequiredFolders {
			ch := make(chan minio.ObjectInfo, 1)
			ch <- minio.ObjectInfo{Key: folder + "/"}
			close(ch)
			prefix := folder + "/"
			mockClient.On("ListObjects", mock.Anything, "content", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
				return opts.Prefix == prefix
			})).Return((<-chan minio.ObjectInfo)(ch))
		}

		missing, err := CheckStructure(context.Background(), mockClient, "content")
		assert.NoError(t, err)
		assert.Empty(t, missing)
	})
}

func TestFixStructure(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "content", "bundles/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	err := FixStructure(context.Background(), mockClient, "content", zap.NewNop(), []string{"bundles"})
	assert.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestFixStructure_Failure(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "content", mock.Anything, mock.Anything, int64(0), mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied"))

	err := FixStructure(context.Background(), mockClient, "content", zap.NewNop(), []string{"bundles", "structures"})
	assert.Error(t, err)
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestRequiredFolders_CoverPublishedBundles(t *testing.T) {
	name := pipeline.ObjectName("alpha", fingerprint.Of([]byte("bundle")))
	assert.True(t, strings.HasPrefix(name, folderPrefix(RequiredFolders[0])), name)
	assert.Equal(t, "structures/", folderPrefix(RequiredFolders[1]))
	assert.Equal(t, "bundles/", folderPrefix("bundles/"))
}

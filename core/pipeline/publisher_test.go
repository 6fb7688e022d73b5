package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"content-manager/core/fingerprint"
	"content-manager/core/pipeline"
	"content-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBucketPublisher(t *testing.T) {
	fp := fingerprint.Of([]byte("bundle"))
	object := pipeline.ObjectName("alpha", fp)
	notFound := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}

	setup := func(t *testing.T) (*mocks.Client, *pipeline.BucketPublisher) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "generated/alpha.zip", []byte("bundle"), 0o644))
		client := new(mocks.Client)
		return client, pipeline.NewBucketPublisher(client, fs, "content", "http://cdn.local")
	}

	t.Run("UploadsMissingObject", func(t *testing.T) {
		client, pub := setup(t)
		client.On("StatObject", mock.Anything, "content", object, mock.Anything).Return(nil, notFound)
		client.On("PutObject", mock.Anything, "content", object, mock.Anything, int64(6), mock.Anything).
			Return(minio.UploadInfo{}, nil)

		uri, err := pub.Publish(context.Background(), "alpha", "generated/alpha.zip", fp)
		require.NoError(t, err)
		assert.Equal(t, "http://cdn.local/content/bundles/alpha/"+fp.String()+".zip", uri)
		client.AssertExpectations(t)
	})

	t.Run("SkipsExistingObject", func(t *testing.T) {
		client, pub := setup(t)
		client.On("StatObject", mock.Anything, "content", object, mock.Anything).Return(minio.ObjectInfo{Key: object}, nil)

		_, err := pub.Publish(context.Background(), "alpha", "generated/alpha.zip", fp)
		require.NoError(t, err)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StatFailure", func(t *testing.T) {
		client, pub := setup(t)
		client.On("StatObject", mock.Anything, "content", object, mock.Anything).Return(nil, errors.New("connection refused"))

		_, err := pub.Publish(context.Background(), "alpha", "generated/alpha.zip", fp)
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestLocalPublisher(t *testing.T) {
	fp := fingerprint.Of([]byte("x"))
	uri, err := pipeline.LocalPublisher{}.Publish(context.Background(), "alpha", "generated/alpha.zip", fp)
	require.NoError(t, err)
	assert.Equal(t, "/artifacts/alpha.zip?v="+fp.Short(), uri)
}

func TestRegistry(t *testing.T) {
	r := pipeline.NewRegistry()
	assert.Empty(t, r.All())

	r.Publish(pipeline.Descriptor{Owner: "b", URI: "1"})
	r.Publish(pipeline.Descriptor{Owner: "a", URI: "2"})
	r.Publish(pipeline.Descriptor{Owner: "b", URI: "3"})

	d, ok := r.Get("b")
	require.True(t, ok)
	assert.Equal(t, "3", d.URI)
	assert.Len(t, r.All(), 2)
	assert.Equal(t, "a", r.All()[0].Owner)

	r.Withdraw("b")
	_, ok = r.Get("b")
	assert.False(t, ok)
}

func TestConfig_IsValidPublisher(t *testing.T) {
	tests := []struct {
		publisher string
		want      bool
	}{
		{pipeline.PublisherLocal, true},
		{pipeline.PublisherBucket, true},
		{"ftp", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pipeline.Config{Publisher: tt.publisher}.IsValidPublisher(), tt.publisher)
	}
}

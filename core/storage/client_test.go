package storage_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bucket-diff/core/storage"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestIsBucketNotFound(t *testing.T) {
	assert.True(t, storage.IsBucketNotFound(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.False(t, storage.IsBucketNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, storage.IsBucketNotFound(errors.New("dial tcp: connection refused")))
	assert.False(t, storage.IsBucketNotFound(nil))
}

func TestConfig_IsObjectStore(t *testing.T) {
	assert.True(t, storage.Config{}.IsObjectStore())
	assert.True(t, storage.Config{Backend: storage.BackendMinio}.IsObjectStore())
	assert.False(t, storage.Config{Backend: storage.BackendS3}.IsObjectStore())
	assert.False(t, storage.Config{Backend: storage.BackendFS}.IsObjectStore())
}

func TestListObjectsPage_HonoursContextWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	// Registered after Close so it runs first and unblocks the handler.
	t.Cleanup(func() { close(release) })

	client, err := storage.NewClient(storage.Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "key",
		SecretKey: "secret",
		Region:    "us-east-1",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = client.ListObjectsPage(ctx, "bucket", "", "", 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestListObjectsPage_CancelledBeforeCall(t *testing.T) {
	client, err := storage.NewClient(storage.Config{Endpoint: "localhost:9000", Region: "us-east-1"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.ListObjectsPage(ctx, "bucket", "", "", 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_EndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", storage.Config{Endpoint: "localhost:9000"}.EndpointURL())
	assert.Equal(t, "https://minio.internal", storage.Config{Endpoint: "minio.internal", UseSSL: true}.EndpointURL())
	assert.Equal(t, "http://already:9000", storage.Config{Endpoint: "http://already:9000", UseSSL: true}.EndpointURL())
	assert.Equal(t, "", storage.Config{}.EndpointURL())
}

package replication

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"bucket-diff/core/listing"
	"bucket-diff/core/retry"
	"bucket-diff/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const versionsPage = `<?xml version="1.0" encoding="UTF-8"?>
<ListVersionsResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>photos</Name>
<IsTruncated>%s</IsTruncated>
<NextKeyMarker>b</NextKeyMarker>
<NextVersionIdMarker>b2</NextVersionIdMarker>
<Version><Key>%s</Key><VersionId>%s</VersionId><IsLatest>true</IsLatest><LastModified>2024-05-01T00:00:00.000Z</LastModified><ETag>"x"</ETag><Size>1</Size></Version>
</ListVersionsResult>`

func TestNewEndpoint_MinioVersionedListingResumesServerSide(t *testing.T) {
	var mu sync.Mutex
	var queries []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query())
		first := len(queries) == 1
		mu.Unlock()

		w.Header().Set("Content-Type", "application/xml")
		if first {
			fmt.Fprintf(w, versionsPage, "true", "b", "b2")
			return
		}
		fmt.Fprintf(w, versionsPage, "false", "c", "c1")
	}))
	defer srv.Close()

	ep, err := NewEndpoint(context.Background(), storage.Config{
		Backend:   storage.BackendMinio,
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "key",
		SecretKey: "secret",
		Region:    "us-east-1",
		Bucket:    "photos",
	}, retry.Config{MaxAttempts: 1}, zap.NewNop())
	require.NoError(t, err)

	req := listing.Request{Bucket: "photos", Versioned: true, MaxKeys: 1}
	page, err := ep.Source.List(context.Background(), req)
	require.NoError(t, err)
	require.True(t, page.Truncated)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "b2", page.Entries[0].VersionID)

	req.Token = page.NextToken
	page, err = ep.Source.List(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, page.Truncated)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "c", page.Entries[0].Key)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "versions")
	assert.Empty(t, queries[0].Get("key-marker"))
	assert.Equal(t, "b", queries[1].Get("key-marker"))
	assert.Equal(t, "b2", queries[1].Get("version-id-marker"))
}

func TestNewEndpoint_Validation(t *testing.T) {
	_, err := NewEndpoint(context.Background(), storage.Config{Backend: storage.BackendMinio}, retry.Config{}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewEndpoint(context.Background(), storage.Config{Backend: storage.BackendFS, Bucket: "b"}, retry.Config{}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewEndpoint(context.Background(), storage.Config{Backend: "ftp", Bucket: "b"}, retry.Config{}, zap.NewNop())
	assert.Error(t, err)
}

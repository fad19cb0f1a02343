package listing

import (
	"context"

	"bucket-diff/core/storage"

	"github.com/minio/minio-go/v7"
)

// Minio lists buckets on MinIO or any S3-compatible store. Plain listings page through
// storage.Client; versioned listings go through ListObjectVersions so that the key and
// version-id markers of a resume token reach the server.
type Minio struct {
	client   storage.Client
	versions *S3
}

// NewMinio creates a listing source over a storage client and an S3 API client pointed at
// the same endpoint.
func NewMinio(client storage.Client, versions S3API) *Minio {
	return &Minio{client: client, versions: newS3(versions, storage.BackendMinio)}
}

// Name returns "minio".
func (m *Minio) Name() string { return storage.BackendMinio }

// List returns one page of the bucket listing.
func (m *Minio) List(ctx context.Context, req Request) (*Page, error) {
	if req.Versioned {
		return m.versions.List(ctx, req)
	}

	res, err := m.client.ListObjectsPage(ctx, req.Bucket, req.Prefix, req.Token, req.PageSize())
	if err != nil {
		return nil, m.wrap(req.Bucket, err)
	}

	page := &Page{
		Entries:   make([]Entry, 0, len(res.Contents)),
		Truncated: res.IsTruncated,
	}
	for _, obj := range res.Contents {
		page.Entries = append(page.Entries, entryFromObjectInfo(obj))
	}
	if res.IsTruncated {
		page.NextToken = res.NextContinuationToken
	}
	return page, nil
}

func (m *Minio) wrap(bucket string, err error) error {
	if storage.IsBucketNotFound(err) {
		return &BucketNotFoundError{Backend: m.Name(), Bucket: bucket, Err: err}
	}
	return Transport(m.Name(), bucket, err)
}

func entryFromObjectInfo(obj minio.ObjectInfo) Entry {
	return Entry{
		Key:            obj.Key,
		VersionID:      obj.VersionID,
		ETag:           NormalizeETag(obj.ETag),
		Size:           obj.Size,
		LastModified:   obj.LastModified,
		IsDeleteMarker: obj.IsDeleteMarker,
		IsLatest:       obj.IsLatest,
	}
}

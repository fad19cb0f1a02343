package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"bucket-diff/core/storage/mocks"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMinio_ListPage(t *testing.T) {
	client := new(mocks.Client)
	src := NewMinio(client, &fakeS3{})

	client.On("ListObjectsPage", mock.Anything, "bucket", "pre/", "tok", 2).Return(minio.ListBucketV2Result{
		Contents: []minio.ObjectInfo{
			{Key: "pre/a", ETag: "\"e1\"", Size: 3},
			{Key: "pre/b", ETag: "e2", Size: 4},
		},
		IsTruncated:           true,
		NextContinuationToken: "next",
	}, nil)

	page, err := src.List(context.Background(), Request{Bucket: "bucket", Prefix: "pre/", MaxKeys: 2, Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pre/a", "pre/b"}, keysOf(page.Entries))
	assert.Equal(t, "e1", page.Entries[0].ETag)
	assert.True(t, page.Truncated)
	assert.Equal(t, "next", page.NextToken)
	client.AssertExpectations(t)
}

func TestMinio_ListErrors(t *testing.T) {
	t.Run("BucketNotFound", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjectsPage", mock.Anything, "b", "", "", DefaultMaxKeys).
			Return(nil, minio.ErrorResponse{Code: "NoSuchBucket"})

		_, err := NewMinio(client, &fakeS3{}).List(context.Background(), Request{Bucket: "b"})
		assert.ErrorIs(t, err, ErrBucketNotFound)
	})

	t.Run("Transport", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjectsPage", mock.Anything, "b", "", "", DefaultMaxKeys).
			Return(nil, errors.New("connection reset"))

		_, err := NewMinio(client, &fakeS3{}).List(context.Background(), Request{Bucket: "b"})
		assert.True(t, IsRetryable(err))
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "minio", te.Backend)
	})
}

func TestMinio_ListVersions(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("FirstPage", func(t *testing.T) {
		client := new(mocks.Client)
		var got *s3.ListObjectVersionsInput
		api := &fakeS3{listVersions: func(in *s3.ListObjectVersionsInput) (*s3.ListObjectVersionsOutput, error) {
			got = in
			return &s3.ListObjectVersionsOutput{
				Versions: []types.ObjectVersion{
					{Key: aws.String("a"), VersionId: aws.String("a2"), ETag: aws.String("\"x\""), LastModified: aws.Time(now), IsLatest: aws.Bool(true)},
					{Key: aws.String("a"), VersionId: aws.String("a1"), ETag: aws.String("\"y\""), LastModified: aws.Time(now.Add(-time.Hour))},
				},
				DeleteMarkers: []types.DeleteMarkerEntry{
					{Key: aws.String("b"), VersionId: aws.String("b2"), LastModified: aws.Time(now), IsLatest: aws.Bool(true)},
				},
				IsTruncated:         aws.Bool(true),
				NextKeyMarker:       aws.String("b"),
				NextVersionIdMarker: aws.String("b2"),
			}, nil
		}}

		page, err := NewMinio(client, api).List(context.Background(), Request{Bucket: "b", Versioned: true, MaxKeys: 3})
		require.NoError(t, err)
		assert.Nil(t, got.KeyMarker)
		assert.Nil(t, got.VersionIdMarker)
		assert.Equal(t, int32(3), aws.ToInt32(got.MaxKeys))

		require.Len(t, page.Entries, 3)
		assert.Equal(t, []string{"a2", "a1", "b2"}, []string{page.Entries[0].VersionID, page.Entries[1].VersionID, page.Entries[2].VersionID})
		assert.True(t, page.Entries[2].IsDeleteMarker)
		assert.True(t, page.Truncated)

		marker, err := decodeMarker(page.NextToken)
		require.NoError(t, err)
		assert.Equal(t, versionMarker{Key: "b", VersionID: "b2"}, marker)
		client.AssertNotCalled(t, "ListObjectsPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ResumeSendsMarkersToServer", func(t *testing.T) {
		client := new(mocks.Client)
		var got *s3.ListObjectVersionsInput
		api := &fakeS3{listVersions: func(in *s3.ListObjectVersionsInput) (*s3.ListObjectVersionsOutput, error) {
			got = in
			return &s3.ListObjectVersionsOutput{
				Versions: []types.ObjectVersion{
					{Key: aws.String("b"), VersionId: aws.String("b1"), ETag: aws.String("\"z\""), LastModified: aws.Time(now.Add(-time.Hour))},
				},
				IsTruncated: aws.Bool(false),
			}, nil
		}}

		token := encodeMarker(versionMarker{Key: "b", VersionID: "b2"})
		page, err := NewMinio(client, api).List(context.Background(), Request{Bucket: "b", Versioned: true, MaxKeys: 3, Token: token})
		require.NoError(t, err)
		assert.Equal(t, "b", aws.ToString(got.KeyMarker))
		assert.Equal(t, "b2", aws.ToString(got.VersionIdMarker))

		require.Len(t, page.Entries, 1)
		assert.Equal(t, "b1", page.Entries[0].VersionID)
		assert.False(t, page.Truncated)
		assert.Empty(t, page.NextToken)
	})

	t.Run("ErrorsCarryMinioBackend", func(t *testing.T) {
		api := &fakeS3{listVersions: func(*s3.ListObjectVersionsInput) (*s3.ListObjectVersionsOutput, error) {
			return nil, errors.New("timeout")
		}}

		_, err := NewMinio(new(mocks.Client), api).List(context.Background(), Request{Bucket: "b", Versioned: true})
		assert.True(t, IsRetryable(err))
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "minio", te.Backend)
	})

	t.Run("BucketNotFound", func(t *testing.T) {
		api := &fakeS3{listVersions: func(*s3.ListObjectVersionsInput) (*s3.ListObjectVersionsOutput, error) {
			return nil, &types.NoSuchBucket{}
		}}

		_, err := NewMinio(new(mocks.Client), api).List(context.Background(), Request{Bucket: "b", Versioned: true})
		assert.ErrorIs(t, err, ErrBucketNotFound)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		called := false
		api := &fakeS3{listVersions: func(*s3.ListObjectVersionsInput) (*s3.ListObjectVersionsOutput, error) {
			called = true
			return &s3.ListObjectVersionsOutput{}, nil
		}}
		_, err := NewMinio(new(mocks.Client), api).List(context.Background(), Request{Bucket: "b", Versioned: true, Token: "%%"})
		assert.Error(t, err)
		assert.False(t, called)
	})
}

// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the operations the
// replication driver needs: checking bucket existence, paging through listings,
// streaming objects between buckets and batch deletes. This abstraction supports both
// AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to a bucket.
//   - MakeBucket: Creates a new bucket if needed.
//   - PutObject / GetObject: Streams content (optionally a specific version).
//   - ListObjectsPage: Fetches one ListObjectsV2 page from a continuation token.
//   - RemoveObjects: Deletes a batch of objects.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.First)
//	exists, err := client.BucketExists(ctx, cfg.First.Bucket)
package storage

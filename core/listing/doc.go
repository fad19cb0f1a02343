// Package listing defines the paginated listing contract consumed by the diff engine
// and its backend-specific implementations.
//
// A Source returns one ordered page of object-version entries for a bucket, starting
// from an opaque resume token. Pages are sorted ascending by key using byte-wise
// comparison; when versions are requested, the versions of a key are returned
// newest-first. The diff engine never branches on the backend: every store is reached
// through the same Source interface.
//
// # Variants
//
//   - Memory: in-process listing used by tests and dry runs.
//   - Minio: MinIO / S3-compatible stores through core/storage (minio-go).
//   - S3: AWS S3 through aws-sdk-go-v2 (ListObjectsV2 / ListObjectVersions).
//   - FS: a directory tree on the local filesystem, one subdirectory per bucket.
//
// # Decorators
//
//   - Retrying: retries transport errors with exponential backoff.
//   - Instrumented: records Prometheus metrics for every page.
//
// # Errors
//
// Transport failures (including timeouts) are returned as *TransportError and match
// ErrTransport; they are safe to retry. A missing bucket is returned as
// *BucketNotFoundError and matches ErrBucketNotFound; it is fatal for that side.
package listing

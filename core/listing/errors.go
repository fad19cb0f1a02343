package listing

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTransport matches any retryable listing failure.
	ErrTransport = errors.New("listing transport error")

	// ErrBucketNotFound matches a missing bucket. It is not retryable.
	ErrBucketNotFound = errors.New("bucket not found")
)

// TransportError wraps a failed listing call that may succeed when retried.
type TransportError struct {
	Backend string
	Bucket  string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s list %s: %v", e.Backend, e.Bucket, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) match.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// BucketNotFoundError reports a bucket that does not exist on its backend.
type BucketNotFoundError struct {
	Backend string
	Bucket  string
	Err     error
}

func (e *BucketNotFoundError) Error() string {
	return fmt.Sprintf("%s bucket %s does not exist", e.Backend, e.Bucket)
}

func (e *BucketNotFoundError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrBucketNotFound) match.
func (e *BucketNotFoundError) Is(target error) bool { return target == ErrBucketNotFound }

// Transport wraps err as a retryable listing error.
// A canceled caller context is returned unwrapped so it is never retried.
func Transport(backend, bucket string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransportError{Backend: backend, Bucket: bucket, Err: err}
}

// IsRetryable reports whether err is a transport failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport)
}

package diff

import (
	"errors"
	"fmt"

	"bucket-diff/core/listing"
)

// ErrStop is returned by a Run callback to end the run after the current round.
var ErrStop = errors.New("diff stopped")

// InconsistentOrderingError reports a listing that broke ascending key order.
// Continuing would risk classifying a key twice, so it is fatal.
type InconsistentOrderingError struct {
	Key     string
	PrevKey string
	Reason  string
}

func (e *InconsistentOrderingError) Error() string {
	return fmt.Sprintf("inconsistent listing order: %s (key %q after %q)", e.Reason, e.Key, e.PrevKey)
}

// MalformedEntryError reports an unusable entry at the end of a truncated page.
// The page boundary cannot be trusted, so the round should be retried.
type MalformedEntryError struct {
	Entry listing.Entry
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed entry at page boundary: key %q version %q", e.Entry.Key, e.Entry.VersionID)
}

// Is makes the error match listing.ErrTransport so it is retried like one.
func (e *MalformedEntryError) Is(target error) bool { return target == listing.ErrTransport }

// IsRetryable reports whether repeating the round from the same state may succeed.
func IsRetryable(err error) bool {
	return listing.IsRetryable(err)
}

// IsFatal reports whether the diff for a pair cannot continue without intervention.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ordering *InconsistentOrderingError
	return errors.Is(err, listing.ErrBucketNotFound) || errors.As(err, &ordering)
}

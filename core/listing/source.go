package listing

import (
	"context"
	"strings"
	"time"
)

// DefaultMaxKeys is the page size used when a request does not set one.
const DefaultMaxKeys = 1000

// Entry is a single object version as reported by a listing.
type Entry struct {
	// Key is the object name within the bucket.
	Key string `json:"key"`

	// VersionID is only set for versioned listings.
	VersionID string `json:"version_id,omitempty"`

	// ETag is the content fingerprint of this version. Delete markers have none.
	ETag string `json:"etag,omitempty"`

	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`

	// IsDeleteMarker marks a versioned tombstone.
	IsDeleteMarker bool `json:"is_delete_marker,omitempty"`

	// IsLatest is reported by versioned listings for the current version of a key.
	IsLatest bool `json:"is_latest,omitempty"`
}

// SameContent reports whether two versions carry the same content.
// Two delete markers are considered equal; a delete marker never equals an object version.
func (e Entry) SameContent(other Entry) bool {
	if e.IsDeleteMarker || other.IsDeleteMarker {
		return e.IsDeleteMarker == other.IsDeleteMarker
	}
	return NormalizeETag(e.ETag) == NormalizeETag(other.ETag)
}

// NormalizeETag strips the quotes some backends keep around ETags.
func NormalizeETag(etag string) string {
	return strings.Trim(etag, "\"")
}

// Page is one ordered slice of a bucket listing.
type Page struct {
	// Entries are sorted ascending by key, newest-first per key when versioned.
	Entries []Entry `json:"entries"`

	// Truncated is true when more entries follow this page.
	Truncated bool `json:"truncated"`

	// NextToken resumes the listing after this page. Empty when Truncated is false.
	NextToken string `json:"next_token,omitempty"`
}

// Request describes a single page fetch.
type Request struct {
	Bucket    string
	Prefix    string
	MaxKeys   int
	Versioned bool

	// Token is the resume token returned by the previous page; empty starts from the beginning.
	Token string
}

// PageSize returns the effective page size of the request.
func (r Request) PageSize() int {
	if r.MaxKeys <= 0 {
		return DefaultMaxKeys
	}
	return r.MaxKeys
}

// Source fetches ordered pages of object versions from a bucket.
//
// Implementations must return a stable ordering across calls for the same prefix and
// must be safe for concurrent use.
type Source interface {
	// List returns the page starting at req.Token.
	List(ctx context.Context, req Request) (*Page, error)

	// Name identifies the backend (e.g. "minio", "s3", "fs", "memory").
	Name() string
}

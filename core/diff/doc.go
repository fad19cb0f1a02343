// Package diff computes the difference between two bucket listings without holding either
// listing in memory.
//
// A diff runs in rounds. Each round fetches at most one page from each side, groups the
// page by key (Normalize), and walks both sides in ascending byte order (Merge). Keys that
// can be decided are classified as only in the first bucket, only in the second bucket,
// differing or equal; keys that cannot be decided yet roll forward in the returned State,
// together with the resume tokens of both listings.
//
// Every key is classified exactly once over the whole run. A round never mutates the State
// it was given, so a failed round can simply be repeated from the last saved State.
//
// Versioned listings are grouped per key, newest version first. A page that ends in the
// middle of a key's versions defers that key until the next page of the same side completes
// it. Content equality is decided by ETag: the newest version of the second bucket is looked
// up in the first bucket's history, and everything newer than the match is reported as
// differing.
package diff

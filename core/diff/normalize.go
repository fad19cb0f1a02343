package diff

import (
	"fmt"

	"bucket-diff/core/listing"
)

// Normalize groups a page by key and validates its ordering.
//
// deferred is the group left open by the previous page of the same side and lastKey the
// greatest key already finalized on that side. The returned page holds final groups in
// ascending order; on a truncated versioned page the trailing group is returned as Deferred
// instead, because its remaining versions may arrive with the next page. A final page never
// yields more than a page worth of groups: when closing deferred would exceed it, the trailing
// group is deferred too and the page is marked Drained.
func Normalize(page *listing.Page, deferred *KeyGroup, lastKey string, opts Options) (NormalizedPage, error) {
	out := NormalizedPage{Truncated: page.Truncated, NextToken: page.NextToken}

	if page.Truncated && page.NextToken == "" {
		return out, &InconsistentOrderingError{PrevKey: lastKey, Reason: "truncated page without resume token"}
	}

	entries := make([]listing.Entry, 0, len(page.Entries))
	for i, e := range page.Entries {
		if e.Key != "" && (e.IsDeleteMarker || e.ETag != "") {
			entries = append(entries, e)
			continue
		}
		if page.Truncated && i == len(page.Entries)-1 {
			return out, &MalformedEntryError{Entry: e}
		}
		out.Malformed = append(out.Malformed, e)
	}

	// Keys at or below lastKey were finalized by earlier pages. The open group may continue.
	if len(entries) > 0 {
		first := entries[0].Key
		switch {
		case deferred != nil && first == deferred.Key:
		case deferred != nil && first < deferred.Key:
			return out, &InconsistentOrderingError{Key: first, PrevKey: deferred.Key, Reason: "page starts below open key"}
		case lastKey != "" && first <= lastKey:
			return out, &InconsistentOrderingError{Key: first, PrevKey: lastKey, Reason: "page starts at or below finalized key"}
		}
	}

	var groups []KeyGroup
	for i, e := range entries {
		if i > 0 {
			prev := entries[i-1].Key
			if e.Key < prev {
				return out, &InconsistentOrderingError{Key: e.Key, PrevKey: prev, Reason: "keys not ascending"}
			}
			if e.Key == prev && !opts.Versioned {
				return out, &InconsistentOrderingError{Key: e.Key, PrevKey: prev, Reason: "duplicate key in unversioned listing"}
			}
		}
		if n := len(groups); n > 0 && groups[n-1].Key == e.Key {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, KeyGroup{Key: e.Key, Entries: []listing.Entry{e}})
	}

	if deferred != nil {
		if len(groups) > 0 && groups[0].Key == deferred.Key {
			merged := make([]listing.Entry, 0, len(deferred.Entries)+len(groups[0].Entries))
			merged = append(merged, deferred.Entries...)
			merged = append(merged, groups[0].Entries...)
			groups[0] = KeyGroup{Key: deferred.Key, Entries: merged, Dropped: deferred.Dropped}
		} else {
			groups = append([]KeyGroup{deferred.clone()}, groups...)
		}
	}

	limit := opts.maxVersions()
	for i := range groups {
		if n := len(groups[i].Entries); n > limit {
			groups[i].Dropped += n - limit
			groups[i].Entries = groups[i].Entries[:limit:limit]
		}
	}

	// A closed deferred group plus a full final page is one group more than a page holds.
	// The trailing group then stays open and is finalized by the next round without listing.
	overflow := !page.Truncated && len(groups) > opts.pageSize()
	if opts.Versioned && len(groups) > 0 && (page.Truncated || overflow) {
		last := groups[len(groups)-1]
		out.Deferred = &last
		out.Drained = overflow
		groups = groups[:len(groups)-1]
	}
	out.Groups = groups
	return out, nil
}

// describeMalformed summarizes dropped entries for outcome warnings.
func describeMalformed(side string, entries []listing.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s: dropped malformed entry key=%q version=%q", side, e.Key, e.VersionID))
	}
	return out
}

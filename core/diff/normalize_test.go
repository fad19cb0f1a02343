package diff

import (
	"testing"

	"bucket-diff/core/listing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ent(key, version, etag string) listing.Entry {
	return listing.Entry{Key: key, VersionID: version, ETag: etag}
}

func groupKeys(groups []KeyGroup) []string {
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	return keys
}

func versionIDs(entries []listing.Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.VersionID)
	}
	return ids
}

var versioned = Options{Versioned: true}

func TestNormalize_GroupsByKey(t *testing.T) {
	page := &listing.Page{Entries: []listing.Entry{
		ent("a", "a2", "x"), ent("a", "a1", "y"), ent("b", "b1", "z"),
	}}

	np, err := Normalize(page, nil, "", versioned)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, groupKeys(np.Groups))
	assert.Equal(t, []string{"a2", "a1"}, versionIDs(np.Groups[0].Entries))
	assert.Nil(t, np.Deferred)
	assert.Len(t, np.ByKey(), 2)
}

func TestNormalize_DefersTrailingGroupOfTruncatedVersionedPage(t *testing.T) {
	page := &listing.Page{
		Entries:   []listing.Entry{ent("a", "a1", "x"), ent("b", "b3", "y"), ent("b", "b2", "z")},
		Truncated: true,
		NextToken: "t1",
	}

	np, err := Normalize(page, nil, "", versioned)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, groupKeys(np.Groups))
	require.NotNil(t, np.Deferred)
	assert.Equal(t, "b", np.Deferred.Key)
	assert.Equal(t, "t1", np.NextToken)

	t.Run("ContinuationMergesVersions", func(t *testing.T) {
		next := &listing.Page{Entries: []listing.Entry{ent("b", "b1", "w"), ent("c", "c1", "v")}}
		np2, err := Normalize(next, np.Deferred, "a", versioned)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c"}, groupKeys(np2.Groups))
		assert.Equal(t, []string{"b3", "b2", "b1"}, versionIDs(np2.Groups[0].Entries))
		assert.Nil(t, np2.Deferred)
		// The previous deferred group is not modified.
		assert.Len(t, np.Deferred.Entries, 2)
	})

	t.Run("DifferentKeyFinalizesDeferred", func(t *testing.T) {
		next := &listing.Page{Entries: []listing.Entry{ent("c", "c1", "v")}, Truncated: true, NextToken: "t2"}
		np2, err := Normalize(next, np.Deferred, "a", versioned)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, groupKeys(np2.Groups))
		require.NotNil(t, np2.Deferred)
		assert.Equal(t, "c", np2.Deferred.Key)
	})

	t.Run("EmptyFinalPageFinalizesDeferred", func(t *testing.T) {
		np2, err := Normalize(&listing.Page{}, np.Deferred, "a", versioned)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, groupKeys(np2.Groups))
		assert.Nil(t, np2.Deferred)
		assert.False(t, np2.Drained)
	})

	t.Run("FullFinalPageHoldsBackLastGroup", func(t *testing.T) {
		opts := Options{Versioned: true, MaxKeys: 1}
		next := &listing.Page{Entries: []listing.Entry{ent("c", "c1", "v")}}
		np2, err := Normalize(next, np.Deferred, "a", opts)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, groupKeys(np2.Groups))
		require.NotNil(t, np2.Deferred)
		assert.Equal(t, "c", np2.Deferred.Key)
		assert.True(t, np2.Drained)
		assert.False(t, np2.Truncated)

		// The next round closes the held-back group with an empty page.
		np3, err := Normalize(&listing.Page{}, np2.Deferred, "b", opts)
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, groupKeys(np3.Groups))
		assert.Nil(t, np3.Deferred)
		assert.False(t, np3.Drained)
	})
}

func TestNormalize_UnversionedNeverDefers(t *testing.T) {
	page := &listing.Page{
		Entries:   []listing.Entry{ent("a", "", "x"), ent("b", "", "y")},
		Truncated: true,
		NextToken: "b",
	}

	np, err := Normalize(page, nil, "", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, groupKeys(np.Groups))
	assert.Nil(t, np.Deferred)
}

func TestNormalize_OrderingErrors(t *testing.T) {
	deferred := &KeyGroup{Key: "m", Entries: []listing.Entry{ent("m", "m2", "x")}}

	tests := []struct {
		name     string
		page     *listing.Page
		deferred *KeyGroup
		lastKey  string
		opts     Options
	}{
		{
			name: "Descending",
			page: &listing.Page{Entries: []listing.Entry{ent("b", "", "x"), ent("a", "", "y")}},
		},
		{
			name: "KeyReappears",
			page: &listing.Page{Entries: []listing.Entry{ent("a", "1", "x"), ent("b", "1", "y"), ent("a", "2", "z")}},
			opts: versioned,
		},
		{
			name: "DuplicateUnversioned",
			page: &listing.Page{Entries: []listing.Entry{ent("a", "", "x"), ent("a", "", "y")}},
		},
		{
			name:    "StartsAtFinalizedKey",
			page:    &listing.Page{Entries: []listing.Entry{ent("c", "", "x")}},
			lastKey: "c",
		},
		{
			name:     "StartsBelowOpenKey",
			page:     &listing.Page{Entries: []listing.Entry{ent("k", "1", "x")}},
			deferred: deferred,
			lastKey:  "a",
			opts:     versioned,
		},
		{
			name: "TruncatedWithoutToken",
			page: &listing.Page{Entries: []listing.Entry{ent("a", "", "x")}, Truncated: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.page, tt.deferred, tt.lastKey, tt.opts)
			var ordering *InconsistentOrderingError
			require.ErrorAs(t, err, &ordering)
			assert.True(t, IsFatal(err))
			assert.False(t, IsRetryable(err))
		})
	}
}

func TestNormalize_MalformedEntries(t *testing.T) {
	t.Run("DroppedAndReported", func(t *testing.T) {
		page := &listing.Page{Entries: []listing.Entry{
			ent("a", "", "x"),
			ent("", "", "y"),
			ent("b", "", ""),
			{Key: "c", VersionID: "dm", IsDeleteMarker: true},
		}}

		np, err := Normalize(page, nil, "", versioned)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, groupKeys(np.Groups))
		assert.Len(t, np.Malformed, 2)
	})

	t.Run("AtTruncatedBoundary", func(t *testing.T) {
		page := &listing.Page{
			Entries:   []listing.Entry{ent("a", "", "x"), ent("b", "", "")},
			Truncated: true,
			NextToken: "b",
		}

		_, err := Normalize(page, nil, "", Options{})
		var malformed *MalformedEntryError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "b", malformed.Entry.Key)
		assert.True(t, IsRetryable(err))
		assert.False(t, IsFatal(err))
	})
}

func TestNormalize_HistoryLimit(t *testing.T) {
	opts := Options{Versioned: true, MaxVersionsPerKey: 2}
	page := &listing.Page{
		Entries: []listing.Entry{
			ent("a", "a4", "4"), ent("a", "a3", "3"), ent("a", "a2", "2"), ent("a", "a1", "1"),
		},
		Truncated: true,
		NextToken: "t",
	}

	np, err := Normalize(page, nil, "", opts)
	require.NoError(t, err)
	require.NotNil(t, np.Deferred)
	assert.Equal(t, []string{"a4", "a3"}, versionIDs(np.Deferred.Entries))
	assert.Equal(t, 2, np.Deferred.Dropped)

	next := &listing.Page{Entries: []listing.Entry{ent("a", "a0", "0")}}
	np2, err := Normalize(next, np.Deferred, "", opts)
	require.NoError(t, err)
	require.Len(t, np2.Groups, 1)
	assert.Equal(t, []string{"a4", "a3"}, versionIDs(np2.Groups[0].Entries))
	assert.Equal(t, 3, np2.Groups[0].Dropped)
}

package listing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFS_ListSortedAndPaged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bucket/a-c", "1")
	writeFile(t, root, "bucket/a/b", "2")
	writeFile(t, root, "bucket/z", "3")

	src := NewFS(root)
	ctx := context.Background()

	first, err := src.List(ctx, Request{Bucket: "bucket", MaxKeys: 2})
	require.NoError(t, err)
	// '-' (0x2d) sorts before '/' (0x2f).
	assert.Equal(t, []string{"a-c", "a/b"}, keysOf(first.Entries))
	assert.True(t, first.Truncated)
	assert.Equal(t, "a/b", first.NextToken)

	second, err := src.List(ctx, Request{Bucket: "bucket", MaxKeys: 2, Token: first.NextToken})
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, keysOf(second.Entries))
	assert.False(t, second.Truncated)
}

func listAll(t *testing.T, src *FS, req Request) []string {
	t.Helper()
	var keys []string
	for pages := 0; ; pages++ {
		require.Less(t, pages, 100)
		page, err := src.List(context.Background(), req)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Entries), req.PageSize())
		keys = append(keys, keysOf(page.Entries)...)
		if !page.Truncated {
			return keys
		}
		req.Token = page.NextToken
	}
}

func TestFS_PagesFollowByteOrderAcrossDirectories(t *testing.T) {
	root := t.TempDir()
	for _, key := range []string{"a/b", "a-c", "a/d/e", "ab", "a/d-f", "b", "a.", "a0/x"} {
		writeFile(t, root, "bucket/"+key, key)
	}
	want := []string{"a-c", "a.", "a/b", "a/d-f", "a/d/e", "a0/x", "ab", "b"}

	src := NewFS(root)
	for _, maxKeys := range []int{1, 2, 3, 1000} {
		assert.Equal(t, want, listAll(t, src, Request{Bucket: "bucket", MaxKeys: maxKeys}), "max_keys=%d", maxKeys)
	}
}

func TestFS_TokenAndPrefix(t *testing.T) {
	root := t.TempDir()
	for _, key := range []string{"a/b", "a/d/e", "a-c", "b/c", "b/d", "c"} {
		writeFile(t, root, "bucket/"+key, key)
	}
	src := NewFS(root)

	t.Run("TokenInsideDirectory", func(t *testing.T) {
		assert.Equal(t, []string{"a/d/e", "b/c", "b/d", "c"}, listAll(t, src, Request{Bucket: "bucket", Token: "a/b"}))
	})

	t.Run("TokenPastDirectory", func(t *testing.T) {
		// "a/" sorts before "a0", so the whole a/ subtree is behind the token.
		assert.Equal(t, []string{"b/c", "b/d", "c"}, listAll(t, src, Request{Bucket: "bucket", Token: "a0"}))
	})

	t.Run("Prefix", func(t *testing.T) {
		assert.Equal(t, []string{"a-c", "a/b", "a/d/e"}, listAll(t, src, Request{Bucket: "bucket", Prefix: "a"}))
		assert.Equal(t, []string{"a/d/e"}, listAll(t, src, Request{Bucket: "bucket", Prefix: "a/d"}))
		assert.Equal(t, []string{"b/d"}, listAll(t, src, Request{Bucket: "bucket", Prefix: "b/", Token: "b/c"}))
	})

	t.Run("UnreadableSubtreeBehindTokenIsSkipped", func(t *testing.T) {
		// A subtree that is never read cannot fail the listing.
		require.NoError(t, os.Chmod(filepath.Join(root, "bucket", "a", "d"), 0o000))
		t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "bucket", "a", "d"), 0o755) })
		assert.Equal(t, []string{"b/c", "b/d", "c"}, listAll(t, src, Request{Bucket: "bucket", Token: "a0"}))
	})
}

func TestFS_EntryFields(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bucket/docs/readme.txt", "hello")

	page, err := NewFS(root).List(context.Background(), Request{Bucket: "bucket", Prefix: "docs/"})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)

	e := page.Entries[0]
	assert.Equal(t, "docs/readme.txt", e.Key)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", e.ETag)
	assert.Equal(t, int64(5), e.Size)
	assert.False(t, e.LastModified.IsZero())
}

func TestFS_MissingBucket(t *testing.T) {
	_, err := NewFS(t.TempDir()).List(context.Background(), Request{Bucket: "nope"})
	assert.ErrorIs(t, err, ErrBucketNotFound)
}

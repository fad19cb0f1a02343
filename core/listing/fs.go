package listing

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FS lists a directory tree as a bucket. Each bucket is a subdirectory of root and
// object keys are slash-separated paths relative to it. Filesystems have no versions,
// so every key has exactly one entry; ETags are the hex MD5 of the file content.
type FS struct {
	root string
}

// NewFS creates a filesystem listing source rooted at root.
func NewFS(root string) *FS {
	return &FS{root: root}
}

// Name returns "fs".
func (f *FS) Name() string { return "fs" }

// List returns one page. The resume token is the last key of the previous page.
// Only the directories needed to fill the page are read.
func (f *FS) List(ctx context.Context, req Request) (*Page, error) {
	base := filepath.Join(f.root, req.Bucket)
	info, err := os.Stat(base)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, &BucketNotFoundError{Backend: f.Name(), Bucket: req.Bucket, Err: err}
	}
	if err != nil {
		return nil, Transport(f.Name(), req.Bucket, err)
	}

	limit := req.PageSize()
	keys, err := f.keys(ctx, base, req, limit+1)
	if err != nil {
		return nil, Transport(f.Name(), req.Bucket, err)
	}

	page := &Page{}
	if len(keys) > limit {
		keys = keys[:limit]
		page.Truncated = true
		page.NextToken = keys[limit-1]
	}

	page.Entries = make([]Entry, 0, len(keys))
	for _, key := range keys {
		entry, err := f.stat(base, key)
		if err != nil {
			return nil, Transport(f.Name(), req.Bucket, err)
		}
		page.Entries = append(page.Entries, entry)
	}
	return page, nil
}

var errPageFull = errors.New("page full")

// keys returns up to limit keys after req.Token in byte-wise order.
func (f *FS) keys(ctx context.Context, base string, req Request, limit int) ([]string, error) {
	keys := make([]string, 0, limit)
	err := walk(ctx, base, "", req, func(key string) error {
		keys = append(keys, key)
		if len(keys) == limit {
			return errPageFull
		}
		return nil
	})
	if err != nil && !errors.Is(err, errPageFull) {
		return nil, err
	}
	return keys, nil
}

// walk visits the files under dir in key order. Directories sort as "name/" so that
// "a-c" comes before "a/b"; subtrees wholly at or before the token, or outside the
// prefix, are never read.
func walk(ctx context.Context, dir, rel string, req Request, visit func(string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type child struct {
		name, key string
		dir       bool
	}
	children := make([]child, 0, len(dirents))
	for _, d := range dirents {
		c := child{name: d.Name(), key: rel + d.Name(), dir: d.IsDir()}
		if c.dir {
			c.key += "/"
		}
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].key < children[j].key })

	for _, c := range children {
		if c.dir {
			if !strings.HasPrefix(c.key, req.Prefix) && !strings.HasPrefix(req.Prefix, c.key) {
				continue
			}
			if c.key < req.Token && !strings.HasPrefix(req.Token, c.key) {
				continue
			}
			if err := walk(ctx, filepath.Join(dir, c.name), c.key, req, visit); err != nil {
				return err
			}
			continue
		}
		if !strings.HasPrefix(c.key, req.Prefix) || c.key <= req.Token {
			continue
		}
		if err := visit(c.key); err != nil {
			return err
		}
	}
	return nil
}

func (f *FS) stat(base, key string) (Entry, error) {
	path := filepath.Join(base, filepath.FromSlash(key))
	file, err := os.Open(path)
	if err != nil {
		return Entry{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Entry{}, err
	}

	h := md5.New()
	if _, err := io.Copy(h, file); err != nil {
		return Entry{}, fmt.Errorf("hash %s: %w", key, err)
	}

	return Entry{
		Key:          key,
		ETag:         hex.EncodeToString(h.Sum(nil)),
		Size:         info.Size(),
		LastModified: info.ModTime().UTC(),
	}, nil
}

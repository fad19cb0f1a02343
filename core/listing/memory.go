package listing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Memory is an in-process Source. Buckets hold every version of every key;
// non-versioned requests see only the latest live version of each key.
type Memory struct {
	mu       sync.RWMutex
	buckets  map[string][]Entry
	failures map[string][]error
	calls    map[string]int
}

// NewMemory creates an empty in-memory source.
func NewMemory() *Memory {
	return &Memory{
		buckets:  make(map[string][]Entry),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
	}
}

// Name returns "memory".
func (m *Memory) Name() string { return "memory" }

// CreateBucket registers an empty bucket.
func (m *Memory) CreateBucket(bucket string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = nil
	}
}

// Put adds versions to a bucket, creating it if needed.
// Versions of the same key are kept newest-first by LastModified; ties keep insertion order
// reversed, so the last version put for a timestamp is treated as the newest.
func (m *Memory) Put(bucket string, entries ...Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := append([]Entry{}, entries...)
	// Prepend so equal timestamps sort later insertions first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	all = append(all, m.buckets[bucket]...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Key != all[j].Key {
			return all[i].Key < all[j].Key
		}
		return all[i].LastModified.After(all[j].LastModified)
	})
	m.buckets[bucket] = all
}

// FailNext queues err to be returned by the next List call on bucket.
func (m *Memory) FailNext(bucket string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[bucket] = append(m.failures[bucket], err)
}

// Calls returns how many List calls were made against bucket.
func (m *Memory) Calls(bucket string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[bucket]
}

// List returns a page of the bucket listing. Tokens are offsets into the prefix-filtered view.
func (m *Memory) List(ctx context.Context, req Request) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls[req.Bucket]++
	if queued := m.failures[req.Bucket]; len(queued) > 0 {
		m.failures[req.Bucket] = queued[1:]
		m.mu.Unlock()
		return nil, queued[0]
	}
	all, ok := m.buckets[req.Bucket]
	m.mu.Unlock()

	if !ok {
		return nil, &BucketNotFoundError{Backend: m.Name(), Bucket: req.Bucket}
	}

	view := filterView(all, req.Prefix, req.Versioned)

	offset := 0
	if req.Token != "" {
		n, err := strconv.Atoi(req.Token)
		if err != nil || n < 0 || n > len(view) {
			return nil, fmt.Errorf("memory list %s: invalid token %q", req.Bucket, req.Token)
		}
		offset = n
	}

	end := offset + req.PageSize()
	if end > len(view) {
		end = len(view)
	}

	page := &Page{Entries: append([]Entry{}, view[offset:end]...)}
	if end < len(view) {
		page.Truncated = true
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}

func filterView(all []Entry, prefix string, versioned bool) []Entry {
	view := make([]Entry, 0, len(all))
	for i, e := range all {
		if !strings.HasPrefix(e.Key, prefix) {
			continue
		}
		if versioned {
			view = append(view, e)
			continue
		}
		// Latest version only; keys whose latest version is a delete marker are hidden.
		if i > 0 && all[i-1].Key == e.Key {
			continue
		}
		if e.IsDeleteMarker {
			continue
		}
		e.VersionID = ""
		view = append(view, e)
	}
	return view
}

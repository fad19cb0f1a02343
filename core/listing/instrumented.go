package listing

import (
	"context"
	"time"

	"bucket-diff/core/metrics"
)

// Instrumented decorates a Source with Prometheus listing metrics.
type Instrumented struct {
	next Source
}

// NewInstrumented wraps next.
func NewInstrumented(next Source) *Instrumented {
	return &Instrumented{next: next}
}

// Name returns the name of the wrapped source.
func (i *Instrumented) Name() string { return i.next.Name() }

// List fetches a page and records its latency, size and outcome.
func (i *Instrumented) List(ctx context.Context, req Request) (*Page, error) {
	start := time.Now()
	page, err := i.next.List(ctx, req)

	entries := 0
	if page != nil {
		entries = len(page.Entries)
	}
	metrics.RecordListPage(i.next.Name(), req.Bucket, time.Since(start), entries, err == nil)
	return page, err
}

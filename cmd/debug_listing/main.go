package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"bucket-diff/core/config"
	"bucket-diff/core/diff"
	"bucket-diff/core/listing"
	"bucket-diff/feature/replication"

	"go.uber.org/zap"
)

func main() {
	token := flag.String("token", "", "resume token of the page to dump")
	second := flag.Bool("second", false, "list the second bucket instead of the first")
	flag.Parse()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	side := cfg.First
	if *second {
		side = cfg.Second
	}

	ctx := context.Background()
	ep, err := replication.NewEndpoint(ctx, side, cfg.Diff.RetryConfig(), zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	opts := cfg.Diff.DiffOptions()

	fmt.Printf("=== RAW PAGE: %s (prefix=%q versioned=%t max_keys=%d) ===\n", ep, opts.Prefix, opts.Versioned, opts.MaxKeys)
	page, err := ep.Source.List(ctx, listing.Request{
		Bucket:    ep.Bucket,
		Prefix:    opts.Prefix,
		MaxKeys:   opts.MaxKeys,
		Versioned: opts.Versioned,
		Token:     *token,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Entries: %d, truncated: %t, next token: %q\n", len(page.Entries), page.Truncated, page.NextToken)

	fmt.Println("\n=== NORMALIZED ===")
	normalized, err := diff.Normalize(page, nil, "", opts)
	if err != nil {
		fmt.Printf("Normalize failed: %v\n", err)
		os.Exit(1)
	}

	for _, g := range normalized.Groups {
		newest := g.Newest()
		fmt.Printf("%s: %d version(s), newest etag=%s delete_marker=%t", g.Key, len(g.Entries), newest.ETag, newest.IsDeleteMarker)
		if g.Dropped > 0 {
			fmt.Printf(" (%d older dropped)", g.Dropped)
		}
		fmt.Println()
	}
	if normalized.Deferred != nil {
		fmt.Printf("Deferred to next page: %s (%d version(s) so far)\n", normalized.Deferred.Key, len(normalized.Deferred.Entries))
	}
	if len(normalized.Malformed) > 0 {
		fmt.Println("\n=== MALFORMED ===")
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(normalized.Malformed)
	}
}

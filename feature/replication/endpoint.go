package replication

import (
	"context"
	"fmt"

	"bucket-diff/core/diff"
	"bucket-diff/core/listing"
	"bucket-diff/core/retry"
	"bucket-diff/core/storage"

	"go.uber.org/zap"
)

// Endpoint is one bucket of a replication pair.
type Endpoint struct {
	// Backend is the configured backend name.
	Backend string
	// Bucket is the bucket name.
	Bucket string
	// Source lists the bucket.
	Source listing.Source
	// Client reads and writes objects. Nil for backends that are list-only (fs, memory).
	Client storage.Client
}

// Side returns the endpoint as a diff side.
func (e Endpoint) Side() diff.Side {
	return diff.Side{Source: e.Source, Bucket: e.Bucket}
}

// String identifies the endpoint in pair keys and logs.
func (e Endpoint) String() string {
	return e.Backend + ":" + e.Bucket
}

// NewEndpoint builds the listing source and object client for a configured bucket.
// The source retries transport errors and records listing metrics.
func NewEndpoint(ctx context.Context, cfg storage.Config, rcfg retry.Config, logger *zap.Logger) (Endpoint, error) {
	ep := Endpoint{Backend: cfg.Backend, Bucket: cfg.Bucket}
	if ep.Backend == "" {
		ep.Backend = storage.BackendMinio
	}
	if cfg.Bucket == "" {
		return ep, fmt.Errorf("%s endpoint has no bucket configured", ep.Backend)
	}

	var src listing.Source
	switch ep.Backend {
	case storage.BackendMinio:
		client, err := storage.NewClient(cfg)
		if err != nil {
			return ep, err
		}
		ep.Client = client
		versions, err := listing.NewS3Client(ctx, s3Options(cfg))
		if err != nil {
			return ep, err
		}
		src = listing.NewMinio(client, versions)
	case storage.BackendS3:
		api, err := listing.NewS3Client(ctx, s3Options(cfg))
		if err != nil {
			return ep, err
		}
		src = listing.NewS3(api)
		// Object transfer goes through the S3-compatible minio client.
		if cfg.Endpoint != "" {
			client, err := storage.NewClient(cfg)
			if err != nil {
				return ep, err
			}
			ep.Client = client
		}
	case storage.BackendFS:
		if cfg.Root == "" {
			return ep, fmt.Errorf("fs endpoint %s has no root configured", cfg.Bucket)
		}
		src = listing.NewFS(cfg.Root)
	case storage.BackendMemory:
		mem := listing.NewMemory()
		mem.CreateBucket(cfg.Bucket)
		src = mem
	default:
		return ep, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}

	ep.Source = listing.NewInstrumented(listing.NewRetrying(src, rcfg, logger))
	return ep, nil
}

func s3Options(cfg storage.Config) listing.S3Options {
	return listing.S3Options{
		Endpoint:  cfg.EndpointURL(),
		Region:    cfg.Region,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
	}
}

package replication

import (
	"fmt"
	"time"

	"bucket-diff/core/diff"
	"bucket-diff/core/retry"
)

// Policies for keys that exist only in the second bucket.
const (
	PolicyReport = "report"
	PolicyDelete = "delete"
)

// Config holds the comparison and replication options.
type Config struct {
	// Prefix restricts both listings to keys starting with it.
	Prefix string `mapstructure:"prefix" default:""`
	// MaxKeys is the page size requested from each side per round.
	MaxKeys int `mapstructure:"max_keys" default:"1000"`
	// Versioned compares full version histories.
	Versioned bool `mapstructure:"versioned" default:"false"`
	// RefFirstBucketOnly ignores keys that exist only in the second bucket.
	RefFirstBucketOnly bool `mapstructure:"ref_first_bucket_only" default:"false"`
	// MaxVersionsPerKey bounds the history kept in memory for one key.
	MaxVersionsPerKey int `mapstructure:"max_versions_per_key" default:"1000"`
	// SecondOnlyPolicy is report or delete.
	SecondOnlyPolicy string `mapstructure:"second_only_policy" default:"report"`
	// RetryAttempts bounds attempts per listing call.
	RetryAttempts int `mapstructure:"retry_attempts" default:"3"`
	// RetryInitialMs is the first backoff delay in milliseconds.
	RetryInitialMs int `mapstructure:"retry_initial_ms" default:"100"`
	// RetryMaxMs caps the backoff delay in milliseconds.
	RetryMaxMs int `mapstructure:"retry_max_ms" default:"10000"`
}

// Validate checks option ranges.
func (c Config) Validate() error {
	if c.MaxKeys < 0 {
		return fmt.Errorf("diff.max_keys must not be negative")
	}
	if c.MaxVersionsPerKey < 0 {
		return fmt.Errorf("diff.max_versions_per_key must not be negative")
	}
	switch c.SecondOnlyPolicy {
	case "", PolicyReport, PolicyDelete:
	default:
		return fmt.Errorf("diff.second_only_policy must be %q or %q, got %q", PolicyReport, PolicyDelete, c.SecondOnlyPolicy)
	}
	if c.SecondOnlyPolicy == PolicyDelete && c.RefFirstBucketOnly {
		return fmt.Errorf("diff.second_only_policy=delete has no effect with diff.ref_first_bucket_only")
	}
	return nil
}

// DiffOptions returns the options of the diff engine.
func (c Config) DiffOptions() diff.Options {
	return diff.Options{
		Prefix:             c.Prefix,
		MaxKeys:            c.MaxKeys,
		Versioned:          c.Versioned,
		RefFirstBucketOnly: c.RefFirstBucketOnly,
		MaxVersionsPerKey:  c.MaxVersionsPerKey,
	}
}

// RetryConfig returns the backoff applied to listing calls.
func (c Config) RetryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	if c.RetryAttempts > 0 {
		cfg.MaxAttempts = c.RetryAttempts
	}
	if c.RetryInitialMs > 0 {
		cfg.InitialWait = time.Duration(c.RetryInitialMs) * time.Millisecond
	}
	if c.RetryMaxMs > 0 {
		cfg.MaxWait = time.Duration(c.RetryMaxMs) * time.Millisecond
	}
	return cfg
}

// Policy returns the effective second-only policy.
func (c Config) Policy() string {
	if c.SecondOnlyPolicy == "" {
		return PolicyReport
	}
	return c.SecondOnlyPolicy
}

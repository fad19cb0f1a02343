// Package config provides configuration management for bucket-diff.
//
// It utilizes Viper for loading configuration from environment variables and an optional
// .env file. Defaults come from the `default` struct tags of each partial configuration.
//
// # Configuration Structure
//
//   - Server: HTTP server settings (port, API key)
//   - First / Second: the two buckets being compared (backend, endpoint, credentials, bucket)
//   - Diff: prefix, page size, versioning and replication policy
//   - Database: checkpoint database connection
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.First.Bucket, cfg.Diff.MaxKeys)
package config

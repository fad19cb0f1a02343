package storage

import "strings"

// Backend names accepted by Config.Backend.
const (
	BackendMinio  = "minio"
	BackendS3     = "s3"
	BackendFS     = "fs"
	BackendMemory = "memory"
)

// Config holds configuration for one side of a bucket pair.
type Config struct {
	// Backend selects the listing implementation (minio, s3, fs, memory).
	Backend string `mapstructure:"backend" default:"minio"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket on this side of the pair.
	Bucket string `mapstructure:"bucket" default:""`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// Root is the base directory of the fs backend; each bucket is a subdirectory.
	Root string `mapstructure:"root" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// IsObjectStore reports whether the backend is reachable through Client.
func (c Config) IsObjectStore() bool {
	return c.Backend == "" || c.Backend == BackendMinio
}

// EndpointURL returns Endpoint with a scheme, picking https when UseSSL is set and the
// endpoint carries none.
func (c Config) EndpointURL() string {
	if c.Endpoint == "" || strings.HasPrefix(c.Endpoint, "http://") || strings.HasPrefix(c.Endpoint, "https://") {
		return c.Endpoint
	}
	if c.UseSSL {
		return "https://" + c.Endpoint
	}
	return "http://" + c.Endpoint
}

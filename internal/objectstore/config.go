package objectstore

import (
	"github.com/koustreak/blobkit/internal/errs"
)

// Provider identifies the object storage backend.
type Provider string

const (
	ProviderS3    Provider = "s3"
	ProviderMinIO Provider = "minio"
)

// DefaultRegion is applied when no region is configured.
const DefaultRegion = "ap-south-1"

// Config holds all settings needed to build a provider client.
type Config struct {
	// Provider is the storage backend. Empty means ProviderS3.
	Provider Provider

	// Endpoint overrides the service endpoint.
	// For S3 this is a URL ("http://localhost:4566"); leave empty for AWS.
	// For MinIO this is host:port ("localhost:9000") and is required.
	Endpoint string

	// AccessKey is the access key ID.
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// SessionToken is an optional STS session token.
	SessionToken string

	// Region the client is bound to.
	Region string

	// UseSSL controls TLS for MinIO endpoints given as host:port.
	UseSSL bool

	// ForcePathStyle selects path-style addressing (bucket in the path,
	// not the host). Most S3-compatible services need it.
	ForcePathStyle bool

	// PageSize caps keys per listing page. 0 means the service default.
	PageSize int
}

// DefaultConfig returns an AWS S3 config for the given credentials.
func DefaultConfig(accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderS3,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Region:    DefaultRegion,
		UseSSL:    true,
	}
}

// Validate checks that a client can be built from c.
func (c *Config) Validate() error {
	if c == nil {
		return errs.New(errs.ErrKindConfiguration, "storage config is missing")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return errs.New(errs.ErrKindConfiguration, "storage credentials missing: access key and secret key are required")
	}
	switch c.Provider {
	case "", ProviderS3:
	case ProviderMinIO:
		if c.Endpoint == "" {
			return errs.New(errs.ErrKindConfiguration, "minio provider requires an endpoint")
		}
	default:
		return errs.New(errs.ErrKindConfiguration, "unknown storage provider "+string(c.Provider))
	}
	if c.PageSize < 0 {
		return errs.New(errs.ErrKindConfiguration, "page size must not be negative")
	}
	return nil
}

// RegionOrDefault returns the configured region or DefaultRegion.
func (c *Config) RegionOrDefault() string {
	if c.Region == "" {
		return DefaultRegion
	}
	return c.Region
}

// Package config loads blobkit's process configuration once at start-up.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML file,
// a .env file in the working directory, and the process environment.
// The resulting *Config is passed by reference to the components that need
// it; nothing else in blobkit reads the environment.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/koustreak/blobkit/internal/errs"
	"github.com/koustreak/blobkit/internal/logger"
	"github.com/koustreak/blobkit/internal/objectstore"
	"github.com/spf13/viper"
)

// Environment keys
const (
	KeyAccessKey        = "AWS_ACCESS_KEY_ID"
	KeySecretKey        = "AWS_SECRET_ACCESS_KEY"
	KeySessionToken     = "AWS_SESSION_TOKEN"
	KeyRegion           = "AWS_REGION"
	KeyProvider         = "STORE_PROVIDER"
	KeyEndpoint         = "S3_ENDPOINT"
	KeyUseSSL           = "S3_USE_SSL"
	KeyForcePathStyle   = "S3_FORCE_PATH_STYLE"
	KeyBucket           = "S3_BUCKET"
	KeyPageSize         = "S3_PAGE_SIZE"
	KeySniffContentType = "STORE_SNIFF_CONTENT_TYPE"
	KeyLogLevel         = "LOG_LEVEL"
	KeyLogFormat        = "LOG_FORMAT"
)

type Config struct {
	Store StoreConfig
	Log   LogConfig
}

type StoreConfig struct {
	Provider         objectstore.Provider
	AccessKey        string
	SecretKey        string
	SessionToken     string
	Region           string
	Endpoint         string
	UseSSL           bool
	ForcePathStyle   bool
	Bucket           string
	PageSize         int
	SniffContentType bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Options control where Load looks for configuration.
type Options struct {
	// ConfigFile is an optional YAML file. Keys are the environment keys in
	// lower case (aws_region, s3_bucket, …).
	ConfigFile string

	// EnvFile is the dotenv file to load. Empty means ".env"; a missing
	// file is not an error.
	EnvFile string

	// SkipEnvFile disables dotenv loading entirely.
	SkipEnvFile bool
}

// Load builds a Config. Missing credentials do not fail here: they are
// reported as a configuration error when a storage client is constructed.
func Load(opts Options) (*Config, error) {
	if !opts.SkipEnvFile {
		envFile := opts.EnvFile
		if envFile == "" {
			envFile = ".env"
		}
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindConfiguration, "failed to load env file "+envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.Wrap(errs.ErrKindConfiguration, "failed to read config file "+opts.ConfigFile, err)
		}
	}

	cfg := &Config{
		Store: StoreConfig{
			Provider:         objectstore.Provider(strings.ToLower(strings.TrimSpace(v.GetString(KeyProvider)))),
			AccessKey:        v.GetString(KeyAccessKey),
			SecretKey:        v.GetString(KeySecretKey),
			SessionToken:     v.GetString(KeySessionToken),
			Region:           v.GetString(KeyRegion),
			Endpoint:         v.GetString(KeyEndpoint),
			UseSSL:           v.GetBool(KeyUseSSL),
			ForcePathStyle:   v.GetBool(KeyForcePathStyle),
			Bucket:           v.GetString(KeyBucket),
			PageSize:         v.GetInt(KeyPageSize),
			SniffContentType: v.GetBool(KeySniffContentType),
		},
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyProvider, string(objectstore.ProviderS3))
	v.SetDefault(KeyRegion, objectstore.DefaultRegion)
	v.SetDefault(KeyUseSSL, true)
	v.SetDefault(KeyForcePathStyle, false)
	v.SetDefault(KeyPageSize, 0)
	v.SetDefault(KeySniffContentType, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
}

// validate rejects values that can never work. Credentials are checked
// later, at client construction.
func (c *Config) validate() error {
	switch c.Store.Provider {
	case objectstore.ProviderS3, objectstore.ProviderMinIO:
	default:
		return errs.New(errs.ErrKindConfiguration, "unknown storage provider "+string(c.Store.Provider))
	}
	if c.Store.PageSize < 0 {
		return errs.New(errs.ErrKindConfiguration, KeyPageSize+" must not be negative")
	}
	return nil
}

// ObjectStore returns the provider config derived from c.
func (c *Config) ObjectStore() *objectstore.Config {
	return &objectstore.Config{
		Provider:       c.Store.Provider,
		Endpoint:       c.Store.Endpoint,
		AccessKey:      c.Store.AccessKey,
		SecretKey:      c.Store.SecretKey,
		SessionToken:   c.Store.SessionToken,
		Region:         c.Store.Region,
		UseSSL:         c.Store.UseSSL,
		ForcePathStyle: c.Store.ForcePathStyle,
		PageSize:       c.Store.PageSize,
	}
}

// Logger returns the logger config derived from c.
func (c *Config) Logger() *logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	return lc
}

// Package blob is blobkit's object storage facade: upload, list and download
// against a bucket, with one long-lived provider client, content-type
// resolution, and every failure logged once and returned as an *errs.Error.
//
// Usage:
//
//	cfg, err := config.Load(config.Options{})
//	if err != nil { ... }
//	store := blob.FromConfig(cfg)
//	defer store.Close()
//
//	if err := store.Upload(ctx, data, "", "statement/jan.csv", ""); err != nil { ... }
//	body, err := store.Download(ctx, "", "statement/jan.csv")
//	if errs.IsNotFound(err) { ... }
package blob

import (
	"context"
	"sync"

	"github.com/koustreak/blobkit/internal/config"
	"github.com/koustreak/blobkit/internal/errs"
	"github.com/koustreak/blobkit/internal/logger"
	"github.com/koustreak/blobkit/internal/objectstore"
)

// Facade fronts a single provider client. It is safe for concurrent use.
//
// The client is built lazily on first use and reused afterwards. It is
// dropped, and rebuilt on the next call, when the service rejects the
// credentials or when Reconfigure is called.
type Facade struct {
	connect       Connector
	log           *logger.Logger
	defaultBucket string
	sniff         bool

	mu     sync.Mutex
	cfg    *objectstore.Config
	client objectstore.Client
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(f *Facade) {
		if l != nil {
			f.log = l
		}
	}
}

// WithConnector replaces the provider factory, mainly for tests.
func WithConnector(c Connector) Option {
	return func(f *Facade) {
		if c != nil {
			f.connect = c
		}
	}
}

// WithDefaultBucket sets the bucket used when a call passes "".
func WithDefaultBucket(bucket string) Option {
	return func(f *Facade) {
		f.defaultBucket = bucket
	}
}

// WithContentSniffing enables payload sniffing for keys without an extension.
func WithContentSniffing(enabled bool) Option {
	return func(f *Facade) {
		f.sniff = enabled
	}
}

// New returns a Facade for cfg. No client is built until the first call.
func New(cfg *objectstore.Config, opts ...Option) *Facade {
	f := &Facade{
		connect: Connect,
		log:     logger.Nop(),
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FromConfig returns a Facade wired from the process configuration.
// Options are applied after the config-derived ones.
func FromConfig(cfg *config.Config, opts ...Option) *Facade {
	base := []Option{
		WithLogger(logger.New(cfg.Logger())),
		WithDefaultBucket(cfg.Store.Bucket),
		WithContentSniffing(cfg.Store.SniffContentType),
	}
	return New(cfg.ObjectStore(), append(base, opts...)...)
}

// Client returns the cached provider client, building it if needed.
// Missing credentials yield an ErrKindConfiguration error; nothing is
// cached on failure, so the next call tries again.
func (f *Facade) Client(ctx context.Context) (objectstore.Client, error) {
	client, err := f.acquire(ctx)
	if err != nil {
		return nil, f.fail(f.logFor(ctx), "failed to construct storage client", err)
	}
	return client, nil
}

// acquire is Client without logging. Operations report construction
// failures themselves, with their own op fields.
func (f *Facade) acquire(ctx context.Context) (objectstore.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client != nil {
		return f.client, nil
	}

	client, err := f.build(ctx)
	if err != nil {
		return nil, err
	}

	f.client = client
	return client, nil
}

func (f *Facade) build(ctx context.Context) (objectstore.Client, error) {
	if err := f.cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := f.connect(ctx, f.cfg)
	if err != nil {
		if errs.KindOf(err) == errs.ErrKindUnknown {
			return nil, errs.Wrap(errs.ErrKindConfiguration, "failed to construct storage client", err)
		}
		return nil, err
	}
	return client, nil
}

func (f *Facade) providerName() string {
	if f.cfg == nil || f.cfg.Provider == "" {
		return string(objectstore.ProviderS3)
	}
	return string(f.cfg.Provider)
}

// Invalidate drops the cached client. The next call builds a new one.
func (f *Facade) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropLocked()
}

// Reconfigure swaps the provider config, for instance after a credential
// rotation, and drops the cached client.
func (f *Facade) Reconfigure(cfg *objectstore.Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
	f.dropLocked()
}

func (f *Facade) dropLocked() {
	if f.client == nil {
		return
	}
	if err := f.client.Close(); err != nil {
		f.log.Warnf("closing storage client: %v", err)
	}
	f.client = nil
}

// Close releases the cached client. The Facade stays usable; a later call
// builds a fresh client.
func (f *Facade) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.client == nil {
		return nil
	}
	err := f.client.Close()
	f.client = nil
	return err
}

// Ping checks that the service is reachable with the configured credentials.
func (f *Facade) Ping(ctx context.Context) error {
	log := f.logFor(ctx).With().Str("op", "ping").Logger()

	client, err := f.acquire(ctx)
	if err != nil {
		return f.fail(log, "storage client unavailable", err)
	}
	if err := client.Ping(ctx); err != nil {
		return f.fail(log, "ping failed", err)
	}
	return nil
}

// fail logs err once with its category and returns it. Credentials
// rejected by the service invalidate the cached client.
func (f *Facade) fail(log *logger.Logger, msg string, err error) error {
	log.ErrorWith(msg, err, map[string]interface{}{
		"kind":     errs.KindOf(err).String(),
		"provider": f.providerName(),
	})
	if errs.IsCredentials(err) {
		f.Invalidate()
	}
	return err
}

func (f *Facade) bucketOrDefault(bucket string) (string, error) {
	if bucket != "" {
		return bucket, nil
	}
	if f.defaultBucket != "" {
		return f.defaultBucket, nil
	}
	return "", errs.New(errs.ErrKindInvalidInput, "bucket must not be empty and no default bucket is configured")
}

// logFor prefers a logger carried by ctx over the facade's own, so callers
// can attach request-scoped fields.
func (f *Facade) logFor(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return f.log
}

func (f *Facade) opLog(ctx context.Context, op, bucket, key string) *logger.Logger {
	return f.logFor(ctx).With().Str("op", op).Object(bucket, key).Logger()
}

// URI formats an object reference as s3://bucket/key.
func URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}

package blob

import (
	"context"

	"github.com/koustreak/blobkit/internal/objectstore"
	"github.com/koustreak/blobkit/internal/objectstore/minio"
	"github.com/koustreak/blobkit/internal/objectstore/s3"
)

// Connector builds a provider client from cfg.
type Connector func(ctx context.Context, cfg *objectstore.Config) (objectstore.Client, error)

// Connect is the default Connector. It picks the provider named by
// cfg.Provider, defaulting to AWS S3.
func Connect(ctx context.Context, cfg *objectstore.Config) (objectstore.Client, error) {
	switch cfg.Provider {
	case objectstore.ProviderMinIO:
		d, err := minio.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		d, err := s3.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

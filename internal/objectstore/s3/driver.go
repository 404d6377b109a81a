// Package s3 provides an AWS S3 implementation of objectstore.Client on top
// of aws-sdk-go-v2.
//
// For S3-compatible services (MinIO, LocalStack), set Config.Endpoint to the
// service URL and Config.ForcePathStyle to true.
package s3

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/koustreak/blobkit/internal/errs"
	"github.com/koustreak/blobkit/internal/objectstore"
)

// Driver is an AWS S3 implementation of objectstore.Client.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client   *awss3.Client
	presign  *awss3.PresignClient
	pageSize int
}

// New builds an S3 client bound to cfg's region and static credentials.
// Shared AWS config files are still consulted for everything else
// (retry mode, proxies), but never for credentials. No request is sent.
func New(ctx context.Context, cfg *objectstore.Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.RegionOrDefault()),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			cfg.SessionToken,
		)),
	)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfiguration, "failed to load aws config", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// S3-compatible services reject the trailing checksums newer
			// SDKs send by default.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &Driver{
		client:   client,
		presign:  awss3.NewPresignClient(client),
		pageSize: cfg.PageSize,
	}, nil
}

// --- objectstore.Client implementation ---

// Ping verifies S3 is reachable and the credentials are accepted.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.ListBuckets(ctx, &awss3.ListBucketsInput{}); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op: the SDK's HTTP client is shared and needs no teardown.
func (d *Driver) Close() error {
	return nil
}

// PutObject uploads data in a single PutObject request.
func (d *Driver) PutObject(ctx context.Context, bucket, key string, data []byte, opts objectstore.PutOptions) error {
	input := &awss3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if _, err := d.client.PutObject(ctx, input); err != nil {
		return mapError(err, "failed to put object")
	}
	return nil
}

// GetObject opens a streaming handle to the object at key inside bucket.
// The caller MUST call Object.Close() after reading.
func (d *Driver) GetObject(ctx context.Context, bucket, key string) (objectstore.Object, error) {
	out, err := d.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError(err, "failed to get object")
	}

	return &object{
		ReadCloser: out.Body,
		info: &objectstore.ObjectInfo{
			Key:          key,
			Size:         sizeOrUnknown(out.ContentLength),
			ContentType:  aws.ToString(out.ContentType),
			ETag:         aws.ToString(out.ETag),
			LastModified: aws.ToTime(out.LastModified),
		},
	}, nil
}

// StatObject issues a HeadObject request.
func (d *Driver) StatObject(ctx context.Context, bucket, key string) (*objectstore.ObjectInfo, error) {
	out, err := d.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}

	return &objectstore.ObjectInfo{
		Key:          key,
		Size:         sizeOrUnknown(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// ListPage issues exactly one ListObjectsV2 request.
func (d *Driver) ListPage(ctx context.Context, bucket string, opts objectstore.ListOptions) (*objectstore.Page, error) {
	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}
	if opts.Token != "" {
		input.ContinuationToken = aws.String(opts.Token)
	}
	if limit := opts.PageLimit(d.pageSize); limit > 0 {
		input.MaxKeys = aws.Int32(int32(limit))
	}

	out, err := d.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, mapError(err, "failed to list objects")
	}

	return toPage(out), nil
}

// PresignGetURL returns a time-limited public download URL for the object.
func (d *Driver) PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	req, err := d.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", mapError(err, "failed to generate presigned URL")
	}
	return req.URL, nil
}

// --- internal helpers ---

func toPage(out *awss3.ListObjectsV2Output) *objectstore.Page {
	page := &objectstore.Page{
		Objects:   make([]objectstore.ObjectInfo, 0, len(out.Contents)),
		Truncated: aws.ToBool(out.IsTruncated),
	}
	if page.Truncated {
		page.NextToken = aws.ToString(out.NextContinuationToken)
	}
	for _, obj := range out.Contents {
		page.Objects = append(page.Objects, toObjectInfo(obj))
	}
	return page
}

func toObjectInfo(obj types.Object) objectstore.ObjectInfo {
	key := aws.ToString(obj.Key)
	return objectstore.ObjectInfo{
		Key:          key,
		Size:         sizeOrUnknown(obj.Size),
		ETag:         aws.ToString(obj.ETag),
		LastModified: aws.ToTime(obj.LastModified),
		IsDir:        objectstore.IsDirKey(key),
	}
}

func sizeOrUnknown(n *int64) int64 {
	if n == nil {
		return -1
	}
	return *n
}

// object wraps a GetObject response body and exposes objectstore.Object.
type object struct {
	io.ReadCloser
	info *objectstore.ObjectInfo
}

func (o *object) Info() *objectstore.ObjectInfo {
	return o.info
}

var _ objectstore.Client = (*Driver)(nil)

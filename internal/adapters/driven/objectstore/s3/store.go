package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/objectstore"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// API is the subset of *s3.Client used by this package.
type API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store lists and streams resources under a prefix of one bucket.
type Store struct {
	client API
	bucket string
	prefix string
	exts   []string
}

// NewStore creates a store over an existing client.
func NewStore(client API, bucket, prefix string, exts []string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		exts:   exts,
	}
}

// New builds a client from settings and returns a store over it.
func New(ctx context.Context, settings domain.StoreSettings, exts []string) (*Store, error) {
	client, err := NewClient(ctx, settings)
	if err != nil {
		return nil, err
	}
	return NewStore(client, settings.Bucket, settings.Prefix, exts), nil
}

// NewClient builds an S3 client with static credentials. A custom endpoint
// enables path-style addressing.
func NewClient(ctx context.Context, settings domain.StoreSettings) (*s3.Client, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("%w: store bucket is required", domain.ErrInvalidInput)
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(settings.Region),
	}
	if settings.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Name identifies the store in logs.
func (s *Store) Name() string {
	return objectstore.Location("s3", s.bucket, s.prefix)
}

// ListResources returns every searchable object under the prefix, in
// listing order.
func (s *Store) ListResources(ctx context.Context) ([]domain.Resource, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var resources []domain.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range page.Contents {
			if res, ok := objectstore.Searchable(aws.ToString(obj.Key), aws.ToInt64(obj.Size), s.exts); ok {
				resources = append(resources, res)
			}
		}
	}
	return resources, nil
}

// OpenStream fetches the object body, decompressing it when needed.
// Closing the reader aborts the underlying HTTP response.
func (s *Store) OpenStream(ctx context.Context, res domain.Resource) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(res.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, res.Key)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrResourceRead, res.Key, err)
	}
	return objectstore.Decode(res, out.Body)
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	return errors.As(err, &nf)
}

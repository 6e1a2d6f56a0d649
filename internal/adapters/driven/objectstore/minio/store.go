package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/objectstore"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Store lists and streams resources under a prefix of one MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	exts   []string
}

// NewStore creates a store over an existing client.
func NewStore(client *minio.Client, bucket, prefix string, exts []string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		exts:   exts,
	}
}

// New connects to the endpoint in settings.
func New(settings domain.StoreSettings, exts []string) (*Store, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("%w: store bucket is required", domain.ErrInvalidInput)
	}
	host, secure := splitEndpoint(settings.Endpoint, settings.UseSSL)
	if host == "" {
		return nil, fmt.Errorf("%w: minio endpoint is required", domain.ErrInvalidInput)
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKeyID, settings.SecretAccessKey, ""),
		Secure: secure,
	}
	if settings.Region != "" && settings.Region != "auto" {
		opts.Region = settings.Region
	}

	client, err := minio.New(host, opts)
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return NewStore(client, settings.Bucket, settings.Prefix, exts), nil
}

// splitEndpoint strips an http(s) scheme from endpoint. The scheme, when
// present, decides whether TLS is used.
func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, useSSL = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint, useSSL = strings.TrimPrefix(endpoint, "http://"), false
	}
	return strings.TrimSuffix(endpoint, "/"), useSSL
}

// Name identifies the store in logs.
func (s *Store) Name() string {
	return objectstore.Location("minio", s.bucket, s.prefix)
}

// ListResources returns every searchable object under the prefix.
func (s *Store) ListResources(ctx context.Context) ([]domain.Resource, error) {
	var resources []domain.Resource
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing minio://%s/%s: %w", s.bucket, s.prefix, obj.Err)
		}
		if res, ok := objectstore.Searchable(obj.Key, obj.Size, s.exts); ok {
			resources = append(resources, res)
		}
	}
	return resources, nil
}

// OpenStream opens the object, decompressing it when needed.
func (s *Store) OpenStream(ctx context.Context, res domain.Resource) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, res.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap(res, err)
	}
	// GetObject is lazy; Stat surfaces a missing key before streaming starts.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, s.wrap(res, err)
	}
	return objectstore.Decode(res, obj)
}

func (s *Store) wrap(res domain.Resource, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %s", domain.ErrNotFound, res.Key)
	default:
		return fmt.Errorf("%w: %s: %v", domain.ErrResourceRead, res.Key, err)
	}
}

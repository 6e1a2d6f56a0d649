package s3

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// Ensure Syncer implements the interface.
var _ driven.IndexSyncer = (*Syncer)(nil)

const dbExt = ".db"

// Syncer downloads index databases stored under a prefix.
type Syncer struct {
	client     API
	downloader *manager.Downloader
	bucket     string
	prefix     string
}

// NewSyncer creates a syncer for the .db objects under prefix.
func NewSyncer(client API, bucket, prefix string) *Syncer {
	return &Syncer{
		client:     client,
		downloader: manager.NewDownloader(client),
		bucket:     bucket,
		prefix:     prefix,
	}
}

// SyncDatabases downloads every .db object whose size differs from the
// local copy in dataDir. Files are written to a hidden temporary name and
// renamed into place, so readers never see a partial database.
func (s *Syncer) SyncDatabases(ctx context.Context, dataDir string) ([]string, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var synced []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return synced, fmt.Errorf("listing s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name := path.Base(key)
			if !strings.HasSuffix(name, dbExt) || strings.HasSuffix(key, "/") {
				continue
			}

			local := filepath.Join(dataDir, name)
			if info, err := os.Stat(local); err == nil && info.Size() == aws.ToInt64(obj.Size) {
				logger.Debug("%s up to date", name)
				continue
			}

			if err := s.download(ctx, key, local); err != nil {
				return synced, err
			}
			logger.Info("Synced %s (%d bytes)", name, aws.ToInt64(obj.Size))
			synced = append(synced, name)
		}
	}
	return synced, nil
}

func (s *Syncer) download(ctx context.Context, key, local string) error {
	tmp := filepath.Join(filepath.Dir(local), "."+filepath.Base(local)+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	_, err = s.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: downloading %s: %v", domain.ErrResourceRead, key, err)
	}

	if err := os.Rename(tmp, local); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("installing %s: %w", local, err)
	}
	return nil
}

package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"bdc_backend/platform/config"
)

const presignedDownloadTTL = 15 * time.Minute

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Archiver stores generated report files in object storage.
type Archiver struct {
	client *minio.Client
	bucket string
}

// NewArchiver builds an archiver from config. Returns nil when object
// storage is not configured; archive endpoints then report it unavailable.
func NewArchiver(cfg config.MinIOConfig) (*Archiver, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, nil
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	return &Archiver{client: client, bucket: cfg.GetMinioBucketReports()}, nil
}

// EnsureBucket creates the reports bucket if it does not exist.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", a.bucket, err)
		}
	}
	return nil
}

// Store uploads a report and returns its object key.
func (a *Archiver) Store(ctx context.Context, key string, data []byte, contentType string) error {
	if err := a.EnsureBucket(ctx); err != nil {
		return err
	}
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload report %s: %w", key, err)
	}
	return nil
}

// DownloadURL returns a presigned link for a stored report.
func (a *Archiver) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	expiresAt := time.Now().Add(presignedDownloadTTL)
	u, err := a.client.PresignedGetObject(ctx, a.bucket, key, presignedDownloadTTL, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign download for %s: %w", key, err)
	}
	return u.String(), expiresAt, nil
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/appdev/finance/finance-backend/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOReceiptStore implements ReceiptStore on a MinIO server
type MinIOReceiptStore struct {
	client     *minio.Client
	bucketName string
}

// NewMinIOReceiptStore creates a new MinIO receipt store and makes sure its bucket exists
func NewMinIOReceiptStore(ctx context.Context, cfg config.MinIOConfig) (*MinIOReceiptStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &MinIOReceiptStore{client: client, bucketName: cfg.BucketName}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MinIOReceiptStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload stores a receipt object
func (s *MinIOReceiptStore) Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) error {
	if size < 0 {
		buf, err := io.ReadAll(data)
		if err != nil {
			return fmt.Errorf("failed to read data: %w", err)
		}
		size = int64(len(buf))
		data = bytes.NewReader(buf)
	}

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// Delete removes a receipt object
func (s *MinIOReceiptStore) Delete(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// PresignedURL generates a time-limited GET URL for a receipt object
func (s *MinIOReceiptStore) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

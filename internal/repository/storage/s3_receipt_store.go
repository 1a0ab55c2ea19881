package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	cfg "github.com/appdev/finance/finance-backend/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3ReceiptStore implements ReceiptStore on AWS S3 (or any S3-compatible endpoint).
// The bucket stays private; clients read objects through presigned URLs.
type S3ReceiptStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// NewS3ReceiptStore creates a new S3 receipt store
func NewS3ReceiptStore(ctx context.Context, s3cfg cfg.S3Config) (*S3ReceiptStore, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s3cfg.Region),
	}

	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	store := &S3ReceiptStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    s3cfg.Bucket,
	}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *S3ReceiptStore) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket (may be permission denied): %w", err)
	}

	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload stores a receipt object
func (s *S3ReceiptStore) Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) error {
	if size < 0 {
		buf, err := io.ReadAll(data)
		if err != nil {
			return fmt.Errorf("failed to read data: %w", err)
		}
		size = int64(len(buf))
		data = bytes.NewReader(buf)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// Delete removes a receipt object
func (s *S3ReceiptStore) Delete(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// PresignedURL generates a time-limited GET URL for a receipt object
func (s *S3ReceiptStore) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

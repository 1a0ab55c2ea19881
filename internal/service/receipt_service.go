package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

const (
	MaxReceiptSize   = 10 * 1024 * 1024 // 10MB
	ThumbnailWidth   = 200
	JPEGQuality      = 85
	ReceiptURLExpiry = 15 * time.Minute
)

var (
	ErrReceiptTooLarge             = errors.New("file too large. Maximum size is 10MB")
	ErrReceiptEmpty                = errors.New("receipt file is empty")
	ErrUnsupportedReceiptType      = errors.New("invalid format. Supported: JPEG, PNG, WebP, PDF")
	ErrReceiptStorageNotConfigured = errors.New("receipt storage not configured")
)

// AllowedReceiptExtensions maps extensions to content types
var AllowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// ReceiptUpload is a receipt file received with a transaction
type ReceiptUpload struct {
	FileName string
	Data     []byte
}

// ReceiptLinks holds time-limited URLs for a stored receipt
type ReceiptLinks struct {
	File         *domain.TransactionFile `json:"file"`
	URL          string                  `json:"url"`
	ThumbnailURL string                  `json:"thumbnailUrl,omitempty"`
	ExpiresAt    time.Time               `json:"expiresAt"`
}

// ReceiptService stores receipt files and hands out links to them
type ReceiptService struct {
	store storage.ReceiptStore
	files domain.TransactionFileRepository
}

// NewReceiptService creates a new ReceiptService. A nil store disables uploads.
func NewReceiptService(store storage.ReceiptStore, files domain.TransactionFileRepository) *ReceiptService {
	return &ReceiptService{store: store, files: files}
}

// IsEnabled indicates whether receipt storage is configured
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// Validate checks size and format of an upload and returns its content type
func (s *ReceiptService) Validate(upload *ReceiptUpload) (string, error) {
	if len(upload.Data) == 0 {
		return "", ErrReceiptEmpty
	}
	if len(upload.Data) > MaxReceiptSize {
		return "", ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(upload.FileName))
	contentType, ok := AllowedReceiptExtensions[ext]
	if !ok {
		return "", ErrUnsupportedReceiptType
	}

	// The extension must agree with the bytes. WebP sniffs as a generic RIFF container.
	sniffed := http.DetectContentType(upload.Data)
	if contentType == "image/webp" {
		if !bytes.HasPrefix(upload.Data, []byte("RIFF")) {
			return "", ErrUnsupportedReceiptType
		}
	} else if !strings.HasPrefix(sniffed, contentType) {
		return "", ErrUnsupportedReceiptType
	}
	return contentType, nil
}

// Store uploads a receipt for a transaction and records it. Raster images also get a thumbnail.
func (s *ReceiptService) Store(ctx context.Context, userID, transactionID int64, upload *ReceiptUpload) (*domain.TransactionFile, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}
	contentType, err := s.Validate(upload)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(upload.FileName))
	objectKey := storage.ReceiptObjectKey(userID, transactionID, "original", ext)
	if err := s.store.Upload(ctx, objectKey, bytes.NewReader(upload.Data), contentType, int64(len(upload.Data))); err != nil {
		return nil, fmt.Errorf("failed to upload receipt: %w", err)
	}
	uploaded := []string{objectKey}

	var thumbKey *string
	if key, ok := s.storeThumbnail(ctx, userID, transactionID, upload.Data, contentType); ok {
		thumbKey = &key
		uploaded = append(uploaded, key)
	}

	file, err := s.files.Create(&domain.TransactionFile{
		TransactionID: transactionID,
		FileName:      filepath.Base(upload.FileName),
		ContentType:   contentType,
		Size:          int64(len(upload.Data)),
		ObjectKey:     objectKey,
		ThumbnailKey:  thumbKey,
	})
	if err != nil {
		s.cleanup(ctx, uploaded)
		return nil, err
	}
	return file, nil
}

// storeThumbnail uploads a JPEG thumbnail for decodable images. Failure only skips the thumbnail.
func (s *ReceiptService) storeThumbnail(ctx context.Context, userID, transactionID int64, data []byte, contentType string) (string, bool) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return "", false
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		log.Debug().Err(err).Int64("transaction_id", transactionID).Msg("Receipt not decodable, skipping thumbnail")
		return "", false
	}
	if img.Bounds().Dx() > ThumbnailWidth {
		img = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", false
	}

	key := storage.ReceiptObjectKey(userID, transactionID, "thumb", ".jpg")
	if err := s.store.Upload(ctx, key, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
		log.Warn().Err(err).Int64("transaction_id", transactionID).Msg("Failed to upload receipt thumbnail")
		return "", false
	}
	return key, true
}

// Links returns presigned URLs for the receipt of a transaction
func (s *ReceiptService) Links(ctx context.Context, transactionID int64) (*ReceiptLinks, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}
	file, err := s.files.GetByTransactionID(transactionID)
	if err != nil {
		return nil, err
	}

	url, err := s.store.PresignedURL(ctx, file.ObjectKey, ReceiptURLExpiry)
	if err != nil {
		return nil, err
	}
	links := &ReceiptLinks{File: file, URL: url, ExpiresAt: time.Now().Add(ReceiptURLExpiry)}

	if file.ThumbnailKey != nil {
		if thumb, err := s.store.PresignedURL(ctx, *file.ThumbnailKey, ReceiptURLExpiry); err == nil {
			links.ThumbnailURL = thumb
		}
	}
	return links, nil
}

// Attached returns the receipt record of a transaction, or nil when it has none
func (s *ReceiptService) Attached(transactionID int64) *domain.TransactionFile {
	if s == nil || s.files == nil {
		return nil
	}
	file, err := s.files.GetByTransactionID(transactionID)
	if err != nil {
		return nil
	}
	return file
}

func (s *ReceiptService) cleanup(ctx context.Context, keys []string) {
	for _, key := range keys {
		_ = s.store.Delete(ctx, key)
	}
}

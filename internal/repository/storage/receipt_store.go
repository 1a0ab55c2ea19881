package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReceiptStore defines the object storage operations used for receipt files
type ReceiptStore interface {
	Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) error
	Delete(ctx context.Context, objectKey string) error
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// ReceiptObjectKey builds the object key for a receipt upload.
// Format: receipts/<userID>/<transactionID>/<uuid>_<variant><ext>
func ReceiptObjectKey(userID, transactionID int64, variant, ext string) string {
	name := fmt.Sprintf("%s_%s%s", uuid.New().String(), variant, strings.ToLower(ext))
	return path.Join("receipts", fmt.Sprintf("%d", userID), fmt.Sprintf("%d", transactionID), name)
}

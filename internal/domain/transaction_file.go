package domain

import (
	"encoding/json"
	"time"
)

// TransactionFile is a receipt attached to a transaction
type TransactionFile struct {
	ID            int64     `json:"id"`
	TransactionID int64     `json:"transactionId"`
	FileName      string    `json:"fileName"`
	ContentType   string    `json:"contentType"`
	Size          int64     `json:"size"`
	ObjectKey     string    `json:"-"`
	ThumbnailKey  *string   `json:"-"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// MarshalJSON hides storage keys but tells clients whether a thumbnail exists
func (f TransactionFile) MarshalJSON() ([]byte, error) {
	type file TransactionFile
	return json.Marshal(struct {
		file
		HasThumbnail bool `json:"hasThumbnail"`
	}{file: file(f), HasThumbnail: f.ThumbnailKey != nil})
}

type TransactionFileRepository interface {
	Create(file *TransactionFile) (*TransactionFile, error)
	GetByTransactionID(transactionID int64) (*TransactionFile, error)
}

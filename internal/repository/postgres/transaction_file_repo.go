package postgres

import (
	"context"
	"errors"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionFileColumns = `id, transaction_id, file_name, content_type, size, object_key, thumbnail_key, uploaded_at`

// TransactionFileRepository implements domain.TransactionFileRepository using PostgreSQL
type TransactionFileRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionFileRepository creates a new TransactionFileRepository
func NewTransactionFileRepository(pool *pgxpool.Pool) *TransactionFileRepository {
	return &TransactionFileRepository{pool: pool}
}

// Create records a stored receipt
func (r *TransactionFileRepository) Create(file *domain.TransactionFile) (*domain.TransactionFile, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO transaction_files (transaction_id, file_name, content_type, size, object_key, thumbnail_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transactionFileColumns,
		file.TransactionID, file.FileName, file.ContentType, file.Size, file.ObjectKey, file.ThumbnailKey)
	return scanTransactionFile(row)
}

// GetByTransactionID retrieves the receipt of a transaction
func (r *TransactionFileRepository) GetByTransactionID(transactionID int64) (*domain.TransactionFile, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+transactionFileColumns+` FROM transaction_files WHERE transaction_id = $1`, transactionID)
	return scanTransactionFile(row)
}

func scanTransactionFile(row scanner) (*domain.TransactionFile, error) {
	var f domain.TransactionFile
	err := row.Scan(&f.ID, &f.TransactionID, &f.FileName, &f.ContentType, &f.Size, &f.ObjectKey, &f.ThumbnailKey, &f.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, err
	}
	return &f, nil
}

package postgres

import (
	"context"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityLogRepository implements domain.ActivityLogRepository using PostgreSQL
type ActivityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(pool *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{pool: pool}
}

// Create appends an activity entry
func (r *ActivityLogRepository) Create(entry *domain.ActivityLog) (*domain.ActivityLog, error) {
	created := *entry
	err := r.pool.QueryRow(context.Background(), `
		INSERT INTO activity_logs (user_id, type, description, ip_address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		entry.UserID, string(entry.Type), entry.Description, entry.IPAddress).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListByUser returns one page of a user's activity, newest first, with the total count
func (r *ActivityLogRepository) ListByUser(userID int64, page, pageSize int32) ([]*domain.ActivityLog, int64, error) {
	ctx := context.Background()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, description, ip_address, created_at FROM activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []*domain.ActivityLog{}
	for rows.Next() {
		var a domain.ActivityLog
		var activityType string
		if err := rows.Scan(&a.ID, &a.UserID, &activityType, &a.Description, &a.IPAddress, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		a.Type = domain.ActivityType(activityType)
		result = append(result, &a)
	}
	return result, total, rows.Err()
}

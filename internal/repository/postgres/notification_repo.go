package postgres

import (
	"context"
	"errors"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `id, user_id, message, link, status, created_at`

// NotificationRepository implements domain.NotificationRepository using PostgreSQL
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create stores a notification
func (r *NotificationRepository) Create(n *domain.Notification) (*domain.Notification, error) {
	status := n.Status
	if status == "" {
		status = domain.NotificationUnread
	}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO notifications (user_id, message, link, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+notificationColumns,
		n.UserID, n.Message, n.Link, string(status))
	return scanNotification(row)
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(id int64) (*domain.Notification, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(userID int64, unreadOnly bool) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR status = 'UNREAD')
		ORDER BY created_at DESC, id DESC`,
		userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// CountUnread counts a user's unread notifications
func (r *NotificationRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND status = 'UNREAD'`, userID).Scan(&count)
	return count, err
}

// MarkRead marks one notification as read
func (r *NotificationRepository) MarkRead(id int64) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE notifications SET status = 'READ' WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user as read and returns how many changed
func (r *NotificationRepository) MarkAllRead(userID int64) (int64, error) {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE notifications SET status = 'READ' WHERE user_id = $1 AND status = 'UNREAD'`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanNotification(row scanner) (*domain.Notification, error) {
	var n domain.Notification
	var status string
	if err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.Link, &status, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	n.Status = domain.NotificationStatus(status)
	return &n, nil
}

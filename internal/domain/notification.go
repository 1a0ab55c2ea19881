package domain

import "time"

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "UNREAD"
	NotificationRead   NotificationStatus = "READ"
)

// Notification is an in-app message for one user
type Notification struct {
	ID        int64              `json:"id"`
	UserID    int64              `json:"userId"`
	Message   string             `json:"message"`
	Link      string             `json:"link,omitempty"`
	Status    NotificationStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

type NotificationRepository interface {
	Create(notification *Notification) (*Notification, error)
	GetByID(id int64) (*Notification, error)
	ListByUser(userID int64, unreadOnly bool) ([]*Notification, error)
	CountUnread(userID int64) (int64, error)
	MarkRead(id int64) error
	MarkAllRead(userID int64) (int64, error)
}

package service

import (
	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/websocket"
)

// NotificationService handles reading and acknowledging notifications
type NotificationService struct {
	notificationRepo domain.NotificationRepository
	publisher        websocket.EventPublisher
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo domain.NotificationRepository, publisher websocket.EventPublisher) *NotificationService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// List returns a user's notifications, newest first
func (s *NotificationService) List(userID int64, unreadOnly bool) ([]*domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, nil
}

// UnreadCount returns how many unread notifications a user has
func (s *NotificationService) UnreadCount(userID int64) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

// MarkAsRead marks one of the user's notifications read and pushes the new unread count
func (s *NotificationService) MarkAsRead(userID, notificationID int64) error {
	notification, err := s.notificationRepo.GetByID(notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return domain.ErrForbidden
	}

	if notification.Status != domain.NotificationRead {
		if err := s.notificationRepo.MarkRead(notificationID); err != nil {
			return err
		}
	}
	return s.pushCount(userID)
}

// MarkAllAsRead marks all of a user's notifications read
func (s *NotificationService) MarkAllAsRead(userID int64) (int64, error) {
	updated, err := s.notificationRepo.MarkAllRead(userID)
	if err != nil {
		return 0, err
	}
	s.publisher.Publish(userID, websocket.NotificationCount(UnreadCountMessage{UnreadCount: 0}))
	return updated, nil
}

func (s *NotificationService) pushCount(userID int64) error {
	count, err := s.notificationRepo.CountUnread(userID)
	if err != nil {
		return err
	}
	s.publisher.Publish(userID, websocket.NotificationCount(UnreadCountMessage{UnreadCount: count}))
	return nil
}

package service

import (
	"errors"
	"testing"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/testutil"
)

func seedNotifications(t *testing.T, repo *testutil.MockNotificationRepository, userID int64, n int) []*domain.Notification {
	t.Helper()
	var out []*domain.Notification
	for i := 0; i < n; i++ {
		created, err := repo.Create(&domain.Notification{UserID: userID, Message: "msg", Status: domain.NotificationUnread})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		out = append(out, created)
	}
	return out
}

func TestNotificationService_ListAndCount(t *testing.T) {
	repo := testutil.NewMockNotificationRepository()
	svc := NewNotificationService(repo, nil)
	seeded := seedNotifications(t, repo, 1, 3)
	seedNotifications(t, repo, 2, 1)

	if err := repo.MarkRead(seeded[0].ID); err != nil {
		t.Fatal(err)
	}

	all, err := svc.List(1, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 notifications, got %d", len(all))
	}
	if all[0].ID < all[len(all)-1].ID {
		t.Error("Expected newest first")
	}

	unread, _ := svc.List(1, true)
	if len(unread) != 2 {
		t.Errorf("Expected 2 unread, got %d", len(unread))
	}

	count, _ := svc.UnreadCount(1)
	if count != 2 {
		t.Errorf("Expected unread count 2, got %d", count)
	}
}

func TestNotificationService_ListEmptyIsNotNil(t *testing.T) {
	svc := NewNotificationService(testutil.NewMockNotificationRepository(), nil)
	list, err := svc.List(42, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if list == nil {
		t.Error("Expected empty slice, got nil")
	}
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	repo := testutil.NewMockNotificationRepository()
	publisher := testutil.NewMockEventPublisher()
	svc := NewNotificationService(repo, publisher)
	seeded := seedNotifications(t, repo, 1, 2)

	if err := svc.MarkAsRead(1, seeded[0].ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	n, _ := repo.GetByID(seeded[0].ID)
	if n.Status != domain.NotificationRead {
		t.Errorf("Expected READ, got %s", n.Status)
	}

	events := publisher.OfType("notification.count")
	if len(events) != 1 {
		t.Fatalf("Expected 1 count event, got %d", len(events))
	}
	payload := events[0].Event.Payload.(UnreadCountMessage)
	if payload.UnreadCount != 1 {
		t.Errorf("Expected unread count 1, got %d", payload.UnreadCount)
	}
}

func TestNotificationService_MarkAsRead_Ownership(t *testing.T) {
	repo := testutil.NewMockNotificationRepository()
	svc := NewNotificationService(repo, nil)
	seeded := seedNotifications(t, repo, 1, 1)

	err := svc.MarkAsRead(2, seeded[0].ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}

	n, _ := repo.GetByID(seeded[0].ID)
	if n.Status != domain.NotificationUnread {
		t.Error("Expected notification to stay unread")
	}
}

func TestNotificationService_MarkAsRead_NotFound(t *testing.T) {
	svc := NewNotificationService(testutil.NewMockNotificationRepository(), nil)
	if err := svc.MarkAsRead(1, 999); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Errorf("Expected ErrNotificationNotFound, got %v", err)
	}
}

func TestNotificationService_MarkAllAsRead(t *testing.T) {
	repo := testutil.NewMockNotificationRepository()
	publisher := testutil.NewMockEventPublisher()
	svc := NewNotificationService(repo, publisher)
	seedNotifications(t, repo, 1, 3)
	seedNotifications(t, repo, 2, 2)

	updated, err := svc.MarkAllAsRead(1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated != 3 {
		t.Errorf("Expected 3 updated, got %d", updated)
	}

	if c, _ := svc.UnreadCount(1); c != 0 {
		t.Errorf("Expected 0 unread for user 1, got %d", c)
	}
	if c, _ := svc.UnreadCount(2); c != 2 {
		t.Errorf("Expected other user untouched, got %d unread", c)
	}
	if len(publisher.OfType("notification.count")) != 1 {
		t.Error("Expected a count event")
	}
}

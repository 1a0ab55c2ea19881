package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// ErrDispatchQueueFull is returned by Send when the dispatcher cannot accept more work
var ErrDispatchQueueFull = errors.New("notification queue is full")

// NotificationMessage is the payload pushed to clients for a new notification
type NotificationMessage struct {
	ID          int64                     `json:"id"`
	Message     string                    `json:"message"`
	Link        string                    `json:"link,omitempty"`
	CreatedAt   time.Time                 `json:"createdAt"`
	Status      domain.NotificationStatus `json:"status"`
	UnreadCount int64                     `json:"unreadCount"`
}

// UnreadCountMessage is the payload pushed when a user's unread count changes
type UnreadCountMessage struct {
	UnreadCount int64 `json:"unreadCount"`
}

type notificationRequest struct {
	userID  int64
	message string
	link    string
	queued  time.Time
}

// NotificationDispatcher persists notifications and pushes them to the user's
// live connections on a background worker. Send never blocks the caller.
type NotificationDispatcher struct {
	notifications domain.NotificationRepository
	publisher     websocket.EventPublisher
	logger        zerolog.Logger
	queue         chan notificationRequest
	stopCh        chan struct{}
	doneCh        chan struct{}
	mu            sync.Mutex
	running       bool
}

// NewNotificationDispatcher creates a new dispatcher with a queue of queueSize pending notifications
func NewNotificationDispatcher(
	notifications domain.NotificationRepository,
	publisher websocket.EventPublisher,
	logger zerolog.Logger,
	queueSize int,
) *NotificationDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}

	return &NotificationDispatcher{
		notifications: notifications,
		publisher:     publisher,
		logger:        logger.With().Str("component", "notification_dispatcher").Logger(),
		queue:         make(chan notificationRequest, queueSize),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Send queues a notification for delivery
func (d *NotificationDispatcher) Send(userID int64, message, link string) error {
	req := notificationRequest{userID: userID, message: message, link: link, queued: time.Now()}
	select {
	case d.queue <- req:
		notificationQueueDepth.Inc()
		return nil
	default:
		notificationsDeliveredTotal.WithLabelValues("dropped").Inc()
		return ErrDispatchQueueFull
	}
}

// Start begins delivering queued notifications
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info().Int("queue_size", cap(d.queue)).Msg("Starting notification dispatcher")
	go d.run(ctx)
}

// Stop delivers what is already queued and stops the worker
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	d.logger.Info().Msg("Stopping notification dispatcher")
	close(d.stopCh)
	<-d.doneCh
	d.logger.Info().Msg("Notification dispatcher stopped")
}

// IsRunning returns whether the worker is currently running
func (d *NotificationDispatcher) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *NotificationDispatcher) run(ctx context.Context) {
	defer close(d.doneCh)
	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case <-d.stopCh:
			d.drain()
			return
		case req := <-d.queue:
			d.deliver(req)
		}
	}
}

func (d *NotificationDispatcher) drain() {
	for {
		select {
		case req := <-d.queue:
			d.deliver(req)
		default:
			return
		}
	}
}

func (d *NotificationDispatcher) deliver(req notificationRequest) {
	notificationQueueDepth.Dec()

	created, err := d.notifications.Create(&domain.Notification{
		UserID:  req.userID,
		Message: req.message,
		Link:    req.link,
		Status:  domain.NotificationUnread,
	})
	if err != nil {
		notificationsDeliveredTotal.WithLabelValues("failed").Inc()
		d.logger.Error().Err(err).Int64("user_id", req.userID).Msg("Failed to store notification")
		return
	}
	notificationsDeliveredTotal.WithLabelValues("stored").Inc()

	unread, err := d.notifications.CountUnread(req.userID)
	if err != nil {
		d.logger.Warn().Err(err).Int64("user_id", req.userID).Msg("Failed to count unread notifications")
	}

	d.publisher.Publish(req.userID, websocket.NotificationCreated(NotificationMessage{
		ID:          created.ID,
		Message:     created.Message,
		Link:        created.Link,
		CreatedAt:   created.CreatedAt,
		Status:      created.Status,
		UnreadCount: unread,
	}))

	d.logger.Debug().
		Int64("user_id", req.userID).
		Int64("notification_id", created.ID).
		Dur("latency", time.Since(req.queued)).
		Msg("Notification delivered")
}

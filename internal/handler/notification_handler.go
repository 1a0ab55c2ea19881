package handler

import (
	"net/http"
	"strconv"

	"github.com/appdev/finance/finance-backend/internal/middleware"
	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles in-app notification HTTP requests
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// UnreadCountResponse carries the unread notification count
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

// MarkAllReadResponse reports how many notifications were marked read
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// GetNotifications godoc
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications"
// @Success 200 {array} domain.Notification
// @Failure 401 {object} ProblemDetails
// @Router /notifications [get]
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))
	notifications, err := h.notificationService.List(userID, unreadOnly)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount godoc
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UnreadCountResponse
// @Failure 401 {object} ProblemDetails
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

// MarkAsRead godoc
// @Summary Mark a notification read
// @Tags notifications
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid notification ID", nil)
	}

	if err := h.notificationService.MarkAsRead(userID, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllAsRead godoc
// @Summary Mark every notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MarkAllReadResponse
// @Failure 401 {object} ProblemDetails
// @Router /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	updated, err := h.notificationService.MarkAllAsRead(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MarkAllReadResponse{Updated: updated})
}

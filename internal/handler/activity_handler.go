package handler

import (
	"net/http"
	"strconv"

	"github.com/appdev/finance/finance-backend/internal/middleware"
	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ActivityHandler handles activity log HTTP requests
type ActivityHandler struct {
	activityService *service.ActivityService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// GetActivity godoc
// @Summary List account activity
// @Tags activity
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} domain.PaginatedActivityLogs
// @Failure 401 {object} ProblemDetails
// @Router /activity [get]
func (h *ActivityHandler) GetActivity(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 32)
	pageSize, _ := strconv.ParseInt(c.QueryParam("pageSize"), 10, 32)

	logs, err := h.activityService.List(userID, int32(page), int32(pageSize))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

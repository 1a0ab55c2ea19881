package handler

import (
	"net/http"

	"github.com/appdev/finance/finance-backend/internal/middleware"
	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary godoc
// @Summary Get dashboard summary
// @Description Chart totals, budget usage, month totals, recent transactions and filter options
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month name for income and expense totals (default current month)"
// @Success 200 {object} domain.DashboardSummary
// @Failure 401 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /dashboard [get]
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.dashboardService.GetSummary(c.Request().Context(), userID, c.QueryParam("month"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

package handler

import (
	"net/http"

	"github.com/appdev/finance/finance-backend/internal/middleware"
	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SaveBudgetRequest represents the save budget request body
type SaveBudgetRequest struct {
	Amount string `json:"amount"`
}

// GetBudget godoc
// @Summary Get the budget
// @Description Returns the user's budget, zero when none has been saved
// @Tags budget
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Budget
// @Failure 401 {object} ProblemDetails
// @Router /budget [get]
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budget, err := h.budgetService.GetBudget(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, budget)
}

// SaveBudget godoc
// @Summary Save the budget
// @Description Creates or replaces the user's budget and re-checks spending against it
// @Tags budget
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SaveBudgetRequest true "Budget amount"
// @Success 200 {object} domain.Budget
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /budget [put]
func (h *BudgetHandler) SaveBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SaveBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	budget, err := h.budgetService.SaveBudget(c.Request().Context(), userID, amount, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, budget)
}

package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/appdev/finance/finance-backend/internal/middleware"
	"github.com/appdev/finance/finance-backend/internal/query"
	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the create transaction request body.
// Multipart requests carry the same fields as form values plus a "receipt" file.
type CreateTransactionRequest struct {
	Description     string `json:"description" form:"description"`
	Amount          string `json:"amount" form:"amount"`
	Type            string `json:"type" form:"type"`
	Category        string `json:"category" form:"category"`
	TransactionDate string `json:"transactionDate" form:"transactionDate"`
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Record income or an expense. Send multipart/form-data with a "receipt" file to attach a receipt.
// @Tags transactions
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction"
// @Success 201 {object} domain.Transaction
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var transactionDate *time.Time
	if s := strings.TrimSpace(req.TransactionDate); s != "" {
		parsed, err := time.Parse(query.DateLayout, s)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "transactionDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		transactionDate = &parsed
	}

	receipt, err := readReceipt(c)
	if err != nil {
		return NewValidationError(c, "Invalid receipt", []ValidationError{
			{Field: "receipt", Message: err.Error()},
		})
	}

	input := service.CreateTransactionInput{
		Description:     req.Description,
		Amount:          amount,
		Type:            req.Type,
		Category:        req.Category,
		TransactionDate: transactionDate,
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request().Context(), userID, input, receipt, c.RealIP())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, transaction)
}

// readReceipt returns the optional "receipt" file of a multipart request
func readReceipt(c echo.Context) (*service.ReceiptUpload, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}

	fh, err := c.FormFile("receipt")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read receipt file")
	}
	if fh.Size > service.MaxReceiptSize {
		return nil, service.ErrReceiptTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open receipt file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxReceiptSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read receipt file")
	}
	return &service.ReceiptUpload{FileName: fh.Filename, Data: data}, nil
}

// GetTransactions godoc
// @Summary Search transactions
// @Description List the user's transactions matching every supplied filter. Unparsable dates are ignored.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Description contains (case-insensitive)"
// @Param type query string false "Income or Expense"
// @Param category query string false "Category (case-insensitive)"
// @Param month query string false "Month name, used only when no date bound is given"
// @Param startDate query string false "Earliest date (YYYY-MM-DD)"
// @Param endDate query string false "Latest date (YYYY-MM-DD)"
// @Param minAmount query string false "Minimum amount"
// @Param maxAmount query string false "Maximum amount"
// @Param sortField query string false "id, description, amount, transactionDate, type, category or month"
// @Param sortOrder query string false "asc or desc (default)"
// @Success 200 {array} domain.Transaction
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	criteria := query.TransactionCriteria{
		Keyword:   c.QueryParam("keyword"),
		Type:      c.QueryParam("type"),
		Category:  c.QueryParam("category"),
		Month:     c.QueryParam("month"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
		SortField: c.QueryParam("sortField"),
		SortOrder: c.QueryParam("sortOrder"),
	}

	var errs []ValidationError
	for _, p := range []struct {
		name string
		dest **decimal.Decimal
	}{
		{"minAmount", &criteria.MinAmount},
		{"maxAmount", &criteria.MaxAmount},
	} {
		raw := strings.TrimSpace(c.QueryParam(p.name))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, ValidationError{Field: p.name, Message: "Must be a valid decimal number"})
			continue
		}
		*p.dest = &d
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid amount filter", errs)
	}

	transactions, err := h.transactionService.SearchTransactions(userID, criteria)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, transactions)
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} domain.Transaction
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, transaction)
}

// GetReceipt godoc
// @Summary Get receipt links
// @Description Returns short-lived URLs for the receipt attached to a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} service.ReceiptLinks
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id}/receipt [get]
func (h *TransactionHandler) GetReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	links, err := h.transactionService.GetReceipt(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, links)
}

func parseID(c echo.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", param)
	}
	return id, nil
}

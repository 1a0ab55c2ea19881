package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/appdev/finance/finance-backend/internal/middleware"
	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
)

const mimeTextCSV = "text/csv"

// ReportHandler handles monthly report HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetSummary godoc
// @Summary Monthly report
// @Description Totals, categories and transactions for a month name. Defaults to the current month and year.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month name"
// @Param year query int false "Year shown on the report"
// @Param category query string false "Only transactions in this category"
// @Success 200 {object} service.MonthlyReport
// @Failure 400 {object} ProblemDetails
// @Router /reports/summary [get]
func (h *ReportHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, err := parseYear(c)
	if err != nil {
		return NewValidationError(c, "Invalid year", []ValidationError{{Field: "year", Message: err.Error()}})
	}

	report, err := h.reportService.BuildReport(userID, c.QueryParam("month"), year, c.QueryParam("category"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// ExportCSV godoc
// @Summary Export a monthly report as CSV
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param month query string false "Month name"
// @Param year query int false "Year shown on the report"
// @Success 200 {file} file
// @Router /reports/export.csv [get]
func (h *ReportHandler) ExportCSV(c echo.Context) error {
	return h.export(c, "csv", mimeTextCSV, h.reportService.ExportCSV)
}

// ExportPDF godoc
// @Summary Export a monthly report as PDF
// @Tags reports
// @Produce application/pdf
// @Security BearerAuth
// @Param month query string false "Month name"
// @Param year query int false "Year shown on the report"
// @Success 200 {file} file
// @Router /reports/export.pdf [get]
func (h *ReportHandler) ExportPDF(c echo.Context) error {
	return h.export(c, "pdf", "application/pdf", h.reportService.ExportPDF)
}

func (h *ReportHandler) export(c echo.Context, ext, contentType string, render func(*service.MonthlyReport) ([]byte, error)) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, err := parseYear(c)
	if err != nil {
		return NewValidationError(c, "Invalid year", []ValidationError{{Field: "year", Message: err.Error()}})
	}

	report, err := h.reportService.BuildReport(userID, c.QueryParam("month"), year, "")
	if err != nil {
		return respondError(c, err)
	}
	data, err := render(report)
	if err != nil {
		return respondError(c, err)
	}

	filename := service.ReportFileName(report.Month, report.Year, ext)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, data)
}

func parseYear(c echo.Context) (int, error) {
	raw := strings.TrimSpace(c.QueryParam("year"))
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("must be a four digit year")
	}
	return year, nil
}

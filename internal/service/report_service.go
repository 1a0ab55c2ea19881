package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/query"
	"github.com/appdev/finance/finance-backend/internal/util"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// MonthlyReport is the report for one month name. Year only labels the output.
type MonthlyReport struct {
	Month        string                `json:"month"`
	Year         int                   `json:"year"`
	Summary      *domain.ReportSummary `json:"summary"`
	Categories   []string              `json:"categories"`
	Transactions []*domain.Transaction `json:"transactions"`
}

// ReportService builds monthly summaries and their CSV and PDF exports
type ReportService struct {
	transactionRepo domain.TransactionRepository
	filters         *query.TransactionFilterBuilder
	now             func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(transactionRepo domain.TransactionRepository, filters *query.TransactionFilterBuilder, clock func() time.Time) *ReportService {
	if clock == nil {
		clock = time.Now
	}
	return &ReportService{
		transactionRepo: transactionRepo,
		filters:         filters,
		now:             clock,
	}
}

// ResolvePeriod defaults a blank month to the current month name and a
// non-positive year to the current year. Month names are canonicalized.
func (s *ReportService) ResolvePeriod(month string, year int) (string, int) {
	now := s.now()
	month = strings.TrimSpace(month)
	if month == "" {
		month = util.CurrentMonthName(now)
	} else if canonical := util.CanonicalMonthName(month); canonical != "" {
		month = canonical
	}
	if year <= 0 {
		year = now.Year()
	}
	return month, year
}

// MonthlySummary totals income and expenses for a month name
func (s *ReportService) MonthlySummary(userID int64, month string) (*domain.ReportSummary, error) {
	income, err := s.transactionRepo.SumByType(userID, domain.TransactionTypeIncome, month)
	if err != nil {
		return nil, err
	}
	expenses, err := s.transactionRepo.SumByType(userID, domain.TransactionTypeExpense, month)
	if err != nil {
		return nil, err
	}
	return &domain.ReportSummary{
		Month:         month,
		TotalIncome:   income,
		TotalExpenses: expenses,
		NetTotal:      income.Sub(expenses),
	}, nil
}

// TransactionsByMonth lists a user's transactions in a month, newest first
func (s *ReportService) TransactionsByMonth(userID int64, month string) ([]*domain.Transaction, error) {
	return s.TransactionsByMonthAndCategory(userID, month, "")
}

// TransactionsByMonthAndCategory lists a user's transactions in a month, optionally
// narrowed to one category (case-insensitive)
func (s *ReportService) TransactionsByMonthAndCategory(userID int64, month, category string) ([]*domain.Transaction, error) {
	if strings.TrimSpace(month) == "" {
		return []*domain.Transaction{}, nil
	}
	q := s.filters.Build(userID, query.TransactionCriteria{Month: month, Category: category})
	transactions, err := s.transactionRepo.Search(q)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	return transactions, nil
}

// CategoriesByMonth lists the distinct categories used in a month
func (s *ReportService) CategoriesByMonth(userID int64, month string) ([]string, error) {
	if strings.TrimSpace(month) == "" {
		return []string{}, nil
	}
	categories, err := s.transactionRepo.Categories(userID, month)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// BuildReport assembles the full report for a month, optionally filtered by category
func (s *ReportService) BuildReport(userID int64, month string, year int, category string) (*MonthlyReport, error) {
	month, year = s.ResolvePeriod(month, year)

	summary, err := s.MonthlySummary(userID, month)
	if err != nil {
		return nil, err
	}
	categories, err := s.CategoriesByMonth(userID, month)
	if err != nil {
		return nil, err
	}
	transactions, err := s.TransactionsByMonthAndCategory(userID, month, category)
	if err != nil {
		return nil, err
	}

	return &MonthlyReport{
		Month:        month,
		Year:         year,
		Summary:      summary,
		Categories:   categories,
		Transactions: transactions,
	}, nil
}

// ReportFileName returns the download name for an export, e.g. report_May_2024.csv
func ReportFileName(month string, year int, ext string) string {
	return fmt.Sprintf("report_%s_%d.%s", unsafeFileChars.ReplaceAllString(month, "_"), year, ext)
}

// ExportCSV renders a report as CSV
func (s *ReportService) ExportCSV(report *MonthlyReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"Report Summary for:", report.Month},
		{"Category", "Amount (PHP)"},
		{"Total Income", report.Summary.TotalIncome.StringFixed(2)},
		{"Total Expenses", report.Summary.TotalExpenses.StringFixed(2)},
		{"Net Total", report.Summary.NetTotal.StringFixed(2)},
		{},
		{"Transaction Details"},
		{"Description", "Category", "Type", "Amount (PHP)"},
	}
	for _, tx := range report.Transactions {
		rows = append(rows, []string{tx.Description, tx.Category, string(tx.Type), tx.Amount.StringFixed(2)})
	}
	if len(report.Transactions) == 0 {
		rows = append(rows, []string{"No transactions found for this month."})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportPDF renders a report as an A4 PDF
func (s *ReportService) ExportPDF(report *MonthlyReport) ([]byte, error) {
	title := fmt.Sprintf("Financial Report - %s %d", report.Month, report.Year)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetCreator("finance-backend", false)
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range [][2]string{
		{"Total Income", pdfMoney(report.Summary.TotalIncome)},
		{"Total Expenses", pdfMoney(report.Summary.TotalExpenses)},
		{"Net Total", pdfMoney(report.Summary.NetTotal)},
	} {
		pdf.CellFormat(0, 6, line[0]+": "+line[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Transactions", "", 1, "L", false, 0, "")

	widths := []float64{74, 38, 26, 36}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Description", "Category", "Type", "Amount"} {
		align := "L"
		if i == 3 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if len(report.Transactions) == 0 {
		pdf.CellFormat(sum(widths), 6, "No transactions found for this month.", "1", 1, "L", false, 0, "")
	}
	for _, tx := range report.Transactions {
		pdf.CellFormat(widths[0], 6, tr(truncate(tx.Description, 35)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(truncate(tx.Category, 18)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, string(tx.Type), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, pdfMoney(tx.Amount), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfMoney formats an amount for the PDF. The core fonts have no peso sign.
func pdfMoney(d decimal.Decimal) string {
	return "PHP " + formatAmount(d)
}

func truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max-3]) + "..."
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

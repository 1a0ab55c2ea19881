package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/query"
	"github.com/appdev/finance/finance-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newReportFixture(now time.Time) (*ReportService, *testutil.MockTransactionRepository) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewReportService(repo, query.NewTransactionFilterBuilder(zerolog.Nop()), func() time.Time { return now })
	return svc, repo
}

func seedReport(repo *testutil.MockTransactionRepository) {
	may := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	repo.AddTransaction(&domain.Transaction{UserID: 1, Description: "Salary", Amount: dec("3000"), Type: domain.TransactionTypeIncome, Category: "Work", TransactionDate: may})
	repo.AddTransaction(&domain.Transaction{UserID: 1, Description: "Groceries", Amount: dec("250.5"), Type: domain.TransactionTypeExpense, Category: "Food", TransactionDate: may.AddDate(0, 0, 5)})
	repo.AddTransaction(&domain.Transaction{UserID: 1, Description: "Dinner out", Amount: dec("100"), Type: domain.TransactionTypeExpense, Category: "food", TransactionDate: may.AddDate(0, 0, 10)})
	repo.AddTransaction(&domain.Transaction{UserID: 1, Description: "April rent", Amount: dec("900"), Type: domain.TransactionTypeExpense, Category: "Rent", TransactionDate: may.AddDate(0, -1, 0)})
	repo.AddTransaction(&domain.Transaction{UserID: 2, Description: "Other user", Amount: dec("42"), Type: domain.TransactionTypeExpense, Category: "Food", TransactionDate: may})
}

func TestResolvePeriod(t *testing.T) {
	svc, _ := newReportFixture(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		month     string
		year      int
		wantMonth string
		wantYear  int
	}{
		{"", 0, "July", 2024},
		{"  ", -1, "July", 2024},
		{"may", 2023, "May", 2023},
		{"DECEMBER", 0, "December", 2024},
		{"Smarch", 2020, "Smarch", 2020},
	}

	for _, tt := range tests {
		month, year := svc.ResolvePeriod(tt.month, tt.year)
		if month != tt.wantMonth || year != tt.wantYear {
			t.Errorf("ResolvePeriod(%q, %d) = %s %d, want %s %d", tt.month, tt.year, month, year, tt.wantMonth, tt.wantYear)
		}
	}
}

func TestMonthlySummary(t *testing.T) {
	svc, repo := newReportFixture(time.Now())
	seedReport(repo)

	summary, err := svc.MonthlySummary(1, "May")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.TotalIncome.StringFixed(2) != "3000.00" {
		t.Errorf("Expected income 3000.00, got %s", summary.TotalIncome)
	}
	if summary.TotalExpenses.StringFixed(2) != "350.50" {
		t.Errorf("Expected expenses 350.50, got %s", summary.TotalExpenses)
	}
	if summary.NetTotal.StringFixed(2) != "2649.50" {
		t.Errorf("Expected net 2649.50, got %s", summary.NetTotal)
	}
}

func TestMonthlySummary_NegativeNet(t *testing.T) {
	svc, repo := newReportFixture(time.Now())
	seedReport(repo)

	summary, err := svc.MonthlySummary(1, "April")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !summary.NetTotal.Equal(decimal.NewFromInt(-900)) {
		t.Errorf("Expected net -900, got %s", summary.NetTotal)
	}
}

func TestMonthlySummary_RepositoryError(t *testing.T) {
	svc, repo := newReportFixture(time.Now())
	repo.SumByTypeFn = func(userID int64, txType domain.TransactionType, month string) (decimal.Decimal, error) {
		return decimal.Zero, errors.New("db down")
	}

	if _, err := svc.MonthlySummary(1, "May"); err == nil {
		t.Error("Expected error")
	}
}

func TestTransactionsByMonthAndCategory(t *testing.T) {
	svc, repo := newReportFixture(time.Now())
	seedReport(repo)

	all, err := svc.TransactionsByMonth(1, "may")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 May transactions, got %d", len(all))
	}
	if all[0].Description != "Dinner out" {
		t.Errorf("Expected newest first, got %s", all[0].Description)
	}

	food, err := svc.TransactionsByMonthAndCategory(1, "May", "FOOD")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(food) != 2 {
		t.Errorf("Expected 2 food transactions, got %d", len(food))
	}

	none, err := svc.TransactionsByMonth(1, "")
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("Expected empty non-nil slice for blank month, got %v (err %v)", none, err)
	}
}

func TestCategoriesByMonth(t *testing.T) {
	svc, repo := newReportFixture(time.Now())
	seedReport(repo)

	categories, err := svc.CategoriesByMonth(1, "April")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(categories) != 1 || categories[0] != "Rent" {
		t.Errorf("Expected [Rent], got %v", categories)
	}

	empty, _ := svc.CategoriesByMonth(1, "January")
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", empty)
	}
}

func TestBuildReport_DefaultsToCurrentMonth(t *testing.T) {
	svc, repo := newReportFixture(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	seedReport(repo)

	report, err := svc.BuildReport(1, "", 0, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Month != "May" || report.Year != 2024 {
		t.Errorf("Expected May 2024, got %s %d", report.Month, report.Year)
	}
	if len(report.Transactions) != 3 {
		t.Errorf("Expected 3 transactions, got %d", len(report.Transactions))
	}
	if len(report.Categories) != 3 {
		t.Errorf("Expected 3 categories, got %v", report.Categories)
	}
}

func TestReportFileName(t *testing.T) {
	tests := []struct {
		month string
		year  int
		ext   string
		want  string
	}{
		{"May", 2024, "csv", "report_May_2024.csv"},
		{"Sept ember", 2023, "pdf", "report_Sept_ember_2023.pdf"},
		{"../etc/passwd", 2024, "csv", "report_.._etc_passwd_2024.csv"},
	}

	for _, tt := range tests {
		if got := ReportFileName(tt.month, tt.year, tt.ext); got != tt.want {
			t.Errorf("ReportFileName(%q) = %s, want %s", tt.month, got, tt.want)
		}
	}
}

func TestExportCSV(t *testing.T) {
	svc, repo := newReportFixture(time.Now())
	seedReport(repo)

	report, err := svc.BuildReport(1, "May", 2024, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	data, err := svc.ExportCSV(report)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := strings.Join([]string{
		"Report Summary for:,May",
		"Category,Amount (PHP)",
		"Total Income,3000.00",
		"Total Expenses,350.50",
		"Net Total,2649.50",
		"",
		"Transaction Details",
		"Description,Category,Type,Amount (PHP)",
		"Dinner out,food,Expense,100.00",
		"Groceries,Food,Expense,250.50",
		"Salary,Work,Income,3000.00",
		"",
	}, "\n")
	if string(data) != want {
		t.Errorf("Unexpected CSV:\n%s\nwant:\n%s", data, want)
	}
}

func TestExportCSV_NoTransactions(t *testing.T) {
	svc, _ := newReportFixture(time.Now())

	report, _ := svc.BuildReport(1, "January", 2024, "")
	data, err := svc.ExportCSV(report)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasSuffix(string(data), "No transactions found for this month.\n") {
		t.Errorf("Expected empty-month row, got:\n%s", data)
	}
}

func TestExportCSV_QuotesCommas(t *testing.T) {
	svc, repo := newReportFixture(time.Now())
	repo.AddTransaction(&domain.Transaction{UserID: 1, Description: "Coffee, beans", Amount: dec("12"), Type: domain.TransactionTypeExpense, Category: "Food", TransactionDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)})

	report, _ := svc.BuildReport(1, "May", 2024, "")
	data, _ := svc.ExportCSV(report)
	if !strings.Contains(string(data), `"Coffee, beans",Food,Expense,12.00`) {
		t.Errorf("Expected quoted description, got:\n%s", data)
	}
}

func TestExportPDF(t *testing.T) {
	svc, repo := newReportFixture(time.Now())
	seedReport(repo)
	for i := 0; i < 80; i++ {
		repo.AddTransaction(&domain.Transaction{
			UserID: 1, Description: strings.Repeat("long description ", 4), Amount: dec("1.25"),
			Type: domain.TransactionTypeExpense, Category: "Miscellaneous household", TransactionDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		})
	}

	report, _ := svc.BuildReport(1, "May", 2024, "")
	data, err := svc.ExportPDF(report)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("Expected PDF header, got %q", data[:8])
	}
	if !bytes.Contains(data, []byte("Financial Report - May 2024")) {
		t.Error("Expected document title in PDF metadata")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		text string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is far too long", 10, "this is..."},
		{"ñandú ñandú ñandú", 8, "ñandú..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.text, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
		}
	}
}

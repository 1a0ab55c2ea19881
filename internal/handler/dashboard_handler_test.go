package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func TestDashboardSummary(t *testing.T) {
	env := newTestEnv()
	july := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	addTransaction(env, 1, "Salary", domain.TransactionTypeIncome, "Work", "2000.00", july)
	addTransaction(env, 1, "Rent", domain.TransactionTypeExpense, "Housing", "500.00", july)
	addTransaction(env, 1, "Food", domain.TransactionTypeExpense, "Food", "250.00", july.AddDate(0, -1, 0))
	env.budgets.SetBudget(1, decimal.NewFromInt(1000))

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard", nil, 1)
	if err := env.dashboard.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var summary domain.DashboardSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if summary.SelectedMonth != "July" {
		t.Errorf("Expected July, got %s", summary.SelectedMonth)
	}
	if summary.MonthExpenses.StringFixed(2) != "500.00" {
		t.Errorf("Expected July expenses 500.00, got %s", summary.MonthExpenses)
	}
	if summary.MonthIncome.StringFixed(2) != "2000.00" {
		t.Errorf("Expected July income 2000.00, got %s", summary.MonthIncome)
	}
	// Usage is measured against all-time expenses
	if summary.BudgetUsagePercentage.StringFixed(2) != "75.00" {
		t.Errorf("Expected usage 75.00, got %s", summary.BudgetUsagePercentage)
	}
	if len(summary.RecentTransactions) != 3 {
		t.Errorf("Expected 3 recent transactions, got %d", len(summary.RecentTransactions))
	}
	if len(summary.AvailableMonths) != 2 || summary.AvailableMonths[0] != "June" {
		t.Errorf("Expected [June July], got %v", summary.AvailableMonths)
	}
}

func TestDashboardSummary_SelectedMonth(t *testing.T) {
	env := newTestEnv()
	addTransaction(env, 1, "Food", domain.TransactionTypeExpense, "Food", "250.00", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard?month=June", nil, 1)
	env.dashboard.GetSummary(c)
	expectStatus(t, rec, http.StatusOK)

	var summary domain.DashboardSummary
	json.Unmarshal(rec.Body.Bytes(), &summary)
	if summary.MonthExpenses.StringFixed(2) != "250.00" {
		t.Errorf("Expected June expenses 250.00, got %s", summary.MonthExpenses)
	}
}

func TestDashboardSummary_Unauthenticated(t *testing.T) {
	env := newTestEnv()

	c, rec := newContext(http.MethodGet, "/api/v1/dashboard", nil, 0)
	env.dashboard.GetSummary(c)
	expectStatus(t, rec, http.StatusUnauthorized)
}

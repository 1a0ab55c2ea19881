package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/appdev/finance/finance-backend/internal/cooldown"
	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type budgetFixture struct {
	service   *BudgetService
	budgets   *testutil.MockBudgetRepository
	txRepo    *testutil.MockTransactionRepository
	activity  *testutil.MockActivityLogRepository
	publisher *testutil.MockEventPublisher
	notifier  *recordingNotifier
}

func newBudgetFixture(now time.Time) *budgetFixture {
	f := &budgetFixture{
		budgets:   testutil.NewMockBudgetRepository(),
		txRepo:    testutil.NewMockTransactionRepository(),
		activity:  testutil.NewMockActivityLogRepository(),
		publisher: testutil.NewMockEventPublisher(),
		notifier:  &recordingNotifier{},
	}
	evaluator := NewBudgetThresholdEvaluator(f.txRepo, f.budgets, f.notifier, cooldown.NewMemoryStore(), zerolog.Nop(),
		ThresholdEvaluatorConfig{Clock: func() time.Time { return now }})
	f.service = NewBudgetService(f.budgets, evaluator, NewActivityService(f.activity), f.publisher)
	return f
}

func TestGetBudget_DefaultsToZero(t *testing.T) {
	f := newBudgetFixture(time.Now())

	budget, err := f.service.GetBudget(1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !budget.Amount.IsZero() {
		t.Errorf("Expected zero budget, got %s", budget.Amount)
	}
	if budget.UserID != 1 {
		t.Errorf("Expected user 1, got %d", budget.UserID)
	}
}

func TestSaveBudget_Success(t *testing.T) {
	f := newBudgetFixture(time.Now())

	budget, err := f.service.SaveBudget(context.Background(), 1, decimal.RequireFromString("2500.456"), "127.0.0.1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if budget.Amount.StringFixed(2) != "2500.46" {
		t.Errorf("Expected amount rounded to 2500.46, got %s", budget.Amount)
	}

	stored, _ := f.service.GetBudget(1)
	if !stored.Amount.Equal(budget.Amount) {
		t.Errorf("Expected stored amount %s, got %s", budget.Amount, stored.Amount)
	}

	types := f.activity.Types(1)
	if len(types) != 1 || types[0] != domain.ActivityBudgetUpdated {
		t.Errorf("Expected BUDGET_UPDATED activity, got %v", types)
	}
	if len(f.publisher.OfType("budget.updated")) != 1 {
		t.Error("Expected budget.updated event")
	}
}

func TestSaveBudget_UpdatesExisting(t *testing.T) {
	f := newBudgetFixture(time.Now())
	ctx := context.Background()

	first, _ := f.service.SaveBudget(ctx, 1, decimal.NewFromInt(100), "")
	second, _ := f.service.SaveBudget(ctx, 1, decimal.NewFromInt(200), "")

	if first.ID != second.ID {
		t.Errorf("Expected the same budget row to be updated, got ids %d and %d", first.ID, second.ID)
	}
	if !second.Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected 200, got %s", second.Amount)
	}
}

func TestSaveBudget_RejectsNegative(t *testing.T) {
	f := newBudgetFixture(time.Now())

	_, err := f.service.SaveBudget(context.Background(), 1, decimal.NewFromInt(-1), "")
	if !errors.Is(err, domain.ErrNegativeBudget) {
		t.Errorf("Expected ErrNegativeBudget, got %v", err)
	}
}

func TestSaveBudget_AllowsZero(t *testing.T) {
	f := newBudgetFixture(time.Now())

	if _, err := f.service.SaveBudget(context.Background(), 1, decimal.Zero, ""); err != nil {
		t.Errorf("Expected zero budget to be accepted, got %v", err)
	}
	if f.notifier.count() != 0 {
		t.Error("Expected no alert for a zero budget")
	}
}

func TestSaveBudget_EvaluatesCurrentMonth(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	f := newBudgetFixture(now)
	f.txRepo.AddTransaction(&domain.Transaction{
		UserID: 1, Amount: decimal.NewFromInt(900), Type: domain.TransactionTypeExpense,
		Category: "Rent", TransactionDate: now,
	})
	// Expense from another month does not count toward the monthly check
	f.txRepo.AddTransaction(&domain.Transaction{
		UserID: 1, Amount: decimal.NewFromInt(5000), Type: domain.TransactionTypeExpense,
		Category: "Car", TransactionDate: now.AddDate(0, -1, 0),
	})

	if _, err := f.service.SaveBudget(context.Background(), 1, decimal.NewFromInt(1000), ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if f.notifier.count() != 1 {
		t.Fatalf("Expected 1 alert, got %d", f.notifier.count())
	}
	msg := f.notifier.last().message
	if !containsAll(msg, "80%", "your monthly budget", "for March", "900.00") {
		t.Errorf("Unexpected alert message: %s", msg)
	}
}

func TestSaveBudget_RepositoryError(t *testing.T) {
	f := newBudgetFixture(time.Now())
	f.budgets.UpsertFn = func(userID int64, amount decimal.Decimal) (*domain.Budget, error) {
		return nil, errors.New("db down")
	}

	if _, err := f.service.SaveBudget(context.Background(), 1, decimal.NewFromInt(10), ""); err == nil {
		t.Error("Expected error")
	}
	if len(f.activity.Entries) != 0 {
		t.Error("Expected no activity on failure")
	}
}

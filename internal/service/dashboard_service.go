package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/query"
	"github.com/appdev/finance/finance-backend/internal/util"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RecentTransactionsLimit is how many transactions the dashboard lists
const RecentTransactionsLimit = 5

var hundred = decimal.NewFromInt(100)

// DashboardService handles dashboard-related business logic
type DashboardService struct {
	transactionRepo domain.TransactionRepository
	budgetRepo      domain.BudgetRepository
	lookups         *LookupCache
	now             func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	transactionRepo domain.TransactionRepository,
	budgetRepo domain.BudgetRepository,
	lookups *LookupCache,
	clock func() time.Time,
) *DashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &DashboardService{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		lookups:         lookups,
		now:             clock,
	}
}

// GetSummary returns the dashboard for a user. A blank month selects the current month.
func (s *DashboardService) GetSummary(ctx context.Context, userID int64, month string) (*domain.DashboardSummary, error) {
	selected := strings.TrimSpace(month)
	if selected == "" {
		selected = util.CurrentMonthName(s.now())
	} else if canonical := util.CanonicalMonthName(selected); canonical != "" {
		selected = canonical
	}

	summary := &domain.DashboardSummary{SelectedMonth: selected}
	var totalExpenses decimal.Decimal

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		totals, err := s.transactionRepo.ExpenseTotalsByCategory(userID)
		if err != nil {
			return err
		}
		sort.SliceStable(totals, func(i, j int) bool { return totals[i].Total.GreaterThan(totals[j].Total) })
		summary.CategoryTotals = nonNil(totals)
		return nil
	})
	g.Go(func() error {
		totals, err := s.transactionRepo.ExpenseTotalsByMonth(userID)
		if err != nil {
			return err
		}
		sort.SliceStable(totals, func(i, j int) bool { return util.MonthNameLess(totals[i].Month, totals[j].Month) })
		summary.MonthlyTotals = nonNil(totals)
		return nil
	})
	g.Go(func() error {
		budget, err := s.budgetRepo.GetByUserID(userID)
		if errors.Is(err, domain.ErrBudgetNotFound) {
			summary.Budget = decimal.Zero
			return nil
		}
		if err != nil {
			return err
		}
		summary.Budget = budget.Amount
		return nil
	})
	g.Go(func() error {
		total, err := s.transactionRepo.SumByType(userID, domain.TransactionTypeExpense, "")
		totalExpenses = total
		return err
	})
	g.Go(func() error {
		income, err := s.transactionRepo.SumByType(userID, domain.TransactionTypeIncome, selected)
		summary.MonthIncome = income
		return err
	})
	g.Go(func() error {
		expenses, err := s.transactionRepo.SumByType(userID, domain.TransactionTypeExpense, selected)
		summary.MonthExpenses = expenses
		return err
	})
	g.Go(func() error {
		recent, err := s.transactionRepo.Search(query.Query{
			Where: query.And{Terms: []query.Predicate{query.Equals{Field: query.FieldUserID, Value: userID}}},
			Sort:  query.Sort{Field: query.FieldTransactionDate, Direction: query.Desc},
			Limit: RecentTransactionsLimit,
		})
		if err != nil {
			return err
		}
		summary.RecentTransactions = nonNil(recent)
		return nil
	})
	g.Go(func() error {
		months, err := s.lookups.Months(userID, func() ([]string, error) { return s.transactionRepo.Months(userID) })
		if err != nil {
			return err
		}
		util.SortMonthNames(months)
		summary.AvailableMonths = nonNil(months)
		return nil
	})
	g.Go(func() error {
		categories, err := s.lookups.Categories(userID, func() ([]string, error) { return s.transactionRepo.Categories(userID, "") })
		if err != nil {
			return err
		}
		summary.Categories = nonNil(categories)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.BudgetUsagePercentage = BudgetUsagePercentage(totalExpenses, summary.Budget)
	return summary, nil
}

// BudgetUsagePercentage is expenses as a share of budget, clamped to [0, 100].
// A budget of zero or less yields zero.
func BudgetUsagePercentage(expenses, budget decimal.Decimal) decimal.Decimal {
	if !budget.IsPositive() {
		return decimal.Zero
	}
	pct := expenses.Div(budget).Mul(hundred).Round(2)
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appdev/finance/finance-backend/internal/cooldown"
	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/util"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DashboardLink is the link attached to budget notifications
const DashboardLink = "/dashboard"

var (
	near95Ratio = decimal.RequireFromString("0.95")
	near80Ratio = decimal.RequireFromString("0.80")
)

// ExpenseAggregator sums a user's transactions of one type.
// An empty month means all time; no rows yields zero.
type ExpenseAggregator interface {
	SumByType(userID int64, txType domain.TransactionType, month string) (decimal.Decimal, error)
}

// Notifier hands a notification off for delivery without waiting for it
type Notifier interface {
	Send(userID int64, message, link string) error
}

// ThresholdEvaluatorConfig holds the tunables of a BudgetThresholdEvaluator
type ThresholdEvaluatorConfig struct {
	Cooldown       time.Duration
	CurrencySymbol string
	Clock          func() time.Time
}

// DefaultThresholdEvaluatorConfig returns a 24h cooldown, peso amounts and the wall clock
func DefaultThresholdEvaluatorConfig() ThresholdEvaluatorConfig {
	return ThresholdEvaluatorConfig{
		Cooldown:       24 * time.Hour,
		CurrencySymbol: "₱",
		Clock:          time.Now,
	}
}

// BudgetThresholdEvaluator warns users whose expenses approach or pass their budget.
// Each (user, label) pair is sent at most once per cooldown window.
type BudgetThresholdEvaluator struct {
	expenses  ExpenseAggregator
	budgets   domain.BudgetRepository
	notifier  Notifier
	cooldowns cooldown.Store
	window    time.Duration
	currency  string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewBudgetThresholdEvaluator creates a new BudgetThresholdEvaluator
func NewBudgetThresholdEvaluator(
	expenses ExpenseAggregator,
	budgets domain.BudgetRepository,
	notifier Notifier,
	cooldowns cooldown.Store,
	logger zerolog.Logger,
	config ThresholdEvaluatorConfig,
) *BudgetThresholdEvaluator {
	defaults := DefaultThresholdEvaluatorConfig()
	if config.Cooldown <= 0 {
		config.Cooldown = defaults.Cooldown
	}
	if config.CurrencySymbol == "" {
		config.CurrencySymbol = defaults.CurrencySymbol
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}

	return &BudgetThresholdEvaluator{
		expenses:  expenses,
		budgets:   budgets,
		notifier:  notifier,
		cooldowns: cooldowns,
		window:    config.Cooldown,
		currency:  config.CurrencySymbol,
		now:       config.Clock,
		logger:    logger.With().Str("component", "budget_threshold").Logger(),
	}
}

// ClassifyThreshold returns the label for expenses measured against budget.
// Thresholds are rounded half-up to cents before comparing. ok is false when
// no label applies or the budget is not positive.
func ClassifyThreshold(expenses, budget decimal.Decimal) (label domain.ThresholdLabel, ok bool) {
	if !budget.IsPositive() {
		return "", false
	}
	switch {
	case expenses.GreaterThanOrEqual(budget.Round(2)):
		return domain.ThresholdExceeded, true
	case expenses.GreaterThanOrEqual(budget.Mul(near95Ratio).Round(2)):
		return domain.ThresholdNear95, true
	case expenses.GreaterThanOrEqual(budget.Mul(near80Ratio).Round(2)):
		return domain.ThresholdNear80, true
	}
	return "", false
}

// EvaluateForUser loads the user's budget and evaluates it. A user without a budget is skipped.
func (e *BudgetThresholdEvaluator) EvaluateForUser(ctx context.Context, userID int64, scope domain.ExpenseScope) (domain.ThresholdLabel, bool) {
	budget, err := e.budgets.GetByUserID(userID)
	if err != nil {
		if !errors.Is(err, domain.ErrBudgetNotFound) {
			e.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load budget for threshold check")
		}
		return "", false
	}
	return e.Evaluate(ctx, userID, &budget.Amount, scope)
}

// Evaluate checks the user's expenses in scope against budget and sends at most
// one warning. It never fails: lookup and dispatch errors are logged.
// It reports the label that was sent, if any.
func (e *BudgetThresholdEvaluator) Evaluate(ctx context.Context, userID int64, budget *decimal.Decimal, scope domain.ExpenseScope) (domain.ThresholdLabel, bool) {
	if userID <= 0 || budget == nil || !budget.IsPositive() {
		return "", false
	}

	now := e.now()
	month := ""
	if scope == domain.ExpenseScopeMonthly {
		month = util.CurrentMonthName(now)
	}

	expenses, err := e.expenses.SumByType(userID, domain.TransactionTypeExpense, month)
	if err != nil {
		e.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Str("scope", string(scope)).
			Msg("Failed to sum expenses for threshold check")
		return "", false
	}

	label, ok := ClassifyThreshold(expenses, *budget)
	if !ok {
		return "", false
	}

	key := cooldown.Key{UserID: userID, Label: label}
	reserved, err := e.cooldowns.Reserve(ctx, key, now, e.window)
	if err != nil {
		budgetAlertsTotal.WithLabelValues(string(label), "failed").Inc()
		e.logger.Error().Err(err).Int64("user_id", userID).Str("label", string(label)).Msg("Cooldown store unavailable")
		return "", false
	}
	if !reserved {
		budgetAlertsTotal.WithLabelValues(string(label), "suppressed").Inc()
		e.logger.Debug().Int64("user_id", userID).Str("label", string(label)).Msg("Budget alert suppressed by cooldown")
		return "", false
	}

	message := e.message(label, scope, month, *budget, expenses)
	if err := e.notifier.Send(userID, message, DashboardLink); err != nil {
		budgetAlertsTotal.WithLabelValues(string(label), "failed").Inc()
		if releaseErr := e.cooldowns.Release(ctx, key); releaseErr != nil {
			e.logger.Warn().Err(releaseErr).Int64("user_id", userID).Msg("Failed to release cooldown")
		}
		e.logger.Error().Err(err).Int64("user_id", userID).Str("label", string(label)).Msg("Failed to dispatch budget alert")
		return "", false
	}

	budgetAlertsTotal.WithLabelValues(string(label), "sent").Inc()
	e.logger.Info().
		Int64("user_id", userID).
		Str("label", string(label)).
		Str("scope", string(scope)).
		Str("budget", budget.StringFixed(2)).
		Str("expenses", expenses.StringFixed(2)).
		Msg("Budget alert sent")
	return label, true
}

func (e *BudgetThresholdEvaluator) message(label domain.ThresholdLabel, scope domain.ExpenseScope, month string, budget, expenses decimal.Decimal) string {
	owner, period := "your", "overall"
	if scope == domain.ExpenseScopeMonthly {
		owner, period = "your monthly", "for "+month
	}
	b := e.currency + formatAmount(budget)
	x := e.currency + formatAmount(expenses)

	switch label {
	case domain.ThresholdExceeded:
		return fmt.Sprintf("⚠️ Warning: You have exceeded %s budget of %s! Current expenses %s: %s.", owner, b, period, x)
	case domain.ThresholdNear95:
		return fmt.Sprintf("❗ Alert: You have used over 95%% of %s budget (%s). Current expenses %s: %s.", owner, b, period, x)
	default:
		return fmt.Sprintf("ℹ️ Info: You have used over 80%% of %s budget (%s). Current expenses %s: %s.", owner, b, period, x)
	}
}

// formatAmount renders an amount with thousands separators and two decimals, e.g. 1,000.00
func formatAmount(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

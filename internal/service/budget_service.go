package service

import (
	"context"
	"errors"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget business logic
type BudgetService struct {
	budgetRepo domain.BudgetRepository
	evaluator  *BudgetThresholdEvaluator
	activity   *ActivityService
	publisher  websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo domain.BudgetRepository,
	evaluator *BudgetThresholdEvaluator,
	activity *ActivityService,
	publisher websocket.EventPublisher,
) *BudgetService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &BudgetService{
		budgetRepo: budgetRepo,
		evaluator:  evaluator,
		activity:   activity,
		publisher:  publisher,
	}
}

// GetBudget returns the user's budget, or a zero budget when none was saved yet
func (s *BudgetService) GetBudget(userID int64) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByUserID(userID)
	if errors.Is(err, domain.ErrBudgetNotFound) {
		return &domain.Budget{UserID: userID, Amount: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// SaveBudget stores the user's budget and checks it against this month's expenses
func (s *BudgetService) SaveBudget(ctx context.Context, userID int64, amount decimal.Decimal, ipAddress string) (*domain.Budget, error) {
	if amount.IsNegative() {
		return nil, domain.ErrNegativeBudget
	}
	amount = amount.Round(2)

	budget, err := s.budgetRepo.Upsert(userID, amount)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to save budget")
		return nil, err
	}

	s.activity.Record(userID, domain.ActivityBudgetUpdated, "Budget set to "+amount.StringFixed(2), ipAddress)
	s.publisher.Publish(userID, websocket.BudgetUpdated(budget))

	if s.evaluator != nil {
		s.evaluator.Evaluate(ctx, userID, &budget.Amount, domain.ExpenseScopeMonthly)
	}
	return budget, nil
}

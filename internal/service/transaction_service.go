package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/query"
	"github.com/appdev/finance/finance-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	receipts        *ReceiptService
	evaluator       *BudgetThresholdEvaluator
	activity        *ActivityService
	publisher       websocket.EventPublisher
	filters         *query.TransactionFilterBuilder
	lookups         *LookupCache
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo domain.TransactionRepository,
	receipts *ReceiptService,
	evaluator *BudgetThresholdEvaluator,
	activity *ActivityService,
	publisher websocket.EventPublisher,
	filters *query.TransactionFilterBuilder,
	lookups *LookupCache,
) *TransactionService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &TransactionService{
		transactionRepo: transactionRepo,
		receipts:        receipts,
		evaluator:       evaluator,
		activity:        activity,
		publisher:       publisher,
		filters:         filters,
		lookups:         lookups,
	}
}

// CreateTransactionInput contains the input for creating a transaction
type CreateTransactionInput struct {
	Description     string
	Amount          decimal.Decimal
	Type            string
	Category        string
	TransactionDate *time.Time
}

// CreateTransaction validates and stores a transaction with an optional receipt.
// The month is derived from the date. Expenses trigger a monthly budget check.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID int64, input CreateTransactionInput, receipt *ReceiptUpload, ipAddress string) (*domain.Transaction, error) {
	tx, err := s.validate(userID, input)
	if err != nil {
		return nil, err
	}
	if receipt != nil && s.receipts.IsEnabled() {
		if _, err := s.receipts.Validate(receipt); err != nil {
			return nil, err
		}
	}

	created, err := s.transactionRepo.Create(tx)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to create transaction")
		return nil, err
	}

	if receipt != nil {
		file, err := s.receipts.Store(ctx, userID, created.ID, receipt)
		if err != nil {
			log.Warn().Err(err).
				Int64("user_id", userID).
				Int64("transaction_id", created.ID).
				Msg("Failed to store receipt, transaction saved without it")
		} else {
			created.Receipt = file
		}
	}

	s.lookups.Invalidate(userID)
	s.activity.Record(userID, domain.ActivityTransactionAdded,
		string(created.Type)+" "+created.Amount.StringFixed(2)+" - "+created.Description, ipAddress)
	s.publisher.Publish(userID, websocket.TransactionCreated(created))

	if created.Type == domain.TransactionTypeExpense && s.evaluator != nil {
		s.evaluator.EvaluateForUser(ctx, userID, domain.ExpenseScopeMonthly)
	}
	return created, nil
}

func (s *TransactionService) validate(userID int64, input CreateTransactionInput) (*domain.Transaction, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domain.ErrDescriptionRequired
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return nil, domain.ErrDescriptionTooLong
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}
	if utf8.RuneCountInString(category) > domain.MaxCategoryLength {
		return nil, domain.ErrCategoryTooLong
	}

	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	txType, err := domain.ParseTransactionType(input.Type)
	if err != nil {
		return nil, err
	}

	if input.TransactionDate == nil || input.TransactionDate.IsZero() {
		return nil, domain.ErrDateRequired
	}
	date := *input.TransactionDate

	return &domain.Transaction{
		UserID:          userID,
		Description:     description,
		Amount:          amount,
		Type:            txType,
		Category:        category,
		TransactionDate: date,
		Month:           domain.MonthOf(date),
	}, nil
}

// SearchTransactions returns the user's transactions matching criteria
func (s *TransactionService) SearchTransactions(userID int64, criteria query.TransactionCriteria) ([]*domain.Transaction, error) {
	transactions, err := s.transactionRepo.Search(s.filters.Build(userID, criteria))
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	return transactions, nil
}

// GetTransaction retrieves one of the user's transactions with its receipt
func (s *TransactionService) GetTransaction(userID, id int64) (*domain.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	tx.Receipt = s.receipts.Attached(tx.ID)
	return tx, nil
}

// GetReceipt returns links to the receipt of one of the user's transactions
func (s *TransactionService) GetReceipt(ctx context.Context, userID, transactionID int64) (*ReceiptLinks, error) {
	if _, err := s.transactionRepo.GetByID(userID, transactionID); err != nil {
		return nil, err
	}
	links, err := s.receipts.Links(ctx, transactionID)
	if errors.Is(err, ErrReceiptStorageNotConfigured) {
		return nil, domain.ErrReceiptNotFound
	}
	return links, err
}

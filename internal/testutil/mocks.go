package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/mail"
	"github.com/appdev/finance/finance-backend/internal/query"
	"github.com/appdev/finance/finance-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mu       sync.Mutex
	Users    map[int64]*domain.User
	nextID   int64
	CreateFn func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

// AddUser adds a user to the mock repository (test helper)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		user.ID = m.nextID
	}
	if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	m.Users[user.ID] = user
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email, ignoring case
func (m *MockUserRepository) GetByEmail(email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Users {
		if strings.EqualFold(existing.Email, user.Email) {
			return nil, domain.ErrEmailTaken
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.Users[user.ID] = user
	return user, nil
}

// UpdatePassword replaces the stored password hash
func (m *MockUserRepository) UpdatePassword(id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// MarkVerified flags the user as verified
func (m *MockUserRepository) MarkVerified(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Verified = true
	return nil
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository.
// Search runs the query through the in-memory interpreter.
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions map[int64]*domain.Transaction
	nextID       int64
	CreateFn     func(tx *domain.Transaction) (*domain.Transaction, error)
	SumByTypeFn  func(userID int64, txType domain.TransactionType, month string) (decimal.Decimal, error)
	SearchFn     func(q query.Query) ([]*domain.Transaction, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int64]*domain.Transaction),
		nextID:       1,
	}
}

// AddTransaction adds a transaction to the mock repository (test helper).
// Month is derived from the date when left empty.
func (m *MockTransactionRepository) AddTransaction(tx *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.ID == 0 {
		tx.ID = m.nextID
	}
	if tx.ID >= m.nextID {
		m.nextID = tx.ID + 1
	}
	if tx.Month == "" {
		tx.Month = domain.MonthOf(tx.TransactionDate)
	}
	m.Transactions[tx.ID] = tx
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx.ID = m.nextID
	m.nextID++
	tx.CreatedAt = time.Now()
	m.Transactions[tx.ID] = tx
	return tx, nil
}

// GetByID retrieves a transaction owned by userID
func (m *MockTransactionRepository) GetByID(userID int64, id int64) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.Transactions[id]
	if !ok || tx.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

// Search evaluates q against every stored transaction
func (m *MockTransactionRepository) Search(q query.Query) ([]*domain.Transaction, error) {
	if m.SearchFn != nil {
		return m.SearchFn(q)
	}
	return query.Execute(q, m.all()), nil
}

// SumByType totals a user's transactions of txType. An empty month means all time.
func (m *MockTransactionRepository) SumByType(userID int64, txType domain.TransactionType, month string) (decimal.Decimal, error) {
	if m.SumByTypeFn != nil {
		return m.SumByTypeFn(userID, txType, month)
	}
	total := decimal.Zero
	for _, tx := range m.forUser(userID) {
		if tx.Type != txType {
			continue
		}
		if month != "" && !strings.EqualFold(tx.Month, month) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total, nil
}

// Categories lists distinct categories for a user, optionally within a month
func (m *MockTransactionRepository) Categories(userID int64, month string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range m.forUser(userID) {
		if month != "" && !strings.EqualFold(tx.Month, month) {
			continue
		}
		if !seen[tx.Category] {
			seen[tx.Category] = true
			out = append(out, tx.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Months lists distinct month names for a user
func (m *MockTransactionRepository) Months(userID int64) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range m.forUser(userID) {
		if !seen[tx.Month] {
			seen[tx.Month] = true
			out = append(out, tx.Month)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ExpenseTotalsByCategory sums expenses per category
func (m *MockTransactionRepository) ExpenseTotalsByCategory(userID int64) ([]domain.CategoryTotal, error) {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range m.forUser(userID) {
		if tx.Type == domain.TransactionTypeExpense {
			totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
		}
	}
	out := make([]domain.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		out = append(out, domain.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// ExpenseTotalsByMonth sums expenses per month name
func (m *MockTransactionRepository) ExpenseTotalsByMonth(userID int64) ([]domain.MonthTotal, error) {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range m.forUser(userID) {
		if tx.Type == domain.TransactionTypeExpense {
			totals[tx.Month] = totals[tx.Month].Add(tx.Amount)
		}
	}
	out := make([]domain.MonthTotal, 0, len(totals))
	for month, total := range totals {
		out = append(out, domain.MonthTotal{Month: month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (m *MockTransactionRepository) all() []*domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Transaction, 0, len(m.Transactions))
	for _, tx := range m.Transactions {
		out = append(out, tx)
	}
	return out
}

func (m *MockTransactionRepository) forUser(userID int64) []*domain.Transaction {
	var out []*domain.Transaction
	for _, tx := range m.all() {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}

// MockTransactionFileRepository is a mock implementation of domain.TransactionFileRepository
type MockTransactionFileRepository struct {
	mu       sync.Mutex
	Files    map[int64]*domain.TransactionFile // keyed by transaction ID
	nextID   int64
	CreateFn func(file *domain.TransactionFile) (*domain.TransactionFile, error)
}

// NewMockTransactionFileRepository creates a new MockTransactionFileRepository
func NewMockTransactionFileRepository() *MockTransactionFileRepository {
	return &MockTransactionFileRepository{
		Files:  make(map[int64]*domain.TransactionFile),
		nextID: 1,
	}
}

// Create stores a file record
func (m *MockTransactionFileRepository) Create(file *domain.TransactionFile) (*domain.TransactionFile, error) {
	if m.CreateFn != nil {
		return m.CreateFn(file)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	file.ID = m.nextID
	m.nextID++
	file.UploadedAt = time.Now()
	m.Files[file.TransactionID] = file
	return file, nil
}

// GetByTransactionID retrieves the file attached to a transaction
func (m *MockTransactionFileRepository) GetByTransactionID(transactionID int64) (*domain.TransactionFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if file, ok := m.Files[transactionID]; ok {
		return file, nil
	}
	return nil, domain.ErrReceiptNotFound
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	mu            sync.Mutex
	Budgets       map[int64]*domain.Budget
	nextID        int64
	GetByUserIDFn func(userID int64) (*domain.Budget, error)
	UpsertFn      func(userID int64, amount decimal.Decimal) (*domain.Budget, error)
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int64]*domain.Budget),
		nextID:  1,
	}
}

// SetBudget stores a budget amount for a user (test helper)
func (m *MockBudgetRepository) SetBudget(userID int64, amount decimal.Decimal) {
	_, _ = m.upsert(userID, amount)
}

// GetByUserID retrieves a user's budget
func (m *MockBudgetRepository) GetByUserID(userID int64) (*domain.Budget, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Budgets[userID]; ok {
		return b, nil
	}
	return nil, domain.ErrBudgetNotFound
}

// Upsert creates or replaces a user's budget
func (m *MockBudgetRepository) Upsert(userID int64, amount decimal.Decimal) (*domain.Budget, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(userID, amount)
	}
	return m.upsert(userID, amount)
}

func (m *MockBudgetRepository) upsert(userID int64, amount decimal.Decimal) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Budgets[userID]
	if !ok {
		b = &domain.Budget{ID: m.nextID, UserID: userID}
		m.nextID++
		m.Budgets[userID] = b
	}
	b.Amount = amount
	b.UpdatedAt = time.Now()
	return b, nil
}

// MockNotificationRepository is a mock implementation of domain.NotificationRepository
type MockNotificationRepository struct {
	mu            sync.Mutex
	Notifications map[int64]*domain.Notification
	nextID        int64
	CreateFn      func(n *domain.Notification) (*domain.Notification, error)
}

// NewMockNotificationRepository creates a new MockNotificationRepository
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		Notifications: make(map[int64]*domain.Notification),
		nextID:        1,
	}
}

// Create stores a notification
func (m *MockNotificationRepository) Create(n *domain.Notification) (*domain.Notification, error) {
	if m.CreateFn != nil {
		return m.CreateFn(n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.nextID
	m.nextID++
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.Notifications[n.ID] = n
	return n, nil
}

// GetByID retrieves a notification
func (m *MockNotificationRepository) GetByID(id int64) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.Notifications[id]; ok {
		return n, nil
	}
	return nil, domain.ErrNotificationNotFound
}

// ListByUser lists a user's notifications, newest first
func (m *MockNotificationRepository) ListByUser(userID int64, unreadOnly bool) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for _, n := range m.Notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Status != domain.NotificationUnread {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// CountUnread counts a user's unread notifications
func (m *MockNotificationRepository) CountUnread(userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.Notifications {
		if n.UserID == userID && n.Status == domain.NotificationUnread {
			count++
		}
	}
	return count, nil
}

// MarkRead marks a notification read
func (m *MockNotificationRepository) MarkRead(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.Notifications[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	n.Status = domain.NotificationRead
	return nil
}

// MarkAllRead marks every unread notification of a user read
func (m *MockNotificationRepository) MarkAllRead(userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, n := range m.Notifications {
		if n.UserID == userID && n.Status == domain.NotificationUnread {
			n.Status = domain.NotificationRead
			updated++
		}
	}
	return updated, nil
}

// Len returns the number of stored notifications
func (m *MockNotificationRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notifications)
}

// MockActivityLogRepository is a mock implementation of domain.ActivityLogRepository
type MockActivityLogRepository struct {
	mu       sync.Mutex
	Entries  []*domain.ActivityLog
	CreateFn func(entry *domain.ActivityLog) (*domain.ActivityLog, error)
}

// NewMockActivityLogRepository creates a new MockActivityLogRepository
func NewMockActivityLogRepository() *MockActivityLogRepository {
	return &MockActivityLogRepository{}
}

// Create appends an entry
func (m *MockActivityLogRepository) Create(entry *domain.ActivityLog) (*domain.ActivityLog, error) {
	if m.CreateFn != nil {
		return m.CreateFn(entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.Entries) + 1)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.Entries = append(m.Entries, entry)
	return entry, nil
}

// ListByUser returns one page of a user's entries, newest first
func (m *MockActivityLogRepository) ListByUser(userID int64, page, pageSize int32) ([]*domain.ActivityLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var mine []*domain.ActivityLog
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].UserID == userID {
			mine = append(mine, m.Entries[i])
		}
	}
	total := int64(len(mine))
	start := int((page - 1) * pageSize)
	if start >= len(mine) {
		return []*domain.ActivityLog{}, total, nil
	}
	end := start + int(pageSize)
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], total, nil
}

// Types returns the recorded activity types for a user in insertion order
func (m *MockActivityLogRepository) Types(userID int64) []domain.ActivityType {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ActivityType
	for _, e := range m.Entries {
		if e.UserID == userID {
			out = append(out, e.Type)
		}
	}
	return out
}

// MockVerificationTokenRepository is a mock implementation of domain.VerificationTokenRepository
type MockVerificationTokenRepository struct {
	mu     sync.Mutex
	Tokens map[string]*domain.VerificationToken
	nextID int64
}

// NewMockVerificationTokenRepository creates a new MockVerificationTokenRepository
func NewMockVerificationTokenRepository() *MockVerificationTokenRepository {
	return &MockVerificationTokenRepository{
		Tokens: make(map[string]*domain.VerificationToken),
		nextID: 1,
	}
}

// Create stores a token
func (m *MockVerificationTokenRepository) Create(token *domain.VerificationToken) (*domain.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = m.nextID
	m.nextID++
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	m.Tokens[token.Token] = token
	return token, nil
}

// GetByToken retrieves a token of the given type
func (m *MockVerificationTokenRepository) GetByToken(token string, tokenType domain.TokenType) (*domain.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tokens[token]
	if !ok || t.Type != tokenType {
		return nil, domain.ErrTokenInvalid
	}
	row := *t
	return &row, nil
}

// MarkUsed flags an unused token as used; a token that is already used is invalid
func (m *MockVerificationTokenRepository) MarkUsed(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tokens {
		if t.ID == id && !t.Used {
			t.Used = true
			return nil
		}
	}
	return domain.ErrTokenInvalid
}

// InvalidateForUser marks every unused token of tokenType for the user as used
func (m *MockVerificationTokenRepository) InvalidateForUser(userID int64, tokenType domain.TokenType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tokens {
		if t.UserID == userID && t.Type == tokenType {
			t.Used = true
		}
	}
	return nil
}

// PurgeExpiredAndUsed deletes used tokens and tokens expired at now
func (m *MockVerificationTokenRepository) PurgeExpiredAndUsed(now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for key, t := range m.Tokens {
		if t.Used || t.IsExpired(now) {
			delete(m.Tokens, key)
			removed++
		}
	}
	return removed, nil
}

// ForUser returns the tokens of a user with the given type (test helper)
func (m *MockVerificationTokenRepository) ForUser(userID int64, tokenType domain.TokenType) []*domain.VerificationToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.VerificationToken
	for _, t := range m.Tokens {
		if t.UserID == userID && t.Type == tokenType {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MockReceiptStore is an in-memory storage.ReceiptStore
type MockReceiptStore struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	Types    map[string]string
	UploadFn func(objectKey string) error
}

// NewMockReceiptStore creates a new MockReceiptStore
func NewMockReceiptStore() *MockReceiptStore {
	return &MockReceiptStore{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

// Upload stores the object bytes
func (m *MockReceiptStore) Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) error {
	if m.UploadFn != nil {
		if err := m.UploadFn(objectKey); err != nil {
			return err
		}
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectKey] = buf
	m.Types[objectKey] = contentType
	return nil
}

// Delete removes an object
func (m *MockReceiptStore) Delete(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectKey)
	delete(m.Types, objectKey)
	return nil
}

// PresignedURL returns a fake signed URL for an existing object
func (m *MockReceiptStore) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[objectKey]; !ok {
		return "", fmt.Errorf("object %s not found", objectKey)
	}
	return fmt.Sprintf("https://storage.test/%s?expires=%d", objectKey, int64(expiry.Seconds())), nil
}

// Len returns the number of stored objects
func (m *MockReceiptStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}

// PublishedEvent is an event captured by MockEventPublisher
type PublishedEvent struct {
	UserID int64
	Event  websocket.Event
}

// MockEventPublisher records published websocket events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(userID int64, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{UserID: userID, Event: event})
}

// OfType returns the recorded events with the given combined type, e.g. "notification.count"
func (m *MockEventPublisher) OfType(eventType string) []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PublishedEvent
	for _, e := range m.Events {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockMailSender records outgoing mail
type MockMailSender struct {
	mu     sync.Mutex
	Sent   []mail.Message
	SendFn func(msg mail.Message) error
}

// NewMockMailSender creates a new MockMailSender
func NewMockMailSender() *MockMailSender {
	return &MockMailSender{}
}

// Send records msg
func (m *MockMailSender) Send(ctx context.Context, msg mail.Message) error {
	if m.SendFn != nil {
		if err := m.SendFn(msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// Count returns how many messages were sent
func (m *MockMailSender) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

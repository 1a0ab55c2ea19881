package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/middleware"
	"github.com/appdev/finance/finance-backend/internal/query"
	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/appdev/finance/finance-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "handler-test-secret-with-at-least-32-chars"

// testNow is the fixed clock for report and dashboard defaults
var testNow = time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	txRepo        *testutil.MockTransactionRepository
	budgets       *testutil.MockBudgetRepository
	notifications *testutil.MockNotificationRepository
	activity      *testutil.MockActivityLogRepository
	users         *testutil.MockUserRepository
	tokens        *testutil.MockVerificationTokenRepository
	mailer        *testutil.MockMailSender
	store         *testutil.MockReceiptStore
	files         *testutil.MockTransactionFileRepository

	auth          *AuthHandler
	budget        *BudgetHandler
	transaction   *TransactionHandler
	notification  *NotificationHandler
	report        *ReportHandler
	dashboard     *DashboardHandler
	activityLog   *ActivityHandler
	authService   *service.AuthService
	activityStore *service.ActivityService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		txRepo:        testutil.NewMockTransactionRepository(),
		budgets:       testutil.NewMockBudgetRepository(),
		notifications: testutil.NewMockNotificationRepository(),
		activity:      testutil.NewMockActivityLogRepository(),
		users:         testutil.NewMockUserRepository(),
		tokens:        testutil.NewMockVerificationTokenRepository(),
		mailer:        testutil.NewMockMailSender(),
		store:         testutil.NewMockReceiptStore(),
		files:         testutil.NewMockTransactionFileRepository(),
	}
	clock := func() time.Time { return testNow }
	publisher := testutil.NewMockEventPublisher()
	filters := query.NewTransactionFilterBuilder(zerolog.Nop())

	env.activityStore = service.NewActivityService(env.activity)
	env.authService = service.NewAuthService(
		env.users,
		env.tokens,
		env.mailer,
		service.NewTokenIssuer(testJWTSecret, "finance-backend", "finance-web", time.Hour),
		env.activityStore,
		service.AuthConfig{AppBaseURL: "http://localhost:3000", BcryptCost: bcrypt.MinCost},
	)
	transactionService := service.NewTransactionService(
		env.txRepo,
		service.NewReceiptService(env.store, env.files),
		nil,
		env.activityStore,
		publisher,
		filters,
		nil,
	)

	env.auth = NewAuthHandler(env.authService)
	env.budget = NewBudgetHandler(service.NewBudgetService(env.budgets, nil, env.activityStore, publisher))
	env.transaction = NewTransactionHandler(transactionService)
	env.notification = NewNotificationHandler(service.NewNotificationService(env.notifications, publisher))
	env.report = NewReportHandler(service.NewReportService(env.txRepo, filters, clock))
	env.dashboard = NewDashboardHandler(service.NewDashboardService(env.txRepo, env.budgets, nil, clock))
	env.activityLog = NewActivityHandler(env.activityStore)
	return env
}

// newContext builds an echo context for method and target, authenticated as userID when non-zero
func newContext(method, target string, body io.Reader, userID int64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		setupAuthContext(c, userID)
	}
	return c, rec
}

func setupAuthContext(c echo.Context, userID int64) {
	ctx := middleware.WithUserID(c.Request().Context(), userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	return problem
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func addTransaction(env *testEnv, userID int64, description string, txType domain.TransactionType, category, amount string, date time.Time) *domain.Transaction {
	tx := &domain.Transaction{
		UserID:          userID,
		Description:     description,
		Amount:          decimal.RequireFromString(amount),
		Type:            txType,
		Category:        category,
		TransactionDate: date,
	}
	env.txRepo.AddTransaction(tx)
	return tx
}

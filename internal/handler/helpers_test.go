package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/middleware"
	"github.com/growlify/growlify-api/internal/security"
	"github.com/growlify/growlify-api/internal/service"
	"github.com/growlify/growlify-api/internal/testutil"
	"github.com/growlify/growlify-api/internal/websocket"
)

const testCookieName = "growlify_session"

type testEnv struct {
	e            *echo.Echo
	sessions     *security.SessionManager
	hub          *websocket.Hub
	users        *testutil.MockUserRepository
	categories   *testutil.MockCategoryRepository
	transactions *testutil.MockTransactionRepository
	saved        *testutil.MockSavedCalculationRepository
	tokens       *testutil.MockResetTokenRepository
	mail         *testutil.MockMailer
	publisher    *testutil.MockEventPublisher
	reports      *service.ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithOptions(t, func(*testEnv) RouteOptions { return RouteOptions{} })
}

func newTestEnvWithOptions(t *testing.T, options func(env *testEnv) RouteOptions) *testEnv {
	t.Helper()

	sessions, err := security.NewSessionManager("handler-test-secret")
	require.NoError(t, err)

	env := &testEnv{
		e:            echo.New(),
		sessions:     sessions,
		hub:          websocket.NewHub(),
		users:        testutil.NewMockUserRepository(),
		transactions: testutil.NewMockTransactionRepository(),
		categories:   testutil.NewMockCategoryRepository(),
		saved:        testutil.NewMockSavedCalculationRepository(),
		mail:         &testutil.MockMailer{},
		publisher:    &testutil.MockEventPublisher{},
	}
	env.categories.Transactions = env.transactions
	env.tokens = testutil.NewMockResetTokenRepository(env.users)

	limiter := middleware.NewMemoryWindowLimiter(middleware.ForgotPasswordLimit, middleware.ForgotPasswordWindow)
	authService := service.NewAuthService(env.users, env.tokens, sessions, env.mail, limiter, "https://app.growlify.test")
	categoryService := service.NewCategoryService(env.categories)
	categoryService.SetEventPublisher(env.publisher)
	transactionService := service.NewTransactionService(env.transactions, env.categories)
	transactionService.SetEventPublisher(env.publisher)
	env.reports = service.NewReportService(env.transactions, env.categories, time.UTC)
	calculatorService := service.NewCalculatorService(env.saved)
	calculatorService.SetEventPublisher(env.publisher)

	RegisterRoutes(env.e, middleware.NewAuthMiddleware(sessions, testCookieName), Handlers{
		Health:      NewHealthHandler(),
		Auth:        NewAuthHandler(authService, testCookieName, false),
		Category:    NewCategoryHandler(categoryService),
		Transaction: NewTransactionHandler(transactionService),
		Report:      NewReportHandler(env.reports),
		Calculator:  NewCalculatorHandler(calculatorService),
		WebSocket:   NewWebSocketHandler(env.hub, sessions, []string{"http://localhost:5173"}),
	}, options(env))

	return env
}

// signIn stores a user and returns a session token for it
func (env *testEnv) signIn(t *testing.T, status domain.SubscriptionStatus) (*domain.User, string) {
	t.Helper()
	hash, err := security.HashPassword("secret1")
	require.NoError(t, err)
	user := &domain.User{
		ID:                 uuid.New(),
		Name:               "Ana Souza",
		Email:              uuid.NewString()[:8] + "@example.com",
		PasswordHash:       hash,
		SubscriptionStatus: status,
	}
	env.users.AddUser(user)

	token, _, err := env.sessions.Issue(user.ID, user.Email, user.Name)
	require.NoError(t, err)
	return user, token
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, detail string) ProblemDetails {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	problem := decodeBody[ProblemDetails](t, rec)
	require.Equal(t, status, problem.Status)
	if detail != "" {
		require.Equal(t, detail, problem.Detail)
	}
	return problem
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	return nil
}

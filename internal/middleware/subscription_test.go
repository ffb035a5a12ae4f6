package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growlify/growlify-api/internal/domain"
)

type stubUsers map[uuid.UUID]*domain.User

func (s stubUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type failingUsers struct{}

func (failingUsers) GetByID(context.Context, uuid.UUID) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestRequireActiveSubscription(t *testing.T) {
	active := &domain.User{ID: uuid.New(), SubscriptionStatus: domain.SubscriptionActive}
	pastDue := &domain.User{ID: uuid.New(), SubscriptionStatus: domain.SubscriptionPastDue}
	users := stubUsers{active.ID: active, pastDue.ID: pastDue}

	tests := []struct {
		name       string
		userID     uuid.UUID
		wantStatus int
		wantCalled bool
	}{
		{name: "active subscription passes", userID: active.ID, wantStatus: http.StatusOK, wantCalled: true},
		{name: "past due is blocked", userID: pastDue.ID, wantStatus: http.StatusPaymentRequired},
		{name: "unknown user", userID: uuid.New(), wantStatus: http.StatusUnauthorized},
		{name: "no session", userID: uuid.Nil, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/calculator/run", nil)
			if tt.userID != uuid.Nil {
				req = req.WithContext(context.WithValue(req.Context(), UserIDKey, tt.userID))
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			called := false
			err := RequireActiveSubscription(users)(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})(c)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantStatus == http.StatusPaymentRequired {
				assert.Contains(t, rec.Body.String(), "Assinatura necessária.")
			}
		})
	}
}

func TestRequireActiveSubscription_LookupFailure(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, uuid.New()))
	c := e.NewContext(req, httptest.NewRecorder())

	err := RequireActiveSubscription(failingUsers{})(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})(c)
	assert.Error(t, err)
}

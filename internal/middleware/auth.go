package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/growlify/growlify-api/internal/security"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the verified session
	SessionKey contextKey = "session"
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey contextKey = "user_id"
)

// SessionVerifier verifies session tokens
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*security.Session, error)
}

// AuthMiddleware authenticates requests with a session token taken from the
// Authorization header or the session cookie
type AuthMiddleware struct {
	sessions   SessionVerifier
	cookieName string
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(sessions SessionVerifier, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, cookieName: cookieName}
}

// Authenticate returns an Echo middleware that rejects requests without a valid session
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c.Request(), m.cookieName)
			if token == "" {
				return unauthorizedError(c, "Não autenticado.")
			}

			session, err := m.sessions.Verify(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("Session validation failed")
				return unauthorizedError(c, "Sessão inválida.")
			}

			ctx := context.WithValue(c.Request().Context(), SessionKey, session)
			ctx = context.WithValue(ctx, UserIDKey, session.UserID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// TokenFromRequest returns the bearer token, falling back to the session
// cookie. The header wins when both are present.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if authHeader := r.Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetUserID extracts the authenticated user ID from the context
func GetUserID(c echo.Context) uuid.UUID {
	if id, ok := c.Request().Context().Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetSession extracts the verified session from the context
func GetSession(c echo.Context) *security.Session {
	if session, ok := c.Request().Context().Value(SessionKey).(*security.Session); ok {
		return session
	}
	return nil
}

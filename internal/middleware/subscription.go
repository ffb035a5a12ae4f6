package middleware

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/growlify/growlify-api/internal/domain"
)

// UserLookup loads the current user record
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// RequireActiveSubscription rejects users whose subscription is not active.
// It must run after Authenticate.
func RequireActiveSubscription(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := GetUserID(c)
			if userID == uuid.Nil {
				return unauthorizedError(c, "Não autenticado.")
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return unauthorizedError(c, "Não autenticado.")
				}
				log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to load user for subscription check")
				return err
			}

			if !user.HasActiveSubscription() {
				return paymentRequiredError(c, "Assinatura necessária.")
			}
			return next(c)
		}
	}
}

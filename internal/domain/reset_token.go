package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResetTokenTTL is how long a password reset link stays valid
const ResetTokenTTL = time.Hour

// ResetToken is a single-use password reset grant. Only the SHA-256 of the
// emailed token is stored.
type ResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still be redeemed at now
func (t *ResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && t.ExpiresAt.After(now)
}

type ResetTokenRepository interface {
	Create(ctx context.Context, token *ResetToken) error
	GetByHash(ctx context.Context, tokenHash string) (*ResetToken, error)
	// Redeem sets the user's password hash and marks the token used in one transaction.
	Redeem(ctx context.Context, token *ResetToken, passwordHash string, usedAt time.Time) error
	// DeleteStale removes tokens that expired or were used before the cutoff.
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/growlify/growlify-api/internal/domain"
)

// ResetTokenRepository implements domain.ResetTokenRepository using PostgreSQL
type ResetTokenRepository struct {
	pool *pgxpool.Pool
}

// NewResetTokenRepository creates a new ResetTokenRepository
func NewResetTokenRepository(pool *pgxpool.Pool) *ResetTokenRepository {
	return &ResetTokenRepository{pool: pool}
}

// Create stores a new reset token
func (r *ResetTokenRepository) Create(ctx context.Context, token *domain.ResetToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt,
	).Scan(&token.CreatedAt)
}

// GetByHash retrieves a token by the hash of its secret
func (r *ResetTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.ResetToken, error) {
	var t domain.ResetToken
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1`,
		tokenHash,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrResetTokenInvalid
		}
		return nil, err
	}
	return &t, nil
}

// Redeem updates the password and consumes the token atomically. A token
// already used by a concurrent redeem yields ErrResetTokenInvalid.
func (r *ResetTokenRepository) Redeem(ctx context.Context, token *domain.ResetToken, passwordHash string, usedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE password_reset_tokens SET used_at = $2
		WHERE id = $1 AND used_at IS NULL AND expires_at > $2`,
		token.ID, usedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResetTokenInvalid
	}

	tag, err = tx.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, token.UserID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	token.UsedAt = &usedAt
	return nil
}

// DeleteStale removes tokens that expired, or were used, before the cutoff
func (r *ResetTokenRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM password_reset_tokens
		WHERE expires_at < $1 OR (used_at IS NOT NULL AND used_at < $1)`,
		before,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

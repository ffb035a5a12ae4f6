package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/growlify/growlify-api/internal/domain"
)

const savedCalculationColumns = `id, user_id, type, title, params_hash, params, result, created_at, updated_at`

// SavedCalculationRepository implements domain.SavedCalculationRepository using PostgreSQL
type SavedCalculationRepository struct {
	pool *pgxpool.Pool
}

// NewSavedCalculationRepository creates a new SavedCalculationRepository
func NewSavedCalculationRepository(pool *pgxpool.Pool) *SavedCalculationRepository {
	return &SavedCalculationRepository{pool: pool}
}

// Upsert inserts a calculation or, when (user, type, params hash) already
// exists, replaces its title, params and result.
func (r *SavedCalculationRepository) Upsert(ctx context.Context, calc *domain.SavedCalculation) (*domain.SavedCalculation, error) {
	if calc.ID == uuid.Nil {
		calc.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO saved_calculations (id, user_id, type, title, params_hash, params, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, type, params_hash) DO UPDATE
		SET title = EXCLUDED.title, params = EXCLUDED.params, result = EXCLUDED.result, updated_at = NOW()
		RETURNING `+savedCalculationColumns,
		calc.ID,
		calc.UserID,
		string(calc.Type),
		calc.Title,
		calc.ParamsHash,
		[]byte(calc.Params),
		[]byte(calc.Result),
	)
	return scanSavedCalculation(row)
}

// ListRecent returns the most recently updated calculations of a user
func (r *SavedCalculationRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.SavedCalculation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+savedCalculationColumns+`
		FROM saved_calculations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.SavedCalculation, 0, limit)
	for rows.Next() {
		calc, err := scanSavedCalculation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, calc)
	}
	return result, rows.Err()
}

// Delete removes a saved calculation
func (r *SavedCalculationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM saved_calculations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSavedCalculationNotFound
	}
	return nil
}

func scanSavedCalculation(row pgx.Row) (*domain.SavedCalculation, error) {
	var (
		c              domain.SavedCalculation
		kind           string
		params, result []byte
	)
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&kind,
		&c.Title,
		&c.ParamsHash,
		&params,
		&result,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Type = domain.CalculationKind(kind)
	c.Params = params
	c.Result = result
	return &c, nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/growlify/growlify-api/internal/domain"
)

const categoryColumns = `id, user_id, name, kind, priority, monthly_budget_cents, created_at, updated_at`

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (id, user_id, name, kind, priority, monthly_budget_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		category.ID, category.UserID, category.Name, string(category.Kind), string(category.Priority), category.MonthlyBudgetCents,
	)
	return scanCategory(row)
}

// CreateMany inserts categories in one transaction
func (r *CategoryRepository) CreateMany(ctx context.Context, categories []*domain.Category) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertCategories(ctx, tx, categories); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID retrieves a category owned by userID
func (r *CategoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// ListByUser returns a user's categories ordered by name
func (r *CategoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 ORDER BY name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

// Update overwrites the mutable fields of a category
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE categories
		SET name = $3, kind = $4, priority = $5, monthly_budget_cents = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+categoryColumns,
		category.ID, category.UserID, category.Name, string(category.Kind), string(category.Priority), category.MonthlyBudgetCents,
	)
	updated, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a category. Its transactions become uncategorized.
func (r *CategoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func insertCategories(ctx context.Context, q querier, categories []*domain.Category) error {
	for _, c := range categories {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if _, err := q.Exec(ctx, `
			INSERT INTO categories (id, user_id, name, kind, priority, monthly_budget_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.UserID, c.Name, string(c.Kind), string(c.Priority), c.MonthlyBudgetCents,
		); err != nil {
			return err
		}
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c              domain.Category
		kind, priority string
	)
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&kind,
		&priority,
		&c.MonthlyBudgetCents,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Kind = domain.CategoryKind(kind)
	c.Priority = domain.CategoryPriority(priority)
	return &c, nil
}

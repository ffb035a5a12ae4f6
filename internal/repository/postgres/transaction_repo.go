package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/growlify/growlify-api/internal/domain"
)

const transactionColumns = `t.id, t.user_id, t.type, t.amount_cents, t.date, t.category_id, t.description, t.method, t.tag, t.created_at, t.updated_at`

const transactionWithCategoryColumns = transactionColumns + `,
	c.id, c.name, c.kind, c.priority, c.monthly_budget_cents, c.created_at, c.updated_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions AS t (id, user_id, type, amount_cents, date, category_id, description, method, tag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+transactionColumns,
		transaction.ID,
		transaction.UserID,
		string(transaction.Type),
		transaction.AmountCents,
		transaction.Date,
		transaction.CategoryID,
		transaction.Description,
		string(transaction.Method),
		transaction.Tag,
	)
	created, err := scanTransaction(row)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a transaction owned by userID
func (r *TransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1 AND t.user_id = $2`, id, userID)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// List returns a user's transactions with their categories, newest first
func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filters domain.TransactionFilters) ([]*domain.Transaction, error) {
	query, args := buildListQuery(userID, filters)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		transaction, err := scanTransactionWithCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, transaction)
	}
	return result, rows.Err()
}

// Update overwrites the mutable fields of a transaction
func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE transactions AS t
		SET type = $3, amount_cents = $4, date = $5, category_id = $6, description = $7, method = $8, tag = $9, updated_at = NOW()
		WHERE t.id = $1 AND t.user_id = $2
		RETURNING `+transactionColumns,
		transaction.ID,
		transaction.UserID,
		string(transaction.Type),
		transaction.AmountCents,
		transaction.Date,
		transaction.CategoryID,
		transaction.Description,
		string(transaction.Method),
		transaction.Tag,
	)
	updated, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		if isPgForeignKeyViolation(err) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// buildListQuery renders the listing SQL. Text search is left to the caller.
func buildListQuery(userID uuid.UUID, filters domain.TransactionFilters) (string, []any) {
	where := []string{"t.user_id = $1"}
	args := []any{userID}

	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filters.Type != nil {
		add("t.type = $%d", string(*filters.Type))
	}
	if filters.CategoryID != nil {
		add("t.category_id = $%d", *filters.CategoryID)
	}
	if filters.From != nil {
		add("t.date >= $%d", *filters.From)
	}
	if filters.To != nil {
		add("t.date <= $%d", *filters.To)
	}

	query := `SELECT ` + transactionWithCategoryColumns + `
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY t.date DESC, t.created_at DESC`
	return query, args
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t            domain.Transaction
		kind, method string
	)
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&kind,
		&t.AmountCents,
		&t.Date,
		&t.CategoryID,
		&t.Description,
		&method,
		&t.Tag,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Type = domain.TransactionType(kind)
	t.Method = domain.PaymentMethod(method)
	return &t, nil
}

func scanTransactionWithCategory(row pgx.Row) (*domain.Transaction, error) {
	var (
		t                domain.Transaction
		kind, method     string
		catID            *uuid.UUID
		catName          *string
		catKind, catPrio *string
		catBudget        *int64
		catCreated       *time.Time
		catUpdated       *time.Time
	)
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&kind,
		&t.AmountCents,
		&t.Date,
		&t.CategoryID,
		&t.Description,
		&method,
		&t.Tag,
		&t.CreatedAt,
		&t.UpdatedAt,
		&catID,
		&catName,
		&catKind,
		&catPrio,
		&catBudget,
		&catCreated,
		&catUpdated,
	); err != nil {
		return nil, err
	}
	t.Type = domain.TransactionType(kind)
	t.Method = domain.PaymentMethod(method)

	if catID != nil {
		t.Category = &domain.Category{
			ID:                 *catID,
			UserID:             t.UserID,
			Name:               deref(catName),
			Kind:               domain.CategoryKind(deref(catKind)),
			Priority:           domain.CategoryPriority(deref(catPrio)),
			MonthlyBudgetCents: catBudget,
		}
		if catCreated != nil {
			t.Category.CreatedAt = *catCreated
		}
		if catUpdated != nil {
			t.Category.UpdatedAt = *catUpdated
		}
	}
	return &t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/growlify/growlify-api/internal/domain"
)

func TestBuildListQuery_NoFilters(t *testing.T) {
	userID := uuid.New()
	query, args := buildListQuery(userID, domain.TransactionFilters{})

	assert.Equal(t, []any{userID}, args)
	assert.Contains(t, query, "WHERE t.user_id = $1\n")
	assert.Contains(t, query, "LEFT JOIN categories c ON c.id = t.category_id")
	assert.Contains(t, query, "ORDER BY t.date DESC")
}

func TestBuildListQuery_AllFilters(t *testing.T) {
	userID, categoryID := uuid.New(), uuid.New()
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 23, 59, 59, 999_000_000, time.UTC)
	expense := domain.TransactionTypeExpense

	query, args := buildListQuery(userID, domain.TransactionFilters{
		From:       &from,
		To:         &to,
		Type:       &expense,
		CategoryID: &categoryID,
		Query:      "ignored by sql",
	})

	assert.Equal(t, []any{userID, "expense", categoryID, from, to}, args)
	assert.Contains(t, query, "t.user_id = $1 AND t.type = $2 AND t.category_id = $3 AND t.date >= $4 AND t.date <= $5")
	assert.False(t, strings.Contains(query, "ignored"))
}

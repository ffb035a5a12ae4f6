package insight

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growlify/growlify-api/internal/domain"
)

var now = time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)

func budget(v int64) *int64 { return &v }

func category(id uuid.UUID, name string, monthlyBudget *int64) *domain.Category {
	return &domain.Category{ID: id, Name: name, MonthlyBudgetCents: monthlyBudget}
}

func expense(categoryID *uuid.UUID, cents int64, date time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TransactionTypeExpense,
		AmountCents: cents,
		Date:        date,
		CategoryID:  categoryID,
	}
}

func income(categoryID *uuid.UUID, cents int64, date time.Time) *domain.Transaction {
	tx := expense(categoryID, cents, date)
	tx.Type = domain.TransactionTypeIncome
	return tx
}

var (
	lastMonthDay = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	thisMonthDay = time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC)
)

func TestCompute_CategoryGrowthWarning(t *testing.T) {
	food := uuid.New()
	got := Compute(
		[]*domain.Category{category(food, "Food", nil)},
		[]*domain.Transaction{
			expense(&food, 10000, lastMonthDay),
			expense(&food, 13000, thisMonthDay),
		},
		now,
	)

	require.Len(t, got, 1)
	assert.Equal(t, domain.InsightCategoryGrowth, got[0].ID)
	assert.Equal(t, "alert", got[0].Type)
	assert.Equal(t, domain.InsightSeverityWarning, got[0].Severity)
	assert.Contains(t, got[0].Message, "Food")
	assert.Contains(t, got[0].Message, "30%")
}

func TestCompute_CategoryGrowthInfo(t *testing.T) {
	food := uuid.New()
	got := Compute(
		[]*domain.Category{category(food, "Mercado", nil)},
		[]*domain.Transaction{
			expense(&food, 10000, lastMonthDay),
			expense(&food, 11500, thisMonthDay),
		},
		now,
	)

	require.Len(t, got, 1)
	assert.Equal(t, domain.InsightSeverityInfo, got[0].Severity)
	assert.Equal(t, "Gastos com Mercado subiram 15% em relação ao mês anterior.", got[0].Message)
}

func TestCompute_SeverityFollowsRoundedPct(t *testing.T) {
	food := uuid.New()
	got := Compute(
		[]*domain.Category{category(food, "Food", nil)},
		[]*domain.Transaction{
			expense(&food, 10000, lastMonthDay),
			expense(&food, 11960, thisMonthDay),
		},
		now,
	)

	require.Len(t, got, 1)
	assert.Equal(t, "Gastos com Food subiram 20% em relação ao mês anterior.", got[0].Message)
	assert.Equal(t, domain.InsightSeverityWarning, got[0].Severity)
}

func TestCompute_GrowthJustBelowTenIsSilent(t *testing.T) {
	food := uuid.New()
	// 9.96% rounds to 10 but the threshold applies to the exact value
	got := Compute(
		[]*domain.Category{category(food, "Food", nil)},
		[]*domain.Transaction{
			expense(&food, 10000, lastMonthDay),
			expense(&food, 10996, thisMonthDay),
		},
		now,
	)
	assert.Empty(t, got)
}

func TestCompute_GrowthBelowThresholdIsSilent(t *testing.T) {
	food := uuid.New()
	got := Compute(
		[]*domain.Category{category(food, "Food", nil)},
		[]*domain.Transaction{
			expense(&food, 10000, lastMonthDay),
			expense(&food, 10900, thisMonthDay),
		},
		now,
	)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestCompute_Absence(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := Compute(
		[]*domain.Category{category(a, "Lazer", budget(50000)), category(b, "Saúde", nil)},
		[]*domain.Transaction{
			// new this month, nothing to compare against
			expense(&a, 20000, thisMonthDay),
			// only last month
			expense(&b, 8000, lastMonthDay),
			// income never counts
			income(&b, 900000, thisMonthDay),
		},
		now,
	)
	assert.Empty(t, got)
}

func TestCompute_MonthBoundaries(t *testing.T) {
	food := uuid.New()
	got := Compute(
		[]*domain.Category{category(food, "Food", nil)},
		[]*domain.Transaction{
			// exactly at the start of last month and its last millisecond
			expense(&food, 5000, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
			expense(&food, 5000, time.Date(2026, 1, 31, 23, 59, 59, 999_000_000, time.UTC)),
			// two months ago is ignored
			expense(&food, 99999, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)),
			// exactly at the start of this month
			expense(&food, 15000, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
		},
		now,
	)

	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "50%")
}

func TestCompute_DeletedCategoryFallsBackToUncategorizedLabel(t *testing.T) {
	deleted := uuid.New()
	got := Compute(
		nil,
		[]*domain.Transaction{
			expense(&deleted, 1000, lastMonthDay),
			expense(&deleted, 2000, thisMonthDay),
		},
		now,
	)

	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, domain.UncategorizedLabel)
	assert.Contains(t, got[0].Message, "100%")
}

func TestCompute_UncategorizedBucket(t *testing.T) {
	got := Compute(
		nil,
		[]*domain.Transaction{
			expense(nil, 1000, lastMonthDay),
			expense(nil, 1500, thisMonthDay),
		},
		now,
	)

	require.Len(t, got, 1)
	assert.Equal(t, "Gastos com Sem categoria subiram 50% em relação ao mês anterior.", got[0].Message)
}

func TestCompute_PicksLargestGrowth(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := Compute(
		[]*domain.Category{category(a, "Transporte", nil), category(b, "Delivery", nil)},
		[]*domain.Transaction{
			expense(&a, 1000, lastMonthDay),
			expense(&a, 1200, thisMonthDay),
			expense(&b, 1000, lastMonthDay),
			expense(&b, 3000, thisMonthDay),
		},
		now,
	)

	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "Delivery")
	assert.Contains(t, got[0].Message, "200%")
}

func TestCompute_GrowthTieGoesToLowestID(t *testing.T) {
	low := uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	high := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")
	txs := []*domain.Transaction{
		expense(&high, 1000, lastMonthDay),
		expense(&high, 1500, thisMonthDay),
		expense(&low, 2000, lastMonthDay),
		expense(&low, 3000, thisMonthDay),
		expense(nil, 100, lastMonthDay),
		expense(nil, 150, thisMonthDay),
	}
	cats := []*domain.Category{category(high, "Alta", nil), category(low, "Baixa", nil)}

	for i := 0; i < 10; i++ {
		got := Compute(cats, txs, now)
		require.Len(t, got, 1)
		assert.Contains(t, got[0].Message, "Baixa")
	}
}

func TestCompute_BudgetOverrun(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := Compute(
		[]*domain.Category{
			category(a, "Lazer", budget(10000)),
			category(b, "Mercado", budget(50000)),
		},
		[]*domain.Transaction{
			expense(&a, 12000, thisMonthDay), // 20% over
			expense(&b, 75000, thisMonthDay), // 50% over
			// last month overruns do not matter
			expense(&a, 999999, lastMonthDay),
		},
		now,
	)

	// growth uses a's 12000 vs 999999, a drop, so only the budget alert fires
	require.Len(t, got, 1)
	assert.Equal(t, domain.InsightBudgetOver, got[0].ID)
	assert.Equal(t, domain.InsightSeverityWarning, got[0].Severity)
	assert.Equal(t, "Orçamento do mês", got[0].Title)
	assert.Equal(t, "Você ultrapassou o orçamento em Mercado.", got[0].Message)
}

func TestCompute_BudgetExactlyMetIsNotOver(t *testing.T) {
	a := uuid.New()
	got := Compute(
		[]*domain.Category{category(a, "Lazer", budget(10000)), category(uuid.New(), "Zero", budget(0))},
		[]*domain.Transaction{expense(&a, 10000, thisMonthDay)},
		now,
	)
	assert.Empty(t, got)
}

func TestCompute_GrowthThenBudgetOrder(t *testing.T) {
	a := uuid.New()
	got := Compute(
		[]*domain.Category{category(a, "Lazer", budget(10000))},
		[]*domain.Transaction{
			expense(&a, 10000, lastMonthDay),
			expense(&a, 20000, thisMonthDay),
		},
		now,
	)

	require.Len(t, got, 2)
	assert.Equal(t, domain.InsightCategoryGrowth, got[0].ID)
	assert.Equal(t, domain.InsightBudgetOver, got[1].ID)
}

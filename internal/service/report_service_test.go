package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/testutil"
)

type reportFixture struct {
	service      *ReportService
	transactions *testutil.MockTransactionRepository
	categories   *testutil.MockCategoryRepository
	userID       uuid.UUID
}

var reportNow = time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)

func setupReportService(t *testing.T) *reportFixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	f := &reportFixture{
		transactions: testutil.NewMockTransactionRepository(),
		categories:   testutil.NewMockCategoryRepository(),
		userID:       uuid.New(),
	}
	f.service = NewReportService(f.transactions, f.categories, loc)
	f.service.now = func() time.Time { return reportNow }
	return f
}

func (f *reportFixture) add(kind domain.TransactionType, cents int64, date time.Time, categoryID *uuid.UUID) *domain.Transaction {
	tx := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      f.userID,
		Type:        kind,
		AmountCents: cents,
		Date:        date,
		CategoryID:  categoryID,
		Method:      domain.PaymentMethodCard,
	}
	f.transactions.AddTransaction(tx)
	return tx
}

func TestReportService_Summary_DefaultsToCurrentMonth(t *testing.T) {
	f := setupReportService(t)
	food := uuid.New()
	f.categories.AddCategory(&domain.Category{ID: food, UserID: f.userID, Name: "Alimentação"})

	f.add(domain.TransactionTypeIncome, 500000, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), nil)
	f.add(domain.TransactionTypeExpense, 13000, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), &food)
	// later this month still counts
	f.add(domain.TransactionTypeExpense, 7000, time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC), nil)
	// last month: only feeds insights
	f.add(domain.TransactionTypeExpense, 10000, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), &food)

	summary, err := f.service.Summary(context.Background(), f.userID, ReportRange{})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), summary.Period.From)
	assert.Equal(t, time.Date(2026, 2, 28, 23, 59, 59, 999_000_000, time.UTC), summary.Period.To)
	assert.Equal(t, domain.ReportTotals{
		BalanceCents: 480000,
		IncomeCents:  500000,
		ExpenseCents: 20000,
		ResultCents:  480000,
	}, summary.Totals)

	require.Len(t, summary.Insights, 1)
	assert.Equal(t, domain.InsightCategoryGrowth, summary.Insights[0].ID)
	assert.Contains(t, summary.Insights[0].Message, "Alimentação")
	assert.Contains(t, summary.Insights[0].Message, "30%")
}

func TestReportService_Summary_InsightsFollowTo(t *testing.T) {
	f := setupReportService(t)
	food := uuid.New()
	f.categories.AddCategory(&domain.Category{ID: food, UserID: f.userID, Name: "Alimentação"})

	f.add(domain.TransactionTypeExpense, 1000, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), &food)
	f.add(domain.TransactionTypeExpense, 2000, time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), &food)
	// after "to", ignored
	f.add(domain.TransactionTypeExpense, 99999, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), &food)

	from := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	summary, err := f.service.Summary(context.Background(), f.userID, ReportRange{From: &from, To: &to})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), summary.Totals.ExpenseCents)
	require.Len(t, summary.Insights, 1)
	assert.Contains(t, summary.Insights[0].Message, "100%")
}

func TestReportService_Summary_EmptyInsightsNotNil(t *testing.T) {
	f := setupReportService(t)

	summary, err := f.service.Summary(context.Background(), f.userID, ReportRange{})
	require.NoError(t, err)
	assert.NotNil(t, summary.Insights)
	assert.Empty(t, summary.Insights)
}

func TestReportService_Summary_RepositoryError(t *testing.T) {
	f := setupReportService(t)
	f.transactions.ListErr = errors.New("connection reset")

	_, err := f.service.Summary(context.Background(), f.userID, ReportRange{})
	assert.EqualError(t, err, "connection reset")
}

func TestReportService_ExportCSV(t *testing.T) {
	f := setupReportService(t)
	food := uuid.New()
	f.categories.AddCategory(&domain.Category{ID: food, UserID: f.userID, Name: "Alimentação"})

	desc := `Feira "orgânica"; semana`
	tx := f.add(domain.TransactionTypeExpense, 123456, time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC), &food)
	tx.Description = &desc
	tx.Method = domain.PaymentMethodPix
	f.add(domain.TransactionTypeIncome, 500, time.Date(2026, 2, 1, 2, 0, 0, 0, time.UTC), nil)
	// outside the period
	f.add(domain.TransactionTypeIncome, 1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), nil)

	data, err := f.service.ExportCSV(context.Background(), f.userID, ReportRange{})
	require.NoError(t, err)

	assert.False(t, strings.HasSuffix(string(data), "\n"))
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Data;Tipo;Valor (R$);Categoria;Método;Descrição;Tag", lines[0])
	// São Paulo is UTC-3
	assert.Equal(t, `"10/02/26 12:30";"Saída";"1234,56";"Alimentação";"Pix";"Feira ""orgânica""; semana";""`, lines[1])
	assert.Equal(t, `"31/01/26 23:00";"Entrada";"5,00";"Sem categoria";"Cartão";"";""`, lines[2])
}

func TestReportService_ArchiveExport(t *testing.T) {
	f := setupReportService(t)
	f.add(domain.TransactionTypeIncome, 500, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC), nil)

	_, err := f.service.ArchiveExport(context.Background(), f.userID, ReportRange{})
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)

	store := testutil.NewMockExportStore()
	f.service.SetExportStore(store)

	archived, err := f.service.ArchiveExport(context.Background(), f.userID, ReportRange{})
	require.NoError(t, err)

	wantPath := "exports/" + f.userID.String() + "/20260216T120000Z.csv"
	assert.Equal(t, wantPath, archived.Path)
	assert.Equal(t, "https://storage.test/"+wantPath+"?expires=15m0s", archived.URL)
	assert.Equal(t, reportNow.Add(15*time.Minute), archived.ExpiresAt)
	assert.Contains(t, string(store.Objects[wantPath]), `"Entrada";"5,00"`)
	assert.Equal(t, "text/csv; charset=utf-8", store.ContentType[wantPath])
}

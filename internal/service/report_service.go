package service

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/insight"
	"github.com/growlify/growlify-api/internal/repository/storage"
	"github.com/growlify/growlify-api/internal/util"
)

const (
	csvContentType = "text/csv; charset=utf-8"
	csvDateLayout  = "02/01/06 15:04"
	csvSeparator   = ";"
)

var csvHeader = []string{"Data", "Tipo", "Valor (R$)", "Categoria", "Método", "Descrição", "Tag"}

// ReportService builds summaries and exports
type ReportService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	exportStore     storage.ExportStore
	location        *time.Location
	now             func() time.Time
}

// NewReportService creates a new ReportService. CSV dates are rendered in location.
func NewReportService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository, location *time.Location) *ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		location:        location,
		now:             time.Now,
	}
}

// SetExportStore enables archived exports
func (s *ReportService) SetExportStore(store storage.ExportStore) {
	s.exportStore = store
}

// ReportRange is an optional inclusive period. Missing bounds default to
// the current UTC month.
type ReportRange struct {
	From *time.Time
	To   *time.Time
}

// resolve returns the period bounds and the reference instant for insights
func (r ReportRange) resolve(now time.Time) (from, to, ref time.Time) {
	from, to, ref = util.StartOfMonthUTC(now, 0), util.EndOfMonthUTC(now, 0), now
	if r.From != nil {
		from = r.From.UTC()
	}
	if r.To != nil {
		to = r.To.UTC()
		ref = to
	}
	return from, to, ref
}

// Summary totals the period and derives insights relative to the end of the
// period, or now when no end is given
func (s *ReportService) Summary(ctx context.Context, userID uuid.UUID, rng ReportRange) (*domain.ReportSummary, error) {
	from, to, ref := rng.resolve(s.now())

	var (
		periodTx   []*domain.Transaction
		insightsTx []*domain.Transaction
		categories []*domain.Category
	)
	insightsFrom := util.StartOfMonthUTC(ref, -1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		periodTx, err = s.transactionRepo.List(gctx, userID, domain.TransactionFilters{From: &from, To: &to})
		return err
	})
	g.Go(func() (err error) {
		insightsTx, err = s.transactionRepo.List(gctx, userID, domain.TransactionFilters{From: &insightsFrom, To: &to})
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.categoryRepo.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var totals domain.ReportTotals
	for _, t := range periodTx {
		if t.IsExpense() {
			totals.ExpenseCents += t.AmountCents
		} else {
			totals.IncomeCents += t.AmountCents
		}
	}
	totals.ResultCents = totals.IncomeCents - totals.ExpenseCents
	totals.BalanceCents = totals.ResultCents

	return &domain.ReportSummary{
		Period:   domain.ReportPeriod{From: from, To: to},
		Totals:   totals,
		Insights: insight.Compute(categories, insightsTx, ref),
	}, nil
}

// ExportCSV renders the period's transactions as a semicolon separated file.
// The header is bare; every data field is quoted.
func (s *ReportService) ExportCSV(ctx context.Context, userID uuid.UUID, rng ReportRange) ([]byte, error) {
	from, to, _ := rng.resolve(s.now())

	items, err := s.transactionRepo.List(ctx, userID, domain.TransactionFilters{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(csvHeader, csvSeparator))
	for _, t := range items {
		buf.WriteByte('\n')
		for i, field := range s.csvRow(t, names) {
			if i > 0 {
				buf.WriteString(csvSeparator)
			}
			buf.WriteString(quoteCSV(field))
		}
	}
	return buf.Bytes(), nil
}

// quoteCSV wraps a data field in quotes, doubling embedded quotes
func quoteCSV(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func (s *ReportService) csvRow(t *domain.Transaction, names map[uuid.UUID]string) []string {
	kind := "Entrada"
	if t.IsExpense() {
		kind = "Saída"
	}

	category := domain.UncategorizedLabel
	if t.Category != nil && t.Category.Name != "" {
		category = t.Category.Name
	} else if t.CategoryID != nil {
		if name, ok := names[*t.CategoryID]; ok {
			category = name
		}
	}

	return []string{
		t.Date.In(s.location).Format(csvDateLayout),
		kind,
		util.FormatCentsBRL(t.AmountCents),
		category,
		t.Method.Label(),
		valueOrEmpty(t.Description),
		valueOrEmpty(t.Tag),
	}
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ArchivedExport is an uploaded CSV export with its temporary link
type ArchivedExport struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ArchiveExport uploads the CSV export and returns a presigned download link
func (s *ReportService) ArchiveExport(ctx context.Context, userID uuid.UUID, rng ReportRange) (*ArchivedExport, error) {
	if s.exportStore == nil {
		return nil, domain.ErrStorageNotConfigured
	}

	data, err := s.ExportCSV(ctx, userID, rng)
	if err != nil {
		return nil, err
	}

	now := s.now()
	objectPath := storage.ExportObjectPath(userID, now)
	if _, err := s.exportStore.Upload(ctx, objectPath, bytes.NewReader(data), csvContentType, int64(len(data))); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to upload export")
		return nil, err
	}
	url, err := s.exportStore.GeneratePresignedURL(ctx, objectPath, storage.ExportURLExpiry)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", userID.String()).Str("path", objectPath).Msg("Archived export")
	return &ArchivedExport{
		Path:      objectPath,
		URL:       url,
		ExpiresAt: now.Add(storage.ExportURLExpiry).UTC(),
	}, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/util"
	"github.com/growlify/growlify-api/internal/websocket"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	eventPublisher  websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransactionService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Type        domain.TransactionType
	AmountCents int64
	Date        time.Time
	CategoryID  *uuid.UUID
	Description *string
	Method      domain.PaymentMethod
	Tag         *string
}

// GetTransactions lists transactions ordered by date descending. The text
// query matches description or tag.
func (s *TransactionService) GetTransactions(ctx context.Context, userID uuid.UUID, filters domain.TransactionFilters) ([]*domain.Transaction, error) {
	items, err := s.transactionRepo.List(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	q := strings.TrimSpace(filters.Query)
	if q == "" {
		return items, nil
	}
	matched := make([]*domain.Transaction, 0, len(items))
	for _, t := range items {
		if util.MatchesQuery(t.Description, q) || util.MatchesQuery(t.Tag, q) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func validateAmount(amount int64) error {
	if amount <= 0 {
		return domain.NewFieldError("amountCents", "Informe um valor maior que zero.")
	}
	return nil
}

func validateTextFields(description, tag *string) error {
	if description != nil && utf8.RuneCountInString(*description) > domain.MaxDescriptionLength {
		return domain.NewFieldError("description", "Descrição muito longa.")
	}
	if tag != nil && utf8.RuneCountInString(*tag) > domain.MaxTagLength {
		return domain.NewFieldError("tag", "Tag muito longa.")
	}
	return nil
}

// checkCategory verifies the category exists and belongs to the user
func (s *TransactionService) checkCategory(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(ctx, userID, *categoryID); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return domain.ErrInvalidCategory
		}
		return err
	}
	return nil
}

// CreateTransaction creates a new transaction with validation
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	if !input.Type.Valid() {
		return nil, domain.NewFieldError("type", "Tipo de lançamento inválido.")
	}
	if err := validateAmount(input.AmountCents); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, domain.NewFieldError("date", "Informe a data.")
	}
	if !input.Method.Valid() {
		return nil, domain.NewFieldError("method", "Método de pagamento inválido.")
	}
	if err := validateTextFields(input.Description, input.Tag); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, userID, input.CategoryID); err != nil {
		return nil, err
	}

	transaction, err := s.transactionRepo.Create(ctx, &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        input.Type,
		AmountCents: input.AmountCents,
		Date:        input.Date.UTC(),
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Method:      input.Method,
		Tag:         input.Tag,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionCreated(transaction))
	return transaction, nil
}

// UpdateTransaction applies a partial update
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, patch domain.TransactionPatch) (*domain.Transaction, error) {
	if patch.Type != nil && !patch.Type.Valid() {
		return nil, domain.NewFieldError("type", "Tipo de lançamento inválido.")
	}
	if patch.AmountCents != nil {
		if err := validateAmount(*patch.AmountCents); err != nil {
			return nil, err
		}
	}
	if patch.Method != nil && !patch.Method.Valid() {
		return nil, domain.NewFieldError("method", "Método de pagamento inválido.")
	}
	if err := validateTextFields(patch.Description, patch.Tag); err != nil {
		return nil, err
	}

	transaction, err := s.transactionRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !patch.ClearCategory {
		if err := s.checkCategory(ctx, userID, patch.CategoryID); err != nil {
			return nil, err
		}
	}
	if patch.Date != nil {
		d := patch.Date.UTC()
		patch.Date = &d
	}
	patch.Apply(transaction)

	updated, err := s.transactionRepo.Update(ctx, transaction)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// DeleteTransaction removes a transaction
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.transactionRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, websocket.TransactionDeleted(map[string]any{"id": id}))
	return nil
}

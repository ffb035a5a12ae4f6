package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/websocket"
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CategoryService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// CreateCategoryInput holds the input for creating a category
type CreateCategoryInput struct {
	Name               string
	Kind               domain.CategoryKind
	Priority           domain.CategoryPriority
	MonthlyBudgetCents *int64
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < domain.MinCategoryNameLength {
		return "", domain.NewFieldError("name", "Informe o nome da categoria.")
	}
	if n > domain.MaxCategoryNameLength {
		return "", domain.NewFieldError("name", "Nome da categoria muito longo.")
	}
	return name, nil
}

func validateBudget(budget *int64) error {
	if budget != nil && *budget < 0 {
		return domain.NewFieldError("monthlyBudgetCents", "Informe um orçamento válido.")
	}
	return nil
}

// GetCategories lists the user's categories ordered by name. Users without
// any category get the default set first.
func (s *CategoryService) GetCategories(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	items, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	if err := s.categoryRepo.CreateMany(ctx, domain.DefaultCategories(userID)); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", userID.String()).Msg("Backfilled default categories")
	return s.categoryRepo.ListByUser(ctx, userID)
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, input CreateCategoryInput) (*domain.Category, error) {
	name, err := validateCategoryName(input.Name)
	if err != nil {
		return nil, err
	}
	if !input.Kind.Valid() {
		return nil, domain.NewFieldError("kind", "Tipo de categoria inválido.")
	}
	if !input.Priority.Valid() {
		return nil, domain.NewFieldError("priority", "Prioridade inválida.")
	}
	if err := validateBudget(input.MonthlyBudgetCents); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.Create(ctx, &domain.Category{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               name,
		Kind:               input.Kind,
		Priority:           input.Priority,
		MonthlyBudgetCents: input.MonthlyBudgetCents,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.CategoryCreated(category))
	return category, nil
}

// UpdateCategory applies a partial update
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error) {
	if patch.Name != nil {
		name, err := validateCategoryName(*patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Kind != nil && !patch.Kind.Valid() {
		return nil, domain.NewFieldError("kind", "Tipo de categoria inválido.")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, domain.NewFieldError("priority", "Prioridade inválida.")
	}
	if err := validateBudget(patch.MonthlyBudgetCents); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(category)

	updated, err := s.categoryRepo.Update(ctx, category)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.CategoryUpdated(updated))
	return updated, nil
}

// DeleteCategory removes a category. Its transactions become uncategorized.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, websocket.CategoryDeleted(map[string]any{"id": id}))
	return nil
}

package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/middleware"
	"github.com/growlify/growlify-api/internal/service"
)

const msgCategoryNotFound = "Categoria não encontrada."

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name               string                  `json:"name"`
	Kind               domain.CategoryKind     `json:"kind"`
	Priority           domain.CategoryPriority `json:"priority"`
	MonthlyBudgetCents *int64                  `json:"monthlyBudgetCents"`
}

// CategoryListResponse wraps a category list
type CategoryListResponse struct {
	Items []*domain.Category `json:"items"`
}

// CategoryResponse wraps a single category
type CategoryResponse struct {
	Item *domain.Category `json:"item"`
}

// GetCategories handles GET /api/v1/categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)

	items, err := h.categoryService.GetCategories(c.Request().Context(), userID)
	if err != nil {
		return handleCommonError(c, err, "Failed to get categories")
	}
	return c.JSON(http.StatusOK, CategoryListResponse{Items: items})
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError(c, msgInvalidBody)
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), userID, service.CreateCategoryInput{
		Name:               req.Name,
		Kind:               req.Kind,
		Priority:           req.Priority,
		MonthlyBudgetCents: req.MonthlyBudgetCents,
	})
	if err != nil {
		return handleCommonError(c, err, "Failed to create category")
	}

	log.Info().Str("user_id", userID.String()).Str("category_id", category.ID.String()).Msg("Category created")
	return c.JSON(http.StatusCreated, CategoryResponse{Item: category})
}

// parseCategoryPatch maps a partial body onto a CategoryPatch. Only the
// budget is nullable.
func parseCategoryPatch(fields patchFields) (domain.CategoryPatch, error) {
	var patch domain.CategoryPatch

	var name string
	if ok, err := fields.value("name", &name); err != nil || (!ok && fields.null("name")) {
		return patch, domain.NewFieldError("name", "Informe o nome da categoria.")
	} else if ok {
		patch.Name = &name
	}

	var kind domain.CategoryKind
	if ok, err := fields.value("kind", &kind); err != nil || (!ok && fields.null("kind")) {
		return patch, domain.NewFieldError("kind", "Tipo de categoria inválido.")
	} else if ok {
		patch.Kind = &kind
	}

	var priority domain.CategoryPriority
	if ok, err := fields.value("priority", &priority); err != nil || (!ok && fields.null("priority")) {
		return patch, domain.NewFieldError("priority", "Prioridade inválida.")
	} else if ok {
		patch.Priority = &priority
	}

	var budget int64
	if ok, err := fields.value("monthlyBudgetCents", &budget); err != nil {
		return patch, domain.NewFieldError("monthlyBudgetCents", "Informe um orçamento válido.")
	} else if ok {
		patch.MonthlyBudgetCents = &budget
	}
	patch.ClearBudget = fields.null("monthlyBudgetCents")

	return patch, nil
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewNotFoundError(c, msgCategoryNotFound)
	}

	fields, err := bindPatch(c)
	if err != nil {
		return NewBadRequestError(c, msgInvalidBody)
	}
	patch, err := parseCategoryPatch(fields)
	if err != nil {
		return handleCommonError(c, err, "Failed to parse category update")
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), userID, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, msgCategoryNotFound)
		}
		return handleCommonError(c, err, "Failed to update category")
	}

	log.Info().Str("user_id", userID.String()).Str("category_id", id.String()).Msg("Category updated")
	return c.JSON(http.StatusOK, CategoryResponse{Item: category})
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewNotFoundError(c, msgCategoryNotFound)
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, msgCategoryNotFound)
		}
		return handleCommonError(c, err, "Failed to delete category")
	}

	log.Info().Str("user_id", userID.String()).Str("category_id", id.String()).Msg("Category deleted")
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

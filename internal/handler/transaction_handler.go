package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/middleware"
	"github.com/growlify/growlify-api/internal/service"
	"github.com/growlify/growlify-api/internal/util"
)

const (
	msgTransactionNotFound = "Lançamento não encontrado."
	msgInvalidCategory     = "Categoria inválida."
	msgInvalidAmount       = "Informe um valor maior que zero."
)

// TransactionHandler handles transaction HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the create transaction request body.
// Date accepts RFC 3339 or YYYY-MM-DD.
type CreateTransactionRequest struct {
	Type        domain.TransactionType `json:"type"`
	AmountCents int64                  `json:"amountCents"`
	Date        string                 `json:"date"`
	CategoryID  *string                `json:"categoryId"`
	Description *string                `json:"description"`
	Method      domain.PaymentMethod   `json:"method"`
	Tag         *string                `json:"tag"`
}

// TransactionListResponse wraps a transaction list
type TransactionListResponse struct {
	Items []*domain.Transaction `json:"items"`
}

// TransactionResponse wraps a single transaction
type TransactionResponse struct {
	Item *domain.Transaction `json:"item"`
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var (
		filters domain.TransactionFilters
		err     error
	)
	if filters.From, err = parseOptionalInstant(c.QueryParam("from"), "from"); err != nil {
		return handleCommonError(c, err, "Failed to parse filters")
	}
	if filters.To, err = parseOptionalInstant(c.QueryParam("to"), "to"); err != nil {
		return handleCommonError(c, err, "Failed to parse filters")
	}
	if t := domain.TransactionType(c.QueryParam("type")); t != "" {
		if !t.Valid() {
			return handleCommonError(c, domain.NewFieldError("type", "Tipo de lançamento inválido."), "Failed to parse filters")
		}
		filters.Type = &t
	}
	if filters.CategoryID, err = parseOptionalUUID(c.QueryParam("categoryId"), "categoryId", msgInvalidCategory); err != nil {
		return handleCommonError(c, err, "Failed to parse filters")
	}
	filters.Query = strings.TrimSpace(c.QueryParam("q"))

	items, err := h.transactionService.GetTransactions(c.Request().Context(), userID, filters)
	if err != nil {
		return handleCommonError(c, err, "Failed to get transactions")
	}
	return c.JSON(http.StatusOK, TransactionListResponse{Items: items})
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError(c, msgInvalidBody)
	}

	input := service.CreateTransactionInput{
		Type:        req.Type,
		AmountCents: req.AmountCents,
		Description: optionalText(req.Description),
		Method:      req.Method,
		Tag:         optionalText(req.Tag),
	}
	if strings.TrimSpace(req.Date) != "" {
		date, err := util.ParseInstant(req.Date)
		if err != nil {
			return handleCommonError(c, domain.NewFieldError("date", "Data inválida."), "Failed to parse transaction")
		}
		input.Date = date
	}
	if req.CategoryID != nil {
		id, err := parseOptionalUUID(*req.CategoryID, "categoryId", msgInvalidCategory)
		if err != nil {
			return NewBadRequestError(c, msgInvalidCategory)
		}
		input.CategoryID = id
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request().Context(), userID, input)
	if err != nil {
		return h.handleError(c, err, "Failed to create transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("transaction_id", transaction.ID.String()).
		Str("type", string(transaction.Type)).
		Msg("Transaction created")
	return c.JSON(http.StatusCreated, TransactionResponse{Item: transaction})
}

// parseTransactionPatch maps a partial body onto a TransactionPatch. Null
// clears category, description and tag; it is ignored for the other fields.
func parseTransactionPatch(fields patchFields) (domain.TransactionPatch, error) {
	var patch domain.TransactionPatch

	var kind domain.TransactionType
	if ok, err := fields.value("type", &kind); err != nil {
		return patch, domain.NewFieldError("type", "Tipo de lançamento inválido.")
	} else if ok {
		patch.Type = &kind
	}

	var amount int64
	if ok, err := fields.value("amountCents", &amount); err != nil {
		return patch, domain.NewFieldError("amountCents", msgInvalidAmount)
	} else if ok {
		patch.AmountCents = &amount
	}

	var date string
	if ok, err := fields.value("date", &date); err != nil {
		return patch, domain.NewFieldError("date", "Data inválida.")
	} else if ok {
		parsed, err := parseOptionalInstant(date, "date")
		if err != nil {
			return patch, err
		}
		patch.Date = parsed
	}

	var method domain.PaymentMethod
	if ok, err := fields.value("method", &method); err != nil {
		return patch, domain.NewFieldError("method", "Método de pagamento inválido.")
	} else if ok {
		patch.Method = &method
	}

	var categoryID string
	if ok, err := fields.value("categoryId", &categoryID); err != nil {
		return patch, domain.ErrInvalidCategory
	} else if ok {
		id, err := parseOptionalUUID(categoryID, "categoryId", msgInvalidCategory)
		if err != nil {
			return patch, domain.ErrInvalidCategory
		}
		patch.CategoryID = id
		patch.ClearCategory = id == nil
	}
	patch.ClearCategory = patch.ClearCategory || fields.null("categoryId")

	var description string
	if ok, err := fields.value("description", &description); err != nil {
		return patch, domain.NewFieldError("description", "Descrição inválida.")
	} else if ok {
		patch.Description = optionalText(&description)
		patch.ClearDescription = patch.Description == nil
	}
	patch.ClearDescription = patch.ClearDescription || fields.null("description")

	var tag string
	if ok, err := fields.value("tag", &tag); err != nil {
		return patch, domain.NewFieldError("tag", "Tag inválida.")
	} else if ok {
		patch.Tag = optionalText(&tag)
		patch.ClearTag = patch.Tag == nil
	}
	patch.ClearTag = patch.ClearTag || fields.null("tag")

	return patch, nil
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewNotFoundError(c, msgTransactionNotFound)
	}

	fields, err := bindPatch(c)
	if err != nil {
		return NewBadRequestError(c, msgInvalidBody)
	}
	patch, err := parseTransactionPatch(fields)
	if err != nil {
		return h.handleError(c, err, "Failed to parse transaction update")
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request().Context(), userID, id, patch)
	if err != nil {
		return h.handleError(c, err, "Failed to update transaction")
	}

	log.Info().Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Transaction updated")
	return c.JSON(http.StatusOK, TransactionResponse{Item: transaction})
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewNotFoundError(c, msgTransactionNotFound)
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), userID, id); err != nil {
		return h.handleError(c, err, "Failed to delete transaction")
	}

	log.Info().Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Transaction deleted")
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

func (h *TransactionHandler) handleError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, msgTransactionNotFound)
	case errors.Is(err, domain.ErrInvalidCategory):
		return NewBadRequestError(c, msgInvalidCategory)
	}
	return handleCommonError(c, err, msg)
}

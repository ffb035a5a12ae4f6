package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/growlify/growlify-api/internal/domain"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeBadRequest   = "https://growlify.app/errors/bad-request"
	ErrorTypeValidation   = "https://growlify.app/errors/validation"
	ErrorTypeNotFound     = "https://growlify.app/errors/not-found"
	ErrorTypeUnauthorized = "https://growlify.app/errors/unauthorized"
	ErrorTypeConflict     = "https://growlify.app/errors/conflict"
	ErrorTypeCalculation  = "https://growlify.app/errors/calculation"
	ErrorTypeUnavailable  = "https://growlify.app/errors/unavailable"
	ErrorTypeInternal     = "https://growlify.app/errors/internal"
)

// User facing messages shared by several handlers
const (
	msgInvalidBody     = "Corpo da requisição inválido."
	msgUnavailable     = "Serviço indisponível no momento. Tente novamente."
	msgSessionRequired = "Sessão expirada ou inválida. Entre novamente."
)

// okResponse is the body of mutations that return nothing else
type okResponse struct {
	OK bool `json:"ok"`
}

func problem(c echo.Context, status int, errorType, title, detail string, errs []ValidationError) error {
	return c.JSON(status, ProblemDetails{
		Type:     errorType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errs,
	})
}

// NewBadRequestError creates a 400 response for malformed requests
func NewBadRequestError(c echo.Context, detail string) error {
	return problem(c, http.StatusBadRequest, ErrorTypeBadRequest, "Bad Request", detail, nil)
}

// NewValidationError creates a 422 response. Detail is the first field message.
func NewValidationError(c echo.Context, errs []ValidationError) error {
	detail := "Falha ao validar os dados."
	if len(errs) > 0 {
		detail = errs[0].Message
	}
	return problem(c, http.StatusUnprocessableEntity, ErrorTypeValidation, "Validation Error", detail, errs)
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail, nil)
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail, nil)
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail, nil)
}

// NewCalculationError creates a 422 response carrying the calculator message
func NewCalculationError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnprocessableEntity, ErrorTypeCalculation, "Calculation Error", detail, nil)
}

// NewServiceUnavailableError creates a 503 response
func NewServiceUnavailableError(c echo.Context) error {
	return problem(c, http.StatusServiceUnavailable, ErrorTypeUnavailable, "Service Unavailable", msgUnavailable, nil)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", msgUnavailable, nil)
}

// handleCommonError answers the errors every handler treats the same way:
// field validation, calculator failures and anything unexpected.
func handleCommonError(c echo.Context, err error, msg string) error {
	var fieldErr *domain.FieldError
	if errors.As(err, &fieldErr) {
		return NewValidationError(c, []ValidationError{{Field: fieldErr.Field, Message: fieldErr.Message}})
	}
	var calcErr *domain.CalculationError
	if errors.As(err, &calcErr) {
		return NewCalculationError(c, calcErr.Message)
	}

	log.Error().Err(err).
		Str("path", c.Request().URL.Path).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg(msg)
	return NewInternalError(c)
}

package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/middleware"
	"github.com/growlify/growlify-api/internal/service"
)

const msgCalculationNotFound = "Cálculo não encontrado."

// CalculatorHandler handles calculator HTTP requests
type CalculatorHandler struct {
	calculatorService *service.CalculatorService
}

// NewCalculatorHandler creates a new CalculatorHandler
func NewCalculatorHandler(calculatorService *service.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{calculatorService: calculatorService}
}

// RunCalculatorRequest represents a calculator run. Params are decoded
// separately so numbers are kept as json.Number.
type RunCalculatorRequest struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
	Title  *string         `json:"title"`
}

// SavedCalculationListResponse wraps the saved calculation list
type SavedCalculationListResponse struct {
	Items []*domain.SavedCalculation `json:"items"`
}

// DeleteCalculationResponse is returned after deleting a saved calculation
type DeleteCalculationResponse struct {
	OK    bool                       `json:"ok"`
	Items []*domain.SavedCalculation `json:"items"`
}

// decodeParams reads the params object. Missing or null params become an
// empty bag; anything that is not an object is rejected.
func decodeParams(raw json.RawMessage) (map[string]any, error) {
	params := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return params, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		return nil, domain.InvalidParameters("Parâmetros inválidos.")
	}
	return params, nil
}

func (h *CalculatorHandler) bindRun(c echo.Context) (RunCalculatorRequest, map[string]any, error) {
	var req RunCalculatorRequest
	if err := c.Bind(&req); err != nil {
		return req, nil, err
	}
	params, err := decodeParams(req.Params)
	return req, params, err
}

// Run handles POST /api/v1/calculator/run
func (h *CalculatorHandler) Run(c echo.Context) error {
	req, params, err := h.bindRun(c)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return NewBadRequestError(c, msgInvalidBody)
		}
		return handleCommonError(c, err, "Failed to read calculator params")
	}

	result, err := h.calculatorService.Run(req.Type, params)
	if err != nil {
		return handleCommonError(c, err, "Failed to run calculator")
	}
	return c.JSON(http.StatusOK, result)
}

// RunAndSave handles POST /api/v1/calculator/run-and-save
func (h *CalculatorHandler) RunAndSave(c echo.Context) error {
	userID := middleware.GetUserID(c)

	req, params, err := h.bindRun(c)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return NewBadRequestError(c, msgInvalidBody)
		}
		return handleCommonError(c, err, "Failed to read calculator params")
	}

	result, err := h.calculatorService.RunAndSave(c.Request().Context(), userID, service.RunAndSaveInput{
		Type:   req.Type,
		Params: params,
		Title:  optionalText(req.Title),
	})
	if err != nil {
		return handleCommonError(c, err, "Failed to save calculation")
	}
	return c.JSON(http.StatusOK, result)
}

// GetSaved handles GET /api/v1/calculator/saved
func (h *CalculatorHandler) GetSaved(c echo.Context) error {
	userID := middleware.GetUserID(c)

	items, err := h.calculatorService.GetSaved(c.Request().Context(), userID)
	if err != nil {
		return handleCommonError(c, err, "Failed to get saved calculations")
	}
	return c.JSON(http.StatusOK, SavedCalculationListResponse{Items: items})
}

// DeleteSaved handles DELETE /api/v1/calculator/saved/:id
func (h *CalculatorHandler) DeleteSaved(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewNotFoundError(c, msgCalculationNotFound)
	}

	items, err := h.calculatorService.DeleteSaved(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrSavedCalculationNotFound) {
			return NewNotFoundError(c, msgCalculationNotFound)
		}
		return handleCommonError(c, err, "Failed to delete saved calculation")
	}
	return c.JSON(http.StatusOK, DeleteCalculationResponse{OK: true, Items: items})
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/growlify/growlify-api/internal/calculator"
	"github.com/growlify/growlify-api/internal/canonical"
	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/websocket"
)

// CalculatorService runs calculators and keeps the user's saved runs
type CalculatorService struct {
	savedRepo      domain.SavedCalculationRepository
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewCalculatorService creates a new CalculatorService
func NewCalculatorService(savedRepo domain.SavedCalculationRepository) *CalculatorService {
	return &CalculatorService{savedRepo: savedRepo, now: time.Now}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CalculatorService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CalculatorService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// Run evaluates a calculator without saving it
func (s *CalculatorService) Run(kind string, params map[string]any) (*domain.CalculationResult, error) {
	return calculator.Evaluate(kind, params, s.now())
}

// RunAndSaveInput holds a calculator run to persist
type RunAndSaveInput struct {
	Type   string
	Params map[string]any
	Title  *string
}

// RunAndSaveResult is the saved run, the refreshed recent list and the raw result
type RunAndSaveResult struct {
	Item   *domain.SavedCalculation   `json:"item"`
	Items  []*domain.SavedCalculation `json:"items"`
	Result any                        `json:"result"`
}

// RunAndSave evaluates the calculator and upserts it keyed by the canonical
// fingerprint of its params, so equal params update the same record
func (s *CalculatorService) RunAndSave(ctx context.Context, userID uuid.UUID, input RunAndSaveInput) (*RunAndSaveResult, error) {
	if input.Title != nil && utf8.RuneCountInString(*input.Title) > domain.MaxCalculationTitle {
		return nil, domain.NewFieldError("title", "Título muito longo.")
	}

	result, err := calculator.Evaluate(input.Type, input.Params, s.now())
	if err != nil {
		return nil, err
	}

	params := input.Params
	if params == nil {
		params = map[string]any{}
	}
	value, err := canonical.FromAny(params)
	if err != nil {
		return nil, fmt.Errorf("canonicalize params: %w", err)
	}
	resultJSON, err := json.Marshal(result.Result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	item, err := s.savedRepo.Upsert(ctx, &domain.SavedCalculation{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       result.Type,
		Title:      input.Title,
		ParamsHash: canonical.Fingerprint(value),
		Params:     json.RawMessage(value.String()),
		Result:     resultJSON,
	})
	if err != nil {
		return nil, err
	}

	items, err := s.savedRepo.ListRecent(ctx, userID, domain.SavedCalculationListLimit)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("user_id", userID.String()).
		Str("type", string(item.Type)).
		Str("params_hash", item.ParamsHash).
		Msg("Saved calculation")
	s.publishEvent(userID, websocket.CalculationSaved(item))

	return &RunAndSaveResult{Item: item, Items: items, Result: result.Result}, nil
}

// GetSaved lists the most recently updated saved calculations
func (s *CalculatorService) GetSaved(ctx context.Context, userID uuid.UUID) ([]*domain.SavedCalculation, error) {
	return s.savedRepo.ListRecent(ctx, userID, domain.SavedCalculationListLimit)
}

// DeleteSaved removes a saved calculation and returns the refreshed list
func (s *CalculatorService) DeleteSaved(ctx context.Context, userID, id uuid.UUID) ([]*domain.SavedCalculation, error) {
	if err := s.savedRepo.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	s.publishEvent(userID, websocket.CalculationDeleted(map[string]any{"id": id}))
	return s.GetSaved(ctx, userID)
}

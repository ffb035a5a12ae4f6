package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CalculationKind identifies a calculator variant. The string values are
// part of the client contract.
type CalculationKind string

const (
	CalculationDailyLimitMonth   CalculationKind = "daily_limit_month"
	CalculationWeeklySavingsGoal CalculationKind = "weekly_savings_goal"
	CalculationSimulateCut       CalculationKind = "simulate_cut"
	CalculationEmergencyFund     CalculationKind = "emergency_fund"
)

// CalculationResult is the output of a calculator run. Result is one of the
// calculator result structs and marshals to the documented field names.
type CalculationResult struct {
	Type   CalculationKind `json:"type"`
	Result any             `json:"result"`
}

// SavedCalculationListLimit is how many saved calculations are listed
const SavedCalculationListLimit = 12

// SavedCalculation is a persisted calculator run. (UserID, Type, ParamsHash)
// is unique: re-running with canonically equal params updates in place.
type SavedCalculation struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	Type       CalculationKind `json:"type"`
	Title      *string         `json:"title"`
	ParamsHash string          `json:"paramsHash"`
	Params     json.RawMessage `json:"params"`
	Result     json.RawMessage `json:"result"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type SavedCalculationRepository interface {
	Upsert(ctx context.Context, calc *SavedCalculation) (*SavedCalculation, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*SavedCalculation, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

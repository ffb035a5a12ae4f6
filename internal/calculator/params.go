// Package calculator implements the financial calculators. Every function
// is pure: the only clock input is the explicit now passed to Run.
package calculator

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/growlify/growlify-api/internal/domain"
)

// Params is the typed parameter set of one calculator kind
type Params interface {
	Kind() domain.CalculationKind
}

type DailyLimitMonthParams struct {
	LimitCents *int64
	SpentCents *int64
	// AsOfDate is a YYYY-MM-DD literal read as UTC midnight.
	AsOfDate *string
	// AsOf is an RFC 3339 instant, used when AsOfDate is absent.
	AsOf     *string
	DaysBase *int64
}

func (DailyLimitMonthParams) Kind() domain.CalculationKind { return domain.CalculationDailyLimitMonth }

type WeeklySavingsGoalParams struct {
	TargetCents *int64
	Weeks       *int64
}

func (WeeklySavingsGoalParams) Kind() domain.CalculationKind {
	return domain.CalculationWeeklySavingsGoal
}

type SimulateCutParams struct {
	CurrentMonthlyCents *int64
	CutCents            *int64
}

func (SimulateCutParams) Kind() domain.CalculationKind { return domain.CalculationSimulateCut }

type EmergencyFundParams struct {
	MonthlyExpensesCents *int64
	Months               *int64
}

func (EmergencyFundParams) Kind() domain.CalculationKind { return domain.CalculationEmergencyFund }

// Kinds lists every supported calculator
func Kinds() []domain.CalculationKind {
	return []domain.CalculationKind{
		domain.CalculationDailyLimitMonth,
		domain.CalculationWeeklySavingsGoal,
		domain.CalculationSimulateCut,
		domain.CalculationEmergencyFund,
	}
}

// ParseParams selects the parameter struct for kind and reads it out of a
// decoded JSON bag. Numbers that are missing, non-finite or of the wrong
// type are left nil; validation happens in Run.
func ParseParams(kind string, raw map[string]any) (Params, error) {
	switch domain.CalculationKind(kind) {
	case domain.CalculationDailyLimitMonth:
		p := DailyLimitMonthParams{
			LimitCents: cents(raw["limitCents"]),
			SpentCents: cents(raw["spentCents"]),
			DaysBase:   cents(raw["daysBase"]),
		}
		var err error
		if p.AsOfDate, err = dateText(raw["asOfDate"]); err != nil {
			return nil, err
		}
		if p.AsOf, err = dateText(raw["asOf"]); err != nil {
			return nil, err
		}
		return p, nil
	case domain.CalculationWeeklySavingsGoal:
		return WeeklySavingsGoalParams{
			TargetCents: cents(raw["targetCents"]),
			Weeks:       cents(raw["weeks"]),
		}, nil
	case domain.CalculationSimulateCut:
		return SimulateCutParams{
			CurrentMonthlyCents: cents(raw["currentMonthlyCents"]),
			CutCents:            cents(raw["cutCents"]),
		}, nil
	case domain.CalculationEmergencyFund:
		return EmergencyFundParams{
			MonthlyExpensesCents: cents(raw["monthlyExpensesCents"]),
			Months:               cents(raw["months"]),
		}, nil
	}
	return nil, &domain.CalculationError{
		Err:     domain.ErrUnknownCalculationType,
		Message: "Tipo de cálculo indefinido.",
	}
}

// 2^63 as a float; int64 conversion of anything at or above it overflows
const twoPow63 = 9223372036854775808.0

// cents reads a finite JSON number truncated toward zero
func cents(v any) *int64 {
	var f float64
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return &i
		}
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		i := int64(n)
		return &i
	case int32:
		i := int64(n)
		return &i
	case int64:
		return &n
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	t := math.Trunc(f)
	if t >= twoPow63 || t < -twoPow63 {
		return nil
	}
	i := int64(t)
	return &i
}

// dateText reads an optional date string. Empty strings count as absent;
// any non-string value is a malformed date.
func dateText(v any) (*string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	}
	return nil, malformedDate()
}

func malformedDate() *domain.CalculationError {
	return &domain.CalculationError{
		Err:     domain.ErrMalformedDateInput,
		Message: "Data de referência inválida.",
	}
}

package calculator

import (
	"time"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/util"
)

// Days modes of the daily limit result
const (
	DaysModeAuto   = "auto"
	DaysModeManual = "manual"
)

// Manual day bases outside this range fall back to auto
const (
	minDaysBase = 1
	maxDaysBase = 31
)

type DailyLimitMonthResult struct {
	LimitCents     int64  `json:"limitCents"`
	SpentCents     int64  `json:"spentCents"`
	RemainingCents int64  `json:"remainingCents"`
	DaysLeft       int64  `json:"daysLeft"`
	PerDayCents    int64  `json:"perDayCents"`
	DaysMode       string `json:"daysMode"`
}

type WeeklySavingsGoalResult struct {
	TargetCents  int64 `json:"targetCents"`
	Weeks        int64 `json:"weeks"`
	PerWeekCents int64 `json:"perWeekCents"`
}

type SimulateCutResult struct {
	CurrentMonthlyCents int64   `json:"currentMonthlyCents"`
	CutCents            int64   `json:"cutCents"`
	NextMonthlyCents    int64   `json:"nextMonthlyCents"`
	Pct                 float64 `json:"pct"`
}

type EmergencyFundResult struct {
	MonthlyExpensesCents int64 `json:"monthlyExpensesCents"`
	Months               int64 `json:"months"`
	NeededCents          int64 `json:"neededCents"`
}

// Run evaluates params. now is only read by daily_limit_month when neither
// asOfDate nor asOf is given.
func Run(params Params, now time.Time) (*domain.CalculationResult, error) {
	var (
		result any
		err    error
	)
	switch p := params.(type) {
	case DailyLimitMonthParams:
		result, err = dailyLimitMonth(p, now)
	case WeeklySavingsGoalParams:
		result, err = weeklySavingsGoal(p)
	case SimulateCutParams:
		result, err = simulateCut(p)
	case EmergencyFundParams:
		result, err = emergencyFund(p)
	default:
		return nil, &domain.CalculationError{
			Err:     domain.ErrUnknownCalculationType,
			Message: "Tipo de cálculo indefinido.",
		}
	}
	if err != nil {
		return nil, err
	}
	return &domain.CalculationResult{Type: params.Kind(), Result: result}, nil
}

// Evaluate parses a raw parameter bag and runs it
func Evaluate(kind string, raw map[string]any, now time.Time) (*domain.CalculationResult, error) {
	params, err := ParseParams(kind, raw)
	if err != nil {
		return nil, err
	}
	return Run(params, now)
}

func positive(v *int64) bool {
	return v != nil && *v > 0
}

func dailyLimitMonth(p DailyLimitMonthParams, now time.Time) (*DailyLimitMonthResult, error) {
	if !positive(p.LimitCents) {
		return nil, domain.InvalidParameters("Informe um limite mensal válido.")
	}
	if p.SpentCents == nil || *p.SpentCents < 0 {
		return nil, domain.InvalidParameters("Informe um gasto do mês válido.")
	}

	ref := now
	switch {
	case p.AsOfDate != nil:
		t, err := util.ParseDateOnlyUTC(*p.AsOfDate)
		if err != nil {
			return nil, malformedDate()
		}
		ref = t
	case p.AsOf != nil:
		t, err := time.Parse(time.RFC3339Nano, *p.AsOf)
		if err != nil {
			return nil, malformedDate()
		}
		ref = t
	}

	start := util.StartOfDayUTC(ref)
	end := util.EndOfMonthUTC(ref, 0)
	autoDays := (end.UnixMilli()-start.UnixMilli())/util.DayMillis + 1
	if autoDays < 1 {
		autoDays = 1
	}

	days, mode := autoDays, DaysModeAuto
	if p.DaysBase != nil && *p.DaysBase >= minDaysBase && *p.DaysBase <= maxDaysBase {
		days, mode = *p.DaysBase, DaysModeManual
	}

	remaining := *p.LimitCents - *p.SpentCents
	return &DailyLimitMonthResult{
		LimitCents:     *p.LimitCents,
		SpentCents:     *p.SpentCents,
		RemainingCents: remaining,
		DaysLeft:       days,
		PerDayCents:    util.TruncDiv(remaining, days),
		DaysMode:       mode,
	}, nil
}

func weeklySavingsGoal(p WeeklySavingsGoalParams) (*WeeklySavingsGoalResult, error) {
	if !positive(p.TargetCents) {
		return nil, domain.InvalidParameters("Informe uma meta válida.")
	}
	if !positive(p.Weeks) {
		return nil, domain.InvalidParameters("Informe um número de semanas válido.")
	}
	return &WeeklySavingsGoalResult{
		TargetCents:  *p.TargetCents,
		Weeks:        *p.Weeks,
		PerWeekCents: util.CeilDiv(*p.TargetCents, *p.Weeks),
	}, nil
}

func simulateCut(p SimulateCutParams) (*SimulateCutResult, error) {
	if !positive(p.CurrentMonthlyCents) {
		return nil, domain.InvalidParameters("Informe um valor mensal atual válido.")
	}
	if !positive(p.CutCents) {
		return nil, domain.InvalidParameters("Informe um valor de corte válido.")
	}
	current, cut := *p.CurrentMonthlyCents, *p.CutCents
	next := current - cut
	if next < 0 {
		next = 0
	}
	pct := float64(cut) / float64(current) * 100
	if pct > 100 {
		pct = 100
	}
	return &SimulateCutResult{
		CurrentMonthlyCents: current,
		CutCents:            cut,
		NextMonthlyCents:    next,
		Pct:                 pct,
	}, nil
}

func emergencyFund(p EmergencyFundParams) (*EmergencyFundResult, error) {
	if !positive(p.MonthlyExpensesCents) {
		return nil, domain.InvalidParameters("Informe um gasto mensal válido.")
	}
	if !positive(p.Months) {
		return nil, domain.InvalidParameters("Informe a quantidade de meses.")
	}
	needed, ok := util.MulCents(*p.MonthlyExpensesCents, *p.Months)
	if !ok {
		return nil, domain.InvalidParameters("Valor muito alto para calcular.")
	}
	return &EmergencyFundResult{
		MonthlyExpensesCents: *p.MonthlyExpensesCents,
		Months:               *p.Months,
		NeededCents:          needed,
	}, nil
}

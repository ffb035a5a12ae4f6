package domain

import "time"

type InsightSeverity string

const (
	InsightSeverityInfo    InsightSeverity = "info"
	InsightSeverityWarning InsightSeverity = "warning"
)

// Insight ids
const (
	InsightCategoryGrowth = "cat_growth"
	InsightBudgetOver     = "budget_over"
)

// Insight is a derived spending alert. Generated on demand, never stored.
type Insight struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Severity InsightSeverity `json:"severity"`
}

type ReportPeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type ReportTotals struct {
	BalanceCents int64 `json:"balance_cents"`
	IncomeCents  int64 `json:"income_cents"`
	ExpenseCents int64 `json:"expense_cents"`
	ResultCents  int64 `json:"result_cents"`
}

type ReportSummary struct {
	Period   ReportPeriod `json:"period"`
	Totals   ReportTotals `json:"totals"`
	Insights []Insight    `json:"insights"`
}

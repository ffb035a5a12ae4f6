// Package insight derives spending alerts from a user's categories and
// transactions. Alerts are computed on demand and never stored.
package insight

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/util"
)

const (
	alertType = "alert"

	// Growth below this percentage is not worth an alert
	minGrowthPct = 10.0
	// Growth that rounds to this percentage or more is a warning
	warningGrowthPct = 20.0
)

// uncategorized is the bucket key for transactions without a category
var uncategorized = uuid.Nil

// Compute returns at most one growth alert followed by at most one budget
// alert. Ties on the selected percentage go to the lowest category id, with
// the uncategorized bucket ordered last.
func Compute(categories []*domain.Category, transactions []*domain.Transaction, now time.Time) []domain.Insight {
	startThisMonth := util.StartOfMonthUTC(now, 0)
	startLastMonth := util.StartOfMonthUTC(now, -1)
	endLastMonth := util.EndOfMonthUTC(now, -1)

	thisMonth := make(map[uuid.UUID]int64)
	lastMonth := make(map[uuid.UUID]int64)
	for _, t := range transactions {
		if t == nil || !t.IsExpense() {
			continue
		}
		key := uncategorized
		if t.CategoryID != nil {
			key = *t.CategoryID
		}
		switch {
		case !t.Date.Before(startThisMonth):
			thisMonth[key] += t.AmountCents
		case !t.Date.Before(startLastMonth) && !t.Date.After(endLastMonth):
			lastMonth[key] += t.AmountCents
		}
	}

	byID := make(map[uuid.UUID]*domain.Category, len(categories))
	for _, c := range categories {
		if c != nil {
			byID[c.ID] = c
		}
	}

	insights := make([]domain.Insight, 0, 2)
	if alert, ok := growthAlert(thisMonth, lastMonth, byID); ok {
		insights = append(insights, alert)
	}
	if alert, ok := budgetAlert(thisMonth, categories); ok {
		insights = append(insights, alert)
	}
	return insights
}

func growthAlert(thisMonth, lastMonth map[uuid.UUID]int64, categories map[uuid.UUID]*domain.Category) (domain.Insight, bool) {
	keys := make([]uuid.UUID, 0, len(thisMonth))
	for k := range thisMonth {
		keys = append(keys, k)
	}
	sortBucketKeys(keys)

	var (
		bestKey uuid.UUID
		bestPct float64
		found   bool
	)
	for _, k := range keys {
		curr, prev := thisMonth[k], lastMonth[k]
		if curr <= 0 || prev <= 0 {
			continue
		}
		p := float64(curr-prev) / float64(prev) * 100
		if !found || p > bestPct {
			bestKey, bestPct, found = k, p, true
		}
	}
	if !found || bestPct < minGrowthPct {
		return domain.Insight{}, false
	}

	// severity follows the percentage shown in the message
	shown := roundHalfUp(bestPct)
	severity := domain.InsightSeverityInfo
	if float64(shown) >= warningGrowthPct {
		severity = domain.InsightSeverityWarning
	}
	return domain.Insight{
		ID:       domain.InsightCategoryGrowth,
		Type:     alertType,
		Title:    "Variação de gastos",
		Message:  fmt.Sprintf("Gastos com %s subiram %d%% em relação ao mês anterior.", label(categories, bestKey), shown),
		Severity: severity,
	}, true
}

func budgetAlert(thisMonth map[uuid.UUID]int64, categories []*domain.Category) (domain.Insight, bool) {
	budgeted := make([]*domain.Category, 0, len(categories))
	for _, c := range categories {
		if c != nil && c.MonthlyBudgetCents != nil && *c.MonthlyBudgetCents > 0 {
			budgeted = append(budgeted, c)
		}
	}
	sort.Slice(budgeted, func(i, j int) bool {
		return bytes.Compare(budgeted[i].ID[:], budgeted[j].ID[:]) < 0
	})

	var (
		worst    *domain.Category
		worstPct float64
	)
	for _, c := range budgeted {
		budget := *c.MonthlyBudgetCents
		spent := thisMonth[c.ID]
		if spent <= budget {
			continue
		}
		over := float64(spent-budget) / float64(budget) * 100
		if worst == nil || over > worstPct {
			worst, worstPct = c, over
		}
	}
	if worst == nil {
		return domain.Insight{}, false
	}

	return domain.Insight{
		ID:       domain.InsightBudgetOver,
		Type:     alertType,
		Title:    "Orçamento do mês",
		Message:  fmt.Sprintf("Você ultrapassou o orçamento em %s.", worst.Name),
		Severity: domain.InsightSeverityWarning,
	}, true
}

// sortBucketKeys orders category ids ascending with the uncategorized key last
func sortBucketKeys(keys []uuid.UUID) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a == uncategorized || b == uncategorized {
			return b == uncategorized && a != uncategorized
		}
		return bytes.Compare(a[:], b[:]) < 0
	})
}

// label resolves a bucket key to a category name. Deleted categories and
// the uncategorized bucket share the fallback label.
func label(categories map[uuid.UUID]*domain.Category, key uuid.UUID) string {
	if c, ok := categories[key]; ok && key != uncategorized && c.Name != "" {
		return c.Name
	}
	return domain.UncategorizedLabel
}

func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

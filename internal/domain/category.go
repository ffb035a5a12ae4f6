package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CategoryKind string

const (
	CategoryKindDomestic   CategoryKind = "domestic"
	CategoryKindCommercial CategoryKind = "commercial"
)

// Valid checks if the kind is a known value
func (k CategoryKind) Valid() bool {
	return k == CategoryKindDomestic || k == CategoryKindCommercial
}

type CategoryPriority string

const (
	CategoryPriorityEssential CategoryPriority = "essential"
	CategoryPriorityImportant CategoryPriority = "important"
	CategoryPriorityCuttable  CategoryPriority = "cuttable"
)

// Valid checks if the priority is a known value
func (p CategoryPriority) Valid() bool {
	switch p {
	case CategoryPriorityEssential, CategoryPriorityImportant, CategoryPriorityCuttable:
		return true
	}
	return false
}

// UncategorizedLabel names the bucket of transactions without a (live) category
const UncategorizedLabel = "Sem categoria"

type Category struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"userId"`
	Name               string           `json:"name"`
	Kind               CategoryKind     `json:"kind"`
	Priority           CategoryPriority `json:"priority"`
	MonthlyBudgetCents *int64           `json:"monthlyBudgetCents"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// CategoryPatch holds the optional fields of a partial category update.
// ClearBudget removes the monthly budget; it wins over MonthlyBudgetCents.
type CategoryPatch struct {
	Name               *string
	Kind               *CategoryKind
	Priority           *CategoryPriority
	MonthlyBudgetCents *int64
	ClearBudget        bool
}

// Apply copies the set fields onto c
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Kind != nil {
		c.Kind = *p.Kind
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.ClearBudget {
		c.MonthlyBudgetCents = nil
	} else if p.MonthlyBudgetCents != nil {
		budget := *p.MonthlyBudgetCents
		c.MonthlyBudgetCents = &budget
	}
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	CreateMany(ctx context.Context, categories []*Category) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Category, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

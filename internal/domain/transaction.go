package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid checks if the type is a known value
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodPix      PaymentMethod = "pix"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodOther    PaymentMethod = "other"
)

// Valid checks if the method is a known value
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodPix, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// Label returns the pt-BR label used in exports
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodCash:
		return "Dinheiro"
	case PaymentMethodCard:
		return "Cartão"
	case PaymentMethodPix:
		return "Pix"
	case PaymentMethodTransfer:
		return "Transferência"
	}
	return "Outro"
}

type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Type        TransactionType `json:"type"`
	AmountCents int64           `json:"amountCents"`
	Date        time.Time       `json:"date"`
	CategoryID  *uuid.UUID      `json:"categoryId"`
	Description *string         `json:"description"`
	Method      PaymentMethod   `json:"method"`
	Tag         *string         `json:"tag"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Category is populated by list queries that join the category row.
	Category *Category `json:"category,omitempty"`
}

// IsExpense reports whether the transaction is money going out
func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}

// TransactionFilters narrows a transaction listing. Bounds are inclusive.
type TransactionFilters struct {
	From       *time.Time
	To         *time.Time
	Type       *TransactionType
	CategoryID *uuid.UUID
	// Query is matched against description and tag in memory.
	Query string
}

// TransactionPatch holds the optional fields of a partial transaction update.
// ClearX flags null the corresponding nullable column.
type TransactionPatch struct {
	Type             *TransactionType
	AmountCents      *int64
	Date             *time.Time
	CategoryID       *uuid.UUID
	ClearCategory    bool
	Description      *string
	ClearDescription bool
	Method           *PaymentMethod
	Tag              *string
	ClearTag         bool
}

// Apply copies the set fields onto t
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.AmountCents != nil {
		t.AmountCents = *p.AmountCents
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.ClearCategory {
		t.CategoryID = nil
	} else if p.CategoryID != nil {
		id := *p.CategoryID
		t.CategoryID = &id
	}
	if p.ClearDescription {
		t.Description = nil
	} else if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Method != nil {
		t.Method = *p.Method
	}
	if p.ClearTag {
		t.Tag = nil
	} else if p.Tag != nil {
		tag := *p.Tag
		t.Tag = &tag
	}
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	// List returns matching transactions ordered by date descending.
	// filters.Query is not applied by the repository.
	List(ctx context.Context, userID uuid.UUID, filters TransactionFilters) ([]*Transaction, error)
	Update(ctx context.Context, transaction *Transaction) (*Transaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

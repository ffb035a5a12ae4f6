package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

type User struct {
	ID                           uuid.UUID          `json:"id"`
	Name                         string             `json:"name"`
	Email                        string             `json:"email"`
	PasswordHash                 string             `json:"-"`
	SubscriptionStatus           SubscriptionStatus `json:"subscriptionStatus"`
	SubscriptionCurrentPeriodEnd *time.Time         `json:"subscriptionCurrentPeriodEnd,omitempty"`
	CreatedAt                    time.Time          `json:"createdAt"`
	UpdatedAt                    time.Time          `json:"updatedAt"`
}

// HasActiveSubscription reports whether paid features are unlocked
func (u *User) HasActiveSubscription() bool {
	return u.SubscriptionStatus == SubscriptionActive
}

type UserRepository interface {
	// CreateWithCategories inserts the user and its starter categories atomically.
	CreateWithCategories(ctx context.Context, user *User, categories []*Category) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

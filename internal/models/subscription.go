package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// SubscriptionStatus is the billing tier of a user.
type SubscriptionStatus string

const (
	StatusFree    SubscriptionStatus = "FREE"
	StatusPremium SubscriptionStatus = "PREMIUM"
)

// DefaultFreeMonthlyClicks is the number of ticker lookups a FREE user gets per calendar month.
const DefaultFreeMonthlyClicks = 10

// UserSubscription is a row of user_subscriptions.
type UserSubscription struct {
	UserID               string             `json:"user_id"`
	StripeCustomerID     string             `json:"stripe_customer_id,omitempty"`
	SubscriptionStatus   SubscriptionStatus `json:"subscription_status"`
	StripeSubscriptionID string             `json:"stripe_subscription_id,omitempty"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// IsPremium reports whether the subscription grants unlimited lookups.
func (s *UserSubscription) IsPremium() bool {
	return s != nil && s.SubscriptionStatus == StatusPremium
}

// TickerClick is a row of the click log. MonthYear is the "YYYY-MM" partition
// the click counts against.
type TickerClick struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Ticker    string    `json:"ticker"`
	MonthYear string    `json:"month_year"`
	ClickedAt time.Time `json:"clicked_at"`
}

// MonthPartition returns the "YYYY-MM" click-log partition key for t (UTC).
func MonthPartition(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// SubscriptionState is what the client sees of the quota. ClicksLeft is null
// for PREMIUM users, meaning unbounded.
type SubscriptionState struct {
	Status     SubscriptionStatus `json:"status"`
	ClicksLeft null.Int           `json:"clicksLeft"`
}

// Unlimited reports whether the state carries no click cap.
func (s SubscriptionState) Unlimited() bool {
	return !s.ClicksLeft.Valid
}

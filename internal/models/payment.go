package models

// Payment event types handled from the processor webhook.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// PaymentEvent is the processor-neutral view of a verified webhook event.
type PaymentEvent struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	CustomerID     string `json:"customer_id,omitempty"`
	// Status is the processor's subscription status, e.g. "active" or "canceled".
	Status string `json:"status,omitempty"`
}

// CheckoutRequest describes a subscription checkout session to create.
type CheckoutRequest struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

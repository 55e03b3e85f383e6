// Package stripe provides the payments client over the Stripe API
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	stripego "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

type customerCreator interface {
	New(params *stripego.CustomerParams) (*stripego.Customer, error)
}

type sessionCreator interface {
	New(params *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error)
}

// Client implements interfaces.PaymentClient
type Client struct {
	customers     customerCreator
	sessions      sessionCreator
	webhookSecret string
	logger        *common.Logger
}

var _ interfaces.PaymentClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Stripe client. secretKey may be empty when only
// webhooks are verified; checkout calls then fail with ErrNotConfigured.
func NewClient(secretKey, webhookSecret string, opts ...ClientOption) *Client {
	c := &Client{
		webhookSecret: webhookSecret,
		logger:        common.NewSilentLogger(),
	}
	if secretKey != "" {
		api := client.New(secretKey, nil)
		c.customers = api.Customers
		c.sessions = api.CheckoutSessions
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateCustomer creates a customer tagged with the dashboard user id.
func (c *Client) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	if c.customers == nil {
		return "", interfaces.ErrNotConfigured
	}
	params := &stripego.CustomerParams{Email: stripego.String(email)}
	params.Context = ctx
	params.AddMetadata("supabaseUserId", userID)

	cust, err := c.customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	c.logger.Info().Str("user_id", userID).Str("customer_id", cust.ID).Msg("Stripe customer created")
	return cust.ID, nil
}

// CreateCheckoutSession creates a card subscription checkout for one unit of the price.
func (c *Client) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (string, error) {
	if c.sessions == nil {
		return "", interfaces.ErrNotConfigured
	}
	params := &stripego.CheckoutSessionParams{
		Customer:           stripego.String(req.CustomerID),
		Mode:               stripego.String(string(stripego.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{
				Price:    stripego.String(req.PriceID),
				Quantity: stripego.Int64(1),
			},
		},
		SuccessURL: stripego.String(req.SuccessURL),
		CancelURL:  stripego.String(req.CancelURL),
	}
	params.Context = ctx

	sess, err := c.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}
	return sess.ID, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
// Subscription events carry the subscription, customer and status.
func (c *Client) ParseWebhook(payload []byte, signature string) (*models.PaymentEvent, error) {
	if c.webhookSecret == "" {
		return nil, interfaces.ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &models.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	switch out.Type {
	case models.EventSubscriptionCreated, models.EventSubscriptionUpdated, models.EventSubscriptionDeleted:
		if event.Data == nil {
			return nil, fmt.Errorf("stripe event %s has no data", event.ID)
		}
		var sub stripego.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to decode subscription: %w", err)
		}
		out.SubscriptionID = sub.ID
		out.Status = string(sub.Status)
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	}
	return out, nil
}

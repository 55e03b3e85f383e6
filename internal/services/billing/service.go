// Package billing runs subscription checkout and applies payment webhooks
// to user_subscriptions.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

var (
	// ErrUnauthorized is returned when the caller does not own the requested user id.
	ErrUnauthorized = errors.New("user id mismatch")
	// ErrMissingPriceID is returned when no subscription price is configured.
	ErrMissingPriceID = errors.New("missing subscription price id")
	// ErrMissingSignature is returned for webhooks without a signature header.
	ErrMissingSignature = errors.New("no signature")
	// ErrBadSignature is returned when webhook verification fails.
	ErrBadSignature = errors.New("webhook signature verification failed")
)

// Service implements interfaces.BillingService.
type Service struct {
	payments      interfaces.PaymentClient
	subscriptions interfaces.SubscriptionStore
	priceID       string
	logger        *common.Logger
}

var _ interfaces.BillingService = (*Service)(nil)

// NewService creates a billing service.
func NewService(payments interfaces.PaymentClient, subscriptions interfaces.SubscriptionStore, priceID string, logger *common.Logger) *Service {
	return &Service{
		payments:      payments,
		subscriptions: subscriptions,
		priceID:       priceID,
		logger:        logger,
	}
}

// Subscribe reuses the user's processor customer when one is on file, else
// creates one and records it, then opens a subscription checkout session.
func (s *Service) Subscribe(ctx context.Context, user *models.User, requestedUserID, baseURL string) (string, error) {
	if user == nil || user.ID == "" || user.ID != requestedUserID {
		return "", ErrUnauthorized
	}
	if s.priceID == "" {
		return "", ErrMissingPriceID
	}
	if s.payments == nil {
		return "", fmt.Errorf("payments: %w", interfaces.ErrNotConfigured)
	}

	customerID, err := s.customerFor(ctx, user)
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(baseURL, "/")
	sessionID, err := s.payments.CreateCheckoutSession(ctx, models.CheckoutRequest{
		CustomerID: customerID,
		PriceID:    s.priceID,
		SuccessURL: base + "/?success=true",
		CancelURL:  base + "/?canceled=true",
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("user_id", user.ID).Str("customer_id", customerID).Msg("Checkout session created")
	return sessionID, nil
}

func (s *Service) customerFor(ctx context.Context, user *models.User) (string, error) {
	sub, err := s.subscriptions.GetSubscription(ctx, user.ID)
	switch {
	case err == nil && sub.StripeCustomerID != "":
		return sub.StripeCustomerID, nil
	case err != nil && !errors.Is(err, interfaces.ErrNotFound):
		return "", fmt.Errorf("failed to read subscription: %w", err)
	}

	customerID, err := s.payments.CreateCustomer(ctx, user.Email, user.ID)
	if err != nil {
		return "", err
	}
	if err := s.subscriptions.SetCustomerID(ctx, user.ID, customerID); err != nil {
		return "", fmt.Errorf("failed to save customer id: %w", err)
	}
	s.logger.Info().Str("user_id", user.ID).Str("customer_id", customerID).Msg("Payment customer created")
	return customerID, nil
}

// HandleWebhook verifies a processor event and applies it. Events for
// unknown customers and unhandled types are acknowledged without changes.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.PaymentEvent, error) {
	if signature == "" {
		return nil, ErrMissingSignature
	}
	if s.payments == nil {
		return nil, fmt.Errorf("payments: %w", interfaces.ErrNotConfigured)
	}

	event, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotConfigured) {
			return nil, err
		}
		s.logger.Warn().Err(err).Msg("Webhook verification failed")
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	switch event.Type {
	case models.EventSubscriptionCreated, models.EventSubscriptionUpdated:
		err = s.applySubscription(ctx, event)
	case models.EventSubscriptionDeleted:
		err = s.applyDeletion(ctx, event)
	default:
		s.logger.Debug().Str("event_type", event.Type).Msg("Unhandled webhook event")
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Service) applySubscription(ctx context.Context, event *models.PaymentEvent) error {
	status := models.StatusFree
	if event.Status == "active" {
		status = models.StatusPremium
	}

	sub, err := s.subscriptions.FindByCustomerID(ctx, event.CustomerID)
	if errors.Is(err, interfaces.ErrNotFound) {
		s.logger.Warn().Str("customer_id", event.CustomerID).Msg("No user found for customer")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up customer: %w", err)
	}

	if err := s.subscriptions.UpdateStatus(ctx, sub.UserID, status, event.SubscriptionID); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	s.logger.Info().
		Str("user_id", sub.UserID).
		Str("status", string(status)).
		Str("subscription_id", event.SubscriptionID).
		Msg("Subscription updated")
	return nil
}

func (s *Service) applyDeletion(ctx context.Context, event *models.PaymentEvent) error {
	n, err := s.subscriptions.DowngradeBySubscriptionID(ctx, event.SubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	s.logger.Info().Str("subscription_id", event.SubscriptionID).Int64("rows", n).Msg("Subscription deleted")
	return nil
}

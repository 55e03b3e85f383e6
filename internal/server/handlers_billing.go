package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/services/billing"
)

type subscribeRequest struct {
	UserID string `json:"userId"`
}

// handleSubscribe creates a checkout session for the bearer of the token.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized: Missing or invalid Authorization header")
		return
	}

	var req subscribeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := s.app.Session.Authenticate(r.Context(), token)
	if errors.Is(err, interfaces.ErrNotConfigured) {
		WriteError(w, http.StatusInternalServerError, "Server configuration error: Auth service is not configured")
		return
	}
	if err != nil {
		s.logger.Info().Err(err).Msg("Subscribe token rejected")
		WriteError(w, http.StatusUnauthorized, "Unauthorized: Invalid or expired token")
		return
	}

	sessionID, err := s.app.BillingService.Subscribe(r.Context(), user, req.UserID, s.app.Config.ResolveBaseURL(r.Host))
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, map[string]string{"sessionId": sessionID})
	case errors.Is(err, billing.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "Unauthorized: User ID mismatch")
	case errors.Is(err, billing.ErrMissingPriceID):
		WriteError(w, http.StatusInternalServerError, "Server configuration error: Missing Stripe Price ID")
	default:
		s.logger.Error().Str("user_id", user.ID).Err(err).Msg("Error creating checkout session")
		WriteErrorWithDetails(w, http.StatusInternalServerError, "Failed to create checkout session", err.Error())
	}
}

// handleWebhook applies a signed payment-processor event.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<16))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Webhook Error")
		return
	}

	event, err := s.app.BillingService.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		s.logger.Info().Str("event_id", event.ID).Str("event_type", event.Type).Msg("Webhook processed")
		WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
	case errors.Is(err, billing.ErrMissingSignature):
		WriteError(w, http.StatusBadRequest, "No signature")
	case errors.Is(err, billing.ErrBadSignature):
		WriteError(w, http.StatusBadRequest, "Webhook Error")
	case errors.Is(err, interfaces.ErrNotConfigured):
		WriteError(w, http.StatusInternalServerError, "Server configuration error: Missing webhook secret")
	default:
		s.logger.Error().Err(err).Msg("Webhook processing failed")
		WriteError(w, http.StatusInternalServerError, "Failed to update subscription")
	}
}

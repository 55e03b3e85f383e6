package server

import (
	"net/http"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

// requireUser returns the authenticated caller or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := common.UserFromContext(r.Context())
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return user, true
}

type aggregateResponse struct {
	Allowed      bool                     `json:"allowed"`
	Reason       string                   `json:"reason,omitempty"`
	Subscription models.SubscriptionState `json:"subscription"`
	Result       *models.AggregateResult  `json:"result,omitempty"`
}

// handleAggregate is the request/response form of a live selection: quota
// check, click row, then the three lookups. A denial is a 200.
func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	symbol, ok := SymbolParam(w, r)
	if !ok {
		return
	}

	tracker := s.app.QuotaService.NewTracker(user.ID)
	if err := tracker.Load(r.Context()); err != nil {
		s.logger.Error().Str("user_id", user.ID).Err(err).Msg("Failed to load quota")
		WriteError(w, http.StatusInternalServerError, "Failed to load subscription status")
		return
	}

	decision := tracker.Authorize(r.Context(), symbol)
	if !decision.Allowed {
		WriteJSON(w, http.StatusOK, aggregateResponse{
			Reason:       decision.Reason,
			Subscription: tracker.State(),
		})
		return
	}

	result := s.app.AggregateService.Fetch(r.Context(), symbol)
	WriteJSON(w, http.StatusOK, aggregateResponse{
		Allowed:      true,
		Subscription: tracker.State(),
		Result:       result,
	})
}

// handleLive upgrades to the live selection websocket. Browsers cannot set
// headers on websocket requests, so ?access_token= is also accepted.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	user := common.UserFromContext(r.Context())
	if user == nil {
		if token := r.URL.Query().Get("access_token"); token != "" {
			if u, err := s.app.Session.Authenticate(r.Context(), token); err == nil {
				user = u
			}
		}
	}
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.app.LiveHub.ServeWS(w, r, user)
}

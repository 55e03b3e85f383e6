package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

// codeVerifierCookieSuffix names the cookie holding the PKCE verifier set by the browser client.
const codeVerifierCookieSuffix = "-code-verifier"

// handleAuthCallback exchanges the auth code for a session and sets the
// session cookie. It always redirects home, even when the exchange fails.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	base := s.app.Config.ResolveBaseURL(r.Host)
	home := base + "/"

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, home, http.StatusTemporaryRedirect)
		return
	}

	verifier := r.URL.Query().Get("code_verifier")
	if c, err := r.Cookie(s.app.Config.Auth.CookieName + codeVerifierCookieSuffix); err == nil && verifier == "" {
		verifier = c.Value
	}

	sess, err := s.app.Session.ExchangeCode(r.Context(), code, verifier)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Error exchanging code for session")
		http.Redirect(w, r, home, http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, s.sessionCookie(sess.AccessToken, sess.ExpiresAt, strings.HasPrefix(base, "https://")))
	http.Redirect(w, r, home, http.StatusTemporaryRedirect)
}

func (s *Server) sessionCookie(value string, expires time.Time, https bool) *http.Cookie {
	c := &http.Cookie{
		Name:     s.app.Config.Auth.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.app.Config.Auth.CookieSecure || https,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	} else if !expires.IsZero() {
		c.Expires = expires
	}
	return c
}

// handleSignOut revokes the caller's token and clears the session cookie.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := s.app.Session.SignOut(r.Context(), common.AccessTokenFromContext(r.Context())); err != nil {
		s.logger.Warn().Err(err).Msg("Sign-out with auth service failed")
	}
	http.SetCookie(w, s.sessionCookie("", time.Time{}, false))
	WriteJSON(w, http.StatusOK, map[string]bool{"signedOut": true})
}

type meResponse struct {
	User         *models.User             `json:"user"`
	Subscription models.SubscriptionState `json:"subscription"`
}

// handleMe returns the caller and their freshly loaded quota.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	tracker := s.app.QuotaService.NewTracker(user.ID)
	if err := tracker.Load(r.Context()); err != nil {
		s.logger.Error().Str("user_id", user.ID).Err(err).Msg("Failed to load quota")
		WriteError(w, http.StatusInternalServerError, "Failed to load subscription status")
		return
	}
	WriteJSON(w, http.StatusOK, meResponse{User: user, Subscription: tracker.State()})
}

package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickalfaro/my-dashboard/internal/models"
	"github.com/erickalfaro/my-dashboard/internal/services/session"
)

func TestHandleAuthCallback_NoCode(t *testing.T) {
	h := newTestServer(newTestApp(t))

	req := httptest.NewRequest(http.MethodGet, "http://localhost:4000/api/auth/callback", nil)
	rr := serve(h, req)
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "http://localhost:4000/", rr.Header().Get("Location"))
	assert.Empty(t, rr.Result().Cookies())
}

func TestHandleAuthCallback_ExchangeSetsCookie(t *testing.T) {
	a := newTestApp(t)
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	auth := &mockAuth{session: &models.AuthSession{
		AccessToken: "access-1",
		ExpiresAt:   expires,
		User:        models.User{ID: "u1"},
	}}
	a.Session = session.NewProvider(auth, testJWTSecret, a.Logger)
	h := newTestServer(a)

	req := httptest.NewRequest(http.MethodGet, "http://dash.example.com/api/auth/callback?code=abc", nil)
	req.AddCookie(&http.Cookie{Name: a.Config.Auth.CookieName + "-code-verifier", Value: "verifier"})
	rr := serve(h, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "https://dash.example.com/", rr.Header().Get("Location"))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, a.Config.Auth.CookieName, c.Name)
	assert.Equal(t, "access-1", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
}

func TestHandleAuthCallback_ExchangeFailureStillRedirects(t *testing.T) {
	a := newTestApp(t)
	a.Session = session.NewProvider(&mockAuth{err: errors.New("bad code")}, testJWTSecret, a.Logger)
	h := newTestServer(a)

	req := httptest.NewRequest(http.MethodGet, "http://localhost/api/auth/callback?code=abc", nil)
	rr := serve(h, req)
	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

func TestHandleMe(t *testing.T) {
	h := newTestServer(newTestApp(t))

	rr := doRequest(t, h, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doRequest(t, h, http.MethodGet, "/api/auth/me", userToken(t, "u1"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"user": {"id": "u1", "email": "u1@example.com"},
		"subscription": {"status": "FREE", "clicksLeft": 2}
	}`, rr.Body.String())
}

func TestHandleMe_SessionCookie(t *testing.T) {
	a := newTestApp(t)
	h := newTestServer(a)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: a.Config.Auth.CookieName, Value: userToken(t, "u7")})
	rr := serve(h, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"u7"`)
}

func TestHandleSignOut(t *testing.T) {
	a := newTestApp(t)
	h := newTestServer(a)
	token := userToken(t, "u1")

	rr := doRequest(t, h, http.MethodPost, "/api/auth/signout", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"signedOut":true}`, rr.Body.String())
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	// The revoked token no longer authenticates.
	rr = doRequest(t, h, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// Package session resolves bearer tokens to users and ends sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erickalfaro/my-dashboard/internal/clients/supabase"
	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/models"
)

var (
	// ErrInvalidToken is returned for missing, malformed, expired or revoked tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrMissingCode is returned by ExchangeCode when no auth code was supplied.
	ErrMissingCode = errors.New("missing auth code")
)

// revokedTTL bounds how long a revoked token without a readable expiry is remembered.
const revokedTTL = time.Hour

// Provider implements interfaces.SessionProvider. With a JWT secret it
// verifies tokens locally; otherwise it asks the auth service.
type Provider struct {
	auth      interfaces.AuthClient
	jwtSecret []byte
	logger    *common.Logger
	now       func() time.Time // injectable clock for testing

	mu      sync.Mutex
	revoked map[string]time.Time
}

var _ interfaces.SessionProvider = (*Provider)(nil)

// NewProvider creates a provider. auth may be nil when the auth service is
// not configured; jwtSecret may be empty to force remote validation.
func NewProvider(auth interfaces.AuthClient, jwtSecret string, logger *common.Logger) *Provider {
	return &Provider{
		auth:      auth,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
		now:       time.Now,
		revoked:   make(map[string]time.Time),
	}
}

// Authenticate returns the user that owns accessToken.
func (p *Provider) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	if p.isRevoked(accessToken) {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}

	if len(p.jwtSecret) > 0 {
		claims, err := p.parse(accessToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return userFromClaims(claims)
	}

	if p.auth == nil {
		return nil, fmt.Errorf("auth service: %w", interfaces.ErrNotConfigured)
	}
	user, err := p.auth.GetUser(ctx, accessToken)
	if err != nil {
		if supabase.IsUnauthorized(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, err
	}
	return user, nil
}

func (p *Provider) parse(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.jwtSecret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func userFromClaims(claims jwt.MapClaims) (*models.User, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &models.User{ID: sub, Email: email, Role: role}, nil
}

// ExchangeCode completes the auth-code callback with the auth service.
func (p *Provider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*models.AuthSession, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if p.auth == nil {
		return nil, fmt.Errorf("auth service: %w", interfaces.ErrNotConfigured)
	}
	sess, err := p.auth.ExchangeCode(ctx, code, codeVerifier)
	if err != nil {
		return nil, err
	}
	p.logger.Info().Str("user_id", sess.User.ID).Msg("Session established")
	return sess, nil
}

// SignOut revokes accessToken locally, then with the auth service. The local
// revocation holds even when the remote call fails.
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrInvalidToken
	}
	p.revoke(accessToken)

	if p.auth == nil {
		return nil
	}
	if err := p.auth.SignOut(ctx, accessToken); err != nil {
		if supabase.IsUnauthorized(err) {
			return nil
		}
		p.logger.Warn().Err(err).Msg("Remote sign-out failed")
		return err
	}
	return nil
}

func (p *Provider) revoke(token string) {
	expires := p.now().Add(revokedTTL)
	if len(p.jwtSecret) > 0 {
		if claims, err := p.parse(token); err == nil {
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				expires = exp.Time
			}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for t, exp := range p.revoked {
		if now.After(exp) {
			delete(p.revoked, t)
		}
	}
	p.revoked[token] = expires
}

func (p *Provider) isRevoked(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	exp, ok := p.revoked[token]
	return ok && !p.now().After(exp)
}

// Close drops the revocation set.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = make(map[string]time.Time)
	return nil
}

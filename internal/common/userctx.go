package common

import (
	"context"

	"github.com/erickalfaro/my-dashboard/internal/models"
)

type contextKey int

const (
	userKey contextKey = iota
	tokenKey
	correlationKey
)

// WithUser stores the authenticated user and its access token in ctx.
func WithUser(ctx context.Context, user *models.User, accessToken string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, tokenKey, accessToken)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// AccessTokenFromContext returns the bearer token the user authenticated with.
func AccessTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// ResolveUserID returns the user id from context, or "" for anonymous requests.
func ResolveUserID(ctx context.Context) string {
	if u := UserFromContext(ctx); u != nil {
		return u.ID
	}
	return ""
}

// WithCorrelationID stores the request correlation id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

// CorrelationIDFromContext returns the request correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}

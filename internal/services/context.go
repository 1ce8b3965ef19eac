package services

import (
	"context"

	"bux-api/internal/models"
)

type contextKey string

const (
	UserContextKey      contextKey = "user"
	APIClientContextKey contextKey = "api_client"
)

// WithUserContext attaches the bearer-token identity to ctx.
func WithUserContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext returns the bearer-token identity, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// WithAPIClientContext attaches the account that owns the presented API key.
func WithAPIClientContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, APIClientContextKey, user)
}

// APIClientFromContext returns the account that owns the presented API key.
func APIClientFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(APIClientContextKey).(*models.User)
	return user, ok && user != nil
}

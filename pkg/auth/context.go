package auth

import (
	"context"

	"github.com/loopmsg/wabridge/pkg/types"
)

type contextKey string

const userContextKey contextKey = "wabridge.user"

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil
func UserFromContext(ctx context.Context) *types.User {
	user, _ := ctx.Value(userContextKey).(*types.User)
	return user
}

package auth

import (
	"context"

	"stormwatch.io/internal/store"
)

type ctxKey string

const userKey ctxKey = "auth_user"

// ContextWithUser stores the authenticated user in the context.
func ContextWithUser(ctx context.Context, user *store.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the authenticated user from the context.
func UserFromContext(ctx context.Context) (*store.User, bool) {
	user, ok := ctx.Value(userKey).(*store.User)
	return user, ok && user != nil
}

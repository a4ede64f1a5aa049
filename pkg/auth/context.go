// Package auth resolves the caller's identity. The identity provider
// itself is external; this package only extracts and validates the opaque
// user id every core call is scoped by.
package auth

import (
	"context"
	"fmt"
)

type contextKey string

const userIDKey contextKey = "auth.user_id"

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the user id from the context.
// Returns false if the request was not authenticated.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// RequireUserID extracts the user id from the context and returns an error
// if it is missing. Use this when identity is required for the operation.
func RequireUserID(ctx context.Context) (string, error) {
	userID, ok := GetUserID(ctx)
	if !ok {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

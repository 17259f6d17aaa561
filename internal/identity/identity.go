// Package identity carries the caller's user id, as asserted by the identity
// provider's gateway, through the request context.
package identity

import "context"

const (
	UserHeader   = "X-Gymplan-User"
	SecretHeader = "X-Gymplan-Secret"
)

type userIDKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

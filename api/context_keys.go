package api

import (
	"context"

	"forensics/core"
)

// contextKey is a private type to prevent context key collisions across packages.
// Only this package can create these keys, so downstream handlers can trust
// the identity values they carry.
type contextKey string

const (
	// ContextKeyClaims stores the verified token claims (*Claims)
	ContextKeyClaims contextKey = "claims"

	// ContextKeyRequestID stores the unique request identifier (string)
	ContextKeyRequestID contextKey = "request_id"
)

// WithClaims returns a context carrying verified claims
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ContextKeyClaims, claims)
}

// GetClaims extracts the verified claims from the context
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*Claims)
	return claims, ok && claims != nil
}

// GetUserID extracts the caller's user id
func GetUserID(ctx context.Context) (string, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return "", false
	}
	return claims.UserID, claims.UserID != ""
}

// GetRole extracts the caller's role. Used by Authorize.
func GetRole(ctx context.Context) (core.UserRole, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return "", false
	}
	return claims.Role, claims.Role != ""
}

// GetEmail extracts the caller's email, used as the actor in custody and journal entries
func GetEmail(ctx context.Context) (string, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return "", false
	}
	return claims.Email, claims.Email != ""
}

// WithRequestID returns a context carrying the request id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// GetRequestID extracts the request id
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyRequestID).(string)
	return id, ok
}

// actorFromContext returns the caller's email, or "unknown"
func actorFromContext(ctx context.Context) string {
	if email, ok := GetEmail(ctx); ok {
		return email
	}
	return "unknown"
}

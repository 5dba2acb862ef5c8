package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxOwnerID contextKey = "owner_id"
	ctxKeyID   contextKey = "api_key_id"
)

// WithOwner injects the validated caller identity into the context. Handlers
// read the owner from here and never from request input.
func WithOwner(ctx context.Context, ownerID, keyID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxOwnerID, ownerID)
	return context.WithValue(ctx, ctxKeyID, keyID)
}

// OwnerIDFromContext returns the validated owner id, or uuid.Nil outside an
// authenticated request.
func OwnerIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxOwnerID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// KeyIDFromContext returns the id of the API key behind the request.
func KeyIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxKeyID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

package middleware

import (
	"context"

	pkgauth "github.com/mealora/mealora-backend/pkg/auth"
)

type contextKey string

const ctxCaller contextKey = "caller"

// CallerFromContext returns the authenticated caller, if any.
func CallerFromContext(ctx context.Context) (pkgauth.Caller, bool) {
	if ctx == nil {
		return pkgauth.Caller{}, false
	}
	caller, ok := ctx.Value(ctxCaller).(pkgauth.Caller)
	return caller, ok
}

// WithCaller injects the caller identity into the context.
func WithCaller(ctx context.Context, caller pkgauth.Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCaller, caller)
}

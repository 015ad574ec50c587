package middleware

import (
	"context"

	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/types"
)

type contextKey string

const ctxSession contextKey = "session"

// SessionFromContext returns the authenticated session, or a zero value when
// the request carried no valid credentials.
func SessionFromContext(ctx context.Context) types.SessionContext {
	if ctx == nil {
		return types.SessionContext{}
	}
	if sess, ok := ctx.Value(ctxSession).(types.SessionContext); ok {
		return sess
	}
	return types.SessionContext{}
}

// WithSession injects the session into the context for downstream handlers.
func WithSession(ctx context.Context, sess types.SessionContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, sess)
}

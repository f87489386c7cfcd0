package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	openIDKey    ctxKey = "openid"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithOpenID tags every log line written through FromCtx with the caller.
func WithOpenID(ctx context.Context, openID string) context.Context {
	return context.WithValue(ctx, openIDKey, openID)
}

func OpenIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(openIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns logger with request_id and openid added when present
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if openID := OpenIDFrom(ctx); openID != "" {
		l = l.With(zap.String("openid", openID))
	}
	return l
}

// Package transport carries the raw HTTP exchange through the context so a
// function handler can touch cookies without knowing about gin.
package transport

import (
	"context"
	"net/http"
	"time"
)

type ctxKey string

const (
	requestKey        ctxKey = "httpRequest"
	responseWriterKey ctxKey = "httpResponseWriter"
)

const AccessCookie = "access_token"

func WithHTTP(ctx context.Context, r *http.Request, w http.ResponseWriter) context.Context {
	ctx = context.WithValue(ctx, requestKey, r)
	ctx = context.WithValue(ctx, responseWriterKey, w)
	return ctx
}

func GetRequest(ctx context.Context) *http.Request {
	r, _ := ctx.Value(requestKey).(*http.Request)
	return r
}

func GetResponseWriter(ctx context.Context) http.ResponseWriter {
	w, _ := ctx.Value(responseWriterKey).(http.ResponseWriter)
	return w
}

// SetAccessCookie stores token as an HttpOnly cookie. It is a no-op outside
// an HTTP exchange.
func SetAccessCookie(ctx context.Context, token string, ttl time.Duration) {
	w := GetResponseWriter(ctx)
	if w == nil {
		return
	}
	secure := false
	if r := GetRequest(ctx); r != nil {
		secure = r.TLS != nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHelpers(t *testing.T) {
	t.Run("Inject and retrieve", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/api/fn/auth", nil)
		w := httptest.NewRecorder()

		ctx := WithHTTP(context.Background(), req, w)

		assert.Equal(t, req, GetRequest(ctx))
		assert.Equal(t, w, GetResponseWriter(ctx))
	})

	t.Run("Empty context returns nil", func(t *testing.T) {
		ctx := context.Background()

		assert.Nil(t, GetRequest(ctx))
		assert.Nil(t, GetResponseWriter(ctx))
	})
}

func TestSetAccessCookie(t *testing.T) {
	t.Run("Writes an HttpOnly cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/fn/auth", nil)
		w := httptest.NewRecorder()

		SetAccessCookie(WithHTTP(context.Background(), req, w), "tok", time.Hour)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, AccessCookie, cookies[0].Name)
		assert.Equal(t, "tok", cookies[0].Value)
		assert.Equal(t, 3600, cookies[0].MaxAge)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("No exchange is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() {
			SetAccessCookie(context.Background(), "tok", time.Hour)
		})
	})
}

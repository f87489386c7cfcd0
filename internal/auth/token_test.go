package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAccessToken(t *testing.T) {
	t.Run("Cookie Preferred", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/fn/order", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie_token"})
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "cookie_token", ExtractAccessToken(req))
	})

	t.Run("Header Fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/fn/order", nil)
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "header_token", ExtractAccessToken(req))
	})

	t.Run("Empty Cookie Falls Back to Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/fn/order", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: ""})
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "header_token", ExtractAccessToken(req))
	})

	t.Run("No Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/fn/order", nil)
		assert.Empty(t, ExtractAccessToken(req))
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/fn/order", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		assert.Empty(t, ExtractAccessToken(req))
	})
}

func TestIssuer(t *testing.T) {
	iss := NewIssuer("testsecret", time.Hour)

	t.Run("Round trip", func(t *testing.T) {
		tok, err := iss.Issue("oUser123", "user")
		require.NoError(t, err)

		claims, err := iss.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, "oUser123", claims.OpenID)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		tok, err := NewIssuer("secret1", time.Hour).Issue("oUser123", "admin")
		require.NoError(t, err)

		_, err = NewIssuer("secret2", time.Hour).Parse(tok)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "signature is invalid")
	})

	t.Run("Expired", func(t *testing.T) {
		old := NewIssuer("testsecret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		tok, err := old.Issue("oUser123", "user")
		require.NoError(t, err)

		_, err = iss.Parse(tok)
		assert.Error(t, err)
	})

	t.Run("No secret", func(t *testing.T) {
		_, err := NewIssuer("", time.Hour).Issue("x", "user")
		assert.ErrorIs(t, err, ErrNoSecret)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := iss.Parse("invalid-token-string")
		assert.Error(t, err)
	})
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, CheckPasswordHash("secret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

package middleware

import (
	"bakery-be/internal/auth"
	"bakery-be/internal/logger"
	"bakery-be/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Identity attaches the caller in the access token to the request context.
// Requests without a valid token continue anonymously; each function decides
// whether it needs a caller.
func Identity(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.ExtractAccessToken(c.Request)
		if raw == "" {
			c.Next()
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			logger.FromCtx(c.Request.Context()).Debug("ignoring invalid access token", zap.Error(err))
			c.Next()
			return
		}

		ctx := utils.SetUserContext(c.Request.Context(), claims.OpenID, claims.Role)
		ctx = logger.WithOpenID(ctx, claims.OpenID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

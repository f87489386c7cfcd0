package function

import (
	"net/http"

	"bakery-be/internal/logger"
	"bakery-be/internal/metrics"
	"bakery-be/internal/middleware"
	"bakery-be/internal/transport"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Registry *Registry
	Tokens   middleware.TokenParser
	Limiter  *middleware.Limiter
	HTTP     *metrics.HTTP
	Gatherer prometheus.Gatherer
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(),
		logger.RequestIDMiddleware(),
		logger.LoggingMiddleware(),
	)
	if d.HTTP != nil {
		r.Use(d.HTTP.Build())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/fn")
	api.Use(middleware.Identity(d.Tokens))
	if d.Limiter != nil {
		api.Use(d.Limiter.Build())
	}
	api.POST("/:name", Serve(d.Registry))

	return r
}

// Serve answers every call with HTTP 200 and the result in the envelope code.
func Serve(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := transport.WithHTTP(c.Request.Context(), c.Request, c.Writer)

		req, err := DecodeRequest(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusOK, Respond(ctx, nil, err))
			return
		}

		data, err := reg.Dispatch(ctx, c.Param("name"), req)
		c.JSON(http.StatusOK, Respond(ctx, data, err))
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bakery-be/internal/address"
	"bakery-be/internal/audit"
	"bakery-be/internal/auth"
	"bakery-be/internal/cart"
	"bakery-be/internal/category"
	"bakery-be/internal/config"
	"bakery-be/internal/coupon"
	"bakery-be/internal/db"
	"bakery-be/internal/function"
	"bakery-be/internal/idempotency"
	"bakery-be/internal/logger"
	"bakery-be/internal/metrics"
	"bakery-be/internal/middleware"
	"bakery-be/internal/order"
	"bakery-be/internal/product"
	"bakery-be/internal/stats"
	"bakery-be/internal/uow"
	"bakery-be/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Functions whose callers get the strict rate tier.
var strictFunctions = []string{"auth", "order"}

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	defer logger.Sync()
	log := logger.L()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database := db.InitDB(cfg)
	defer database.Close()

	var rdb redis.Cmdable
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		rdb = client
	} else {
		log.Warn("REDIS_ADDR not set, duplicate submits are not guarded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(cfg, database, rdb, prometheus.NewRegistry())
	if err != nil {
		log.Fatal("failed to build app", zap.Error(err))
	}
	go app.limiter.Cleanup(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

type app struct {
	router  *gin.Engine
	limiter *middleware.Limiter
}

// newApp wires repositories, services and the function router. rdb may be nil.
func newApp(cfg *config.Config, database *sql.DB, rdb redis.Cmdable, reg *prometheus.Registry) (*app, error) {
	u := uow.New(database)
	repos := map[uow.RepositoryName]uow.RepositoryFactory{
		order.RepoName:      func(tx uow.DBTX) uow.Repository { return order.NewRepository(tx) },
		product.RepoName:    func(tx uow.DBTX) uow.Repository { return product.NewRepository(tx) },
		category.RepoName:   func(tx uow.DBTX) uow.Repository { return category.NewRepository(tx) },
		coupon.RepoName:     func(tx uow.DBTX) uow.Repository { return coupon.NewRepository(tx) },
		user.RepoName:       func(tx uow.DBTX) uow.Repository { return user.NewRepository(tx) },
		user.PointsRepoName: func(tx uow.DBTX) uow.Repository { return user.NewPointsRepository(tx) },
		cart.RepoName:       func(tx uow.DBTX) uow.Repository { return cart.NewRepository(tx) },
		address.RepoName:    func(tx uow.DBTX) uow.Repository { return address.NewRepository(tx) },
		audit.RepoName:      func(tx uow.DBTX) uow.Repository { return audit.NewRepository(tx) },
		stats.RepoName:      func(tx uow.DBTX) uow.Repository { return stats.NewRepository(tx) },
	}
	for name, factory := range repos {
		if err := u.Register(name, factory); err != nil {
			return nil, err
		}
	}

	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	business := metrics.NewBusiness(reg)

	var guard order.Guard = idempotency.Noop{}
	if rdb != nil {
		guard = idempotency.NewRedisGuard(rdb, cfg.IdempotencyTTL)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	registry := function.NewRegistry()
	function.Register(registry, function.Services{
		Orders:     order.NewService(u, cfg.DeliveryFee, order.WithGuard(guard), order.WithMetrics(business)),
		Products:   product.NewService(u),
		Categories: category.NewService(u),
		Coupons:    coupon.NewService(u),
		Users:      user.NewService(u, tokens),
		Carts:      cart.NewService(u),
		Addresses:  address.NewService(u),
		Stats:      stats.NewService(u, loc),
		DevLogin:   cfg.DevLogin,
		TokenTTL:   cfg.JWTTTL,
		Location:   loc,
	})

	limiter := middleware.NewLimiter(cfg.InternalSecretKey, strictFunctions...)
	router := function.NewRouter(function.RouterDeps{
		Registry: registry,
		Tokens:   tokens,
		Limiter:  limiter,
		HTTP:     metrics.NewHTTP(reg),
		Gatherer: reg,
	})
	return &app{router: router, limiter: limiter}, nil
}

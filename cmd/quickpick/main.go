package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Niyatinagar/Quickpick/internal/app"
	"github.com/Niyatinagar/Quickpick/internal/auth"
	"github.com/Niyatinagar/Quickpick/internal/cart"
	"github.com/Niyatinagar/Quickpick/internal/catalog"
	"github.com/Niyatinagar/Quickpick/internal/catalog/categories"
	"github.com/Niyatinagar/Quickpick/internal/catalog/products"
	"github.com/Niyatinagar/Quickpick/internal/observability"
	"github.com/Niyatinagar/Quickpick/internal/orders"
	"github.com/Niyatinagar/Quickpick/internal/platform/cache"
	"github.com/Niyatinagar/Quickpick/internal/platform/db"
	"github.com/Niyatinagar/Quickpick/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, "api")

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	mailClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mailClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		RefreshTTL:    cfg.RefreshTokenTTL,
	})

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, mailClient, logger, auth.ServiceConfig{
		BaseURL:         cfg.AppBaseURL,
		OTPTTL:          cfg.OTPTTL,
		ResetAuthWindow: cfg.ResetAuthWindow,
	})
	authMiddleware := auth.Middleware{Tokens: tokens, Service: authService, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, authMiddleware, auth.CookieConfig{
		Secure:     cfg.IsProduction(),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})

	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo, catalogCache)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, catalogCache)
	productsHandler := products.NewHandler(logger, productsService)

	cartRepo := cart.NewRepository(pool)
	cartService := cart.NewService(cartRepo, productsService)
	cartHandler := cart.NewHandler(logger, cartService)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, cartService, orders.LogGateway{Logger: logger}, authService, mailClient, logger)
	ordersHandler := orders.NewHandler(logger, ordersService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		CategoriesHandler: categoriesHandler,
		ProductsHandler:   productsHandler,
		CartHandler:       cartHandler,
		OrdersHandler:     ordersHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

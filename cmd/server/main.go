package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/events"
	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"
	"storefront-be/internal/notification"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/ratelimit"
	"storefront-be/internal/transport"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := db.Connect(cfg)
	if err != nil {
		logger.L().Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	repo := order.NewRepository(database)
	limiter := ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow)
	verifier := payment.NewVerifier(payment.NewClient(cfg.StripeSecretKey))
	notifier := notification.NewDispatcher(cfg.NotifyURL)

	var publisher order.Publisher
	if cfg.KafkaBroker != "" {
		kafkaPub := events.NewPublisher(cfg.KafkaBroker, cfg.KafkaTopic)
		defer kafkaPub.Close()
		publisher = kafkaPub
	}

	svc := order.NewService(repo, limiter, verifier, notifier, publisher)

	handler := transport.NewHandler(svc, cfg.IsDevelopment())
	adminHandler := transport.NewAdminHandler(svc, cfg)
	traffic := middleware.NewTraffic(2, 5)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      transport.NewRouter(handler, adminHandler, traffic, cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L().Info("server listening",
			zap.String("port", cfg.AppPort),
			zap.String("env", cfg.AppEnv),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L().Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("graceful shutdown failed", zap.Error(err))
	}
}

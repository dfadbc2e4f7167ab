package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avelorn/storefront/internal/cache"
	"github.com/avelorn/storefront/internal/config"
	"github.com/avelorn/storefront/internal/es"
	"github.com/avelorn/storefront/internal/events"
	"github.com/avelorn/storefront/internal/handlers"
	"github.com/avelorn/storefront/internal/logging"
	loggingmw "github.com/avelorn/storefront/internal/middleware/logging"
	"github.com/avelorn/storefront/internal/mail"
	authsvc "github.com/avelorn/storefront/internal/service/auth"
	"github.com/avelorn/storefront/internal/service/catalog"
	ordersvc "github.com/avelorn/storefront/internal/service/order"
	"github.com/avelorn/storefront/internal/service/stats"
	httpserver "github.com/avelorn/storefront/internal/transport/http"
	"github.com/avelorn/storefront/pkg/db"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(configuration.LogLevel)

	ctx := context.Background()
	database, err := db.Open(ctx, configuration.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	producer := events.NewProducer(configuration.KafkaAddress)

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch error: %v", err)
	}
	indexer := &es.Indexer{Client: esClient, Index: configuration.ESIndex}

	redisCache, err := cache.New(configuration.RedisAddr)
	if err != nil {
		log.Fatalf("redis error: %v", err)
	}

	mailer := mail.New(
		configuration.SMTPHost,
		configuration.SMTPPort,
		configuration.SMTPUser,
		configuration.SMTPPassword,
		configuration.SMTPUser,
		logger,
	)

	jwtSecret := []byte(configuration.JWTSecret)

	authService := &authsvc.AuthService{
		DB:          database,
		JWTSecret:   jwtSecret,
		AdminEmail:  configuration.AdminEmail,
		FrontendURL: configuration.FrontendURL,
		Producer:    producer,
		Mailer:      mailer,
	}
	catalogService := &catalog.CatalogService{
		DB:       database,
		Producer: producer,
		Indexer:  indexer,
		Cache:    redisCache,
	}
	orderService := &ordersvc.OrderService{
		DB:         database,
		Producer:   producer,
		Mailer:     mailer,
		Cache:      redisCache,
		AdminEmail: configuration.AdminEmail,
	}
	statsService := &stats.StatsService{DB: database, Cache: redisCache}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:    &handlers.AuthHandler{Svc: authService},
		ProductHandler: &handlers.ProductHandler{Svc: catalogService},
		OrderHandler:   &handlers.OrderHandler{Svc: orderService},
		AdminHandler:   &handlers.AdminHandler{Auth: authService, Stats: statsService},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: configuration.ESIndex},
		JWTSecret:      jwtSecret,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTPAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", configuration.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	mailer.Close()

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if err := redisCache.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

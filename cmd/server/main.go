package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/donation-ledger/internal/application/service"
	"github.com/damon-houk/donation-ledger/internal/config"
	domainservice "github.com/damon-houk/donation-ledger/internal/domain/service"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/api"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/cache"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/db"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/events"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/handler"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/logger"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/metrics"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/middleware"
	"github.com/dgraph-io/badger/v3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.MustLoad()

	log := logger.NewZeroLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(log)

	log.Info("Starting donation ledger", map[string]interface{}{
		"env":       cfg.Env,
		"address":   cfg.HTTPServer.Address(),
		"reference": cfg.Currency.Reference,
		"display":   cfg.Currency.Display,
	})
	if cfg.Webhook.VerificationToken == "" {
		log.Warn("KOFI_VERIFICATION_TOKEN is not set, webhook deliveries will fail", nil)
	}

	// Setup BadgerDB
	if err := os.MkdirAll(cfg.Storage.Path, 0755); err != nil {
		log.Fatal("Failed to create database directory", map[string]interface{}{"error": err.Error()})
	}

	badgerOpts := badger.DefaultOptions(cfg.Storage.Path)
	badgerOpts.Logger = nil

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{"error": err.Error()})
	}
	defer func() {
		if err := badgerDB.Close(); err != nil {
			log.Error("Error closing BadgerDB", map[string]interface{}{"error": err.Error()})
		}
	}()

	m := metrics.NewMetrics(nil)

	store := db.NewBadgerStore(badgerDB)
	store.OnConflict(m.SummaryUpdateConflicts.Inc)

	// Initialize repositories
	rateRepo := db.NewBadgerRateRepository(store)
	summaryRepo := db.NewBadgerSummaryRepository(store)

	// Initialize API clients
	rateClient := api.NewExchangeRateAPIClient(
		cfg.RateProvider.BaseURL,
		cfg.RateProvider.AccessKey,
		&http.Client{Timeout: cfg.RateProvider.Timeout},
		log.WithField("component", "rate_provider"),
	)

	rateCache := cache.NewRateCache(rateRepo, rateClient, cfg.Currency.Reference, cfg.Currency.Display,
		log.WithField("component", "rate_cache"), m)
	rateCache.SetExpiration(cfg.RateProvider.CacheTTL)

	var publisher domainservice.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.WithField("component", "events"))
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error("Error closing Kafka publisher", map[string]interface{}{"error": err.Error()})
			}
		}()
		publisher = kafkaPublisher
	}

	// Initialize services
	ledger := service.NewLedgerService(service.LedgerConfig{
		VerificationToken:      cfg.Webhook.VerificationToken,
		ReferenceCurrency:      cfg.Currency.Reference,
		DisplayCurrencies:      cfg.Currency.Display,
		DefaultDisplayCurrency: cfg.Currency.DefaultDisplay,
	}, summaryRepo, rateCache, publisher, log, m)

	// Setup router
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.RecoverMiddleware(log))
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.MetricsMiddleware(m))

	handler.NewWebhookHandler(ledger, log).RegisterRoutes(router)
	handler.NewSummaryHandler(ledger, log).RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:              cfg.HTTPServer.Address(),
		Handler:           router,
		ReadTimeout:       cfg.HTTPServer.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPServer.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error("Server failed", map[string]interface{}{"error": err.Error()})
	case sig := <-stop:
		log.Info("Shutting down", map[string]interface{}{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}

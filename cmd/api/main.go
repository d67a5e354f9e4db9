package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"storefront-backend/internal/checkout"
	"storefront-backend/internal/config"
	"storefront-backend/internal/db"
	"storefront-backend/internal/events"
	"storefront-backend/internal/httpserver"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/reconcile"
	cartrepo "storefront-backend/internal/repository/cart"
	orderrepo "storefront-backend/internal/repository/order"
	productrepo "storefront-backend/internal/repository/product"
	cartsvc "storefront-backend/internal/service/cart"
	"storefront-backend/internal/stock"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.Fatalf("connect to kafka: %v", err)
		}
		defer publisher.Close()
	} else {
		logger.Printf("KAFKA_BROKERS not set, order events disabled")
	}

	m := metrics.New()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	ledger := stock.NewPostgresLedger(dbpool)

	cartService := cartsvc.New(cartRepo, productRepo)
	checkoutService := checkout.New(cartRepo, productRepo, ledger, orderRepo, cfg.Pricing, publisher, m, logger)
	reconcileService := reconcile.New(orderRepo, publisher, m, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Checkout:  checkoutService,
		Reconcile: reconcileService,
		Orders:    orderRepo,
		Carts:     cartService,
		Products:  productRepo,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

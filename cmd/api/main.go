package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"techstore/internal/config"
	"techstore/internal/db"
	"techstore/internal/httpserver"
	"techstore/internal/images"
	"techstore/internal/metrics"
	"techstore/internal/pricing"
	cartrepo "techstore/internal/repository/cart"
	customerrepo "techstore/internal/repository/customer"
	orderrepo "techstore/internal/repository/order"
	productrepo "techstore/internal/repository/product"
	tokenrepo "techstore/internal/repository/token"
	cartsvc "techstore/internal/service/cart"
	checkoutsvc "techstore/internal/service/checkout"
	customersvc "techstore/internal/service/customer"
	productsvc "techstore/internal/service/product"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool), productRepo)
	customerService := customersvc.New(customerrepo.NewPostgres(dbpool, logger), tokenrepo.NewPostgres(dbpool))
	checkoutService := checkoutsvc.New(
		orderrepo.NewPostgres(dbpool, logger),
		pricing.ThresholdDiscount{Threshold: cfg.DiscountThreshold, Amount: cfg.DiscountAmount},
		cfg.CheckoutTimeout,
	)

	if n, err := customerService.PurgeExpiredTokens(ctx); err != nil {
		logger.Printf("purge expired tokens: %v", err)
	} else if n > 0 {
		logger.Printf("purged %d expired tokens", n)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CustomerSvc:       customerService,
		ProductSvc:        productService,
		CartSvc:           cartService,
		CheckoutSvc:       checkoutService,
		Images:            images.NewStore(cfg.ImageDir, cfg.FileURLHost),
		Metrics:           metrics.NewServerMetrics("api"),
		CORSOrigins:       cfg.CORSOrigins,
		DefaultCustomerID: cfg.DefaultCustomerID,
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

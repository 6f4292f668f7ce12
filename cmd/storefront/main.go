package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"

	cartapp "github.com/moksh1tha/nuastore/internal/cart/app"
	cartdomain "github.com/moksh1tha/nuastore/internal/cart/domain"
	cartsqlite "github.com/moksh1tha/nuastore/internal/cart/infra/sqlite"
	catalogapp "github.com/moksh1tha/nuastore/internal/catalog/app"
	"github.com/moksh1tha/nuastore/internal/catalog/infra/fakestore"
	catalogsqlite "github.com/moksh1tha/nuastore/internal/catalog/infra/sqlite"
	checkoutapp "github.com/moksh1tha/nuastore/internal/checkout/app"
	checkoutsqlite "github.com/moksh1tha/nuastore/internal/checkout/infra/sqlite"
	"github.com/moksh1tha/nuastore/internal/web"
	"github.com/moksh1tha/nuastore/pkg/config"
	"github.com/moksh1tha/nuastore/pkg/logger"
	"github.com/moksh1tha/nuastore/pkg/shutdown"
	"github.com/moksh1tha/nuastore/pkg/sqlite"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer db.Close()

	// Catalog: upstream API behind the two-tier cache.
	cacheStore, err := catalogsqlite.NewCacheStore(db)
	if err != nil {
		log.Error("cache store init failed", slog.Any("err", err))
		os.Exit(1)
	}
	upstream := fakestore.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	catalog := catalogapp.NewClient(upstream, cacheStore, log, cfg.CacheTTL)

	// Cart: rehydrate last session's cart, persist every new snapshot.
	cartRepo, err := cartsqlite.NewCartRepo(db, log)
	if err != nil {
		log.Error("cart repo init failed", slog.Any("err", err))
		os.Exit(1)
	}
	initial, err := cartRepo.Load(ctx)
	if err != nil {
		log.Warn("cart rehydration failed, starting empty", slog.Any("err", err))
		initial = cartdomain.Cart{}
	}
	cart := cartapp.NewStore(initial)
	unsubscribe := cartapp.Persist(cart, cartRepo, log)
	defer unsubscribe()

	// Checkout.
	orderRepo, err := checkoutsqlite.NewOrderRepo(db)
	if err != nil {
		log.Error("order repo init failed", slog.Any("err", err))
		os.Exit(1)
	}
	checkout := checkoutapp.NewService(orderRepo)

	mux := http.NewServeMux()
	web.NewHandler(catalog, cart, checkout, log).Register(mux)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

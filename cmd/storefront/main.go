// Package main boots the BloomEdge storefront HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bloomedge/storefront/internal/cart"
	"github.com/bloomedge/storefront/internal/catalog"
	"github.com/bloomedge/storefront/internal/config"
	httpapi "github.com/bloomedge/storefront/internal/http"
	"github.com/bloomedge/storefront/internal/notify"
	"github.com/bloomedge/storefront/internal/obs"
	"github.com/bloomedge/storefront/internal/order"
	"github.com/bloomedge/storefront/internal/storage"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")

	cat := catalog.New()
	if err := cat.LoadSeed(cfg.CatalogSeed); err != nil {
		obs.Logger.Warn("catalog_seed_unavailable", "path", cfg.CatalogSeed, "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.CatalogWatch {
		if err := cat.Watch(ctx, cfg.CatalogSeed); err != nil {
			obs.Logger.Warn("catalog_watch_unavailable", "path", cfg.CatalogSeed, "error", err)
		}
	}

	var slot storage.Slot
	fileSlot, err := storage.NewFile(cfg.DataDir)
	if err != nil {
		obs.Logger.Warn("file_storage_unavailable", "dir", cfg.DataDir, "error", err)
		slot = storage.NewMemory()
	} else {
		slot = fileSlot
	}
	ledger := cart.New(slot, cfg.CartKey)

	disp := notify.NewDispatcher(ctx, notify.LogNotifier{}, cfg.NotifyWorkers, cfg.NotifyBuffer)
	orders := order.NewService(disp)

	app := httpapi.NewApp(cfg, cat, ledger, orders, disp)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}

	if drained := disp.Close(cfg.ShutdownTimeout); !drained {
		obs.Logger.Warn("notify_drain_timeout")
	} else {
		obs.Logger.Info("notify_drain_complete")
	}
	obs.Logger.Info("service_stopped")
}

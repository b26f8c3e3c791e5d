package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aluiziolira/go-rental-cars/config"
	"github.com/aluiziolira/go-rental-cars/favorites"
	"github.com/aluiziolira/go-rental-cars/gateway"
	"github.com/aluiziolira/go-rental-cars/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defaultCfg := config.DefaultConfig()
	addrDefault := defaultCfg.ListenAddr
	if value, ok := config.EnvString("CATALOG_ADDR"); ok {
		addrDefault = value
	}
	baseURLDefault := defaultCfg.BaseURL
	if value, ok := config.EnvString("CATALOG_BASE_URL"); ok {
		baseURLDefault = value
	}
	favoritesDefault := defaultCfg.FavoritesPath
	if value, ok := config.EnvString("CATALOG_FAVORITES"); ok {
		favoritesDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("CATALOG_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	inquiry404Default := defaultCfg.InquiryNotFoundOK
	if value, ok, err := config.EnvBool("CATALOG_INQUIRY_404_OK"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid CATALOG_INQUIRY_404_OK: %v\n", err)
		os.Exit(1)
	} else if ok {
		inquiry404Default = value
	}

	addr := flag.String("addr", addrDefault, "HTTP listen address")
	baseURL := flag.String("base-url", baseURLDefault, "Catalog API base URL")
	assetBaseURL := flag.String("asset-base-url", defaultCfg.AssetBaseURL, "Asset host for image URL repair")
	favoritesPath := flag.String("favorites", favoritesDefault, "Favorites database path")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	timeoutSec := flag.Int("timeout", int(defaultCfg.Timeout/time.Second), "Upstream request timeout (seconds)")
	inquiry404OK := flag.Bool("inquiry-404-ok", inquiry404Default, "Treat 404 on both inquiry paths as success")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	slog.SetDefault(newLogger(*verbose))

	cfg := defaultCfg
	cfg.ListenAddr = *addr
	cfg.BaseURL = *baseURL
	cfg.AssetBaseURL = *assetBaseURL
	cfg.FavoritesPath = *favoritesPath
	cfg.MetricsAddr = *metricsAddr
	cfg.Timeout = time.Duration(*timeoutSec) * time.Second
	cfg.InquiryNotFoundOK = *inquiry404OK
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	client, err := gateway.NewClient(cfg)
	if err != nil {
		slog.Error("initialising gateway", slog.Any("error", err))
		os.Exit(1)
	}

	fav, err := favorites.Open(cfg.FavoritesPath)
	if err != nil {
		slog.Error("opening favorites", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := fav.Close(); err != nil {
			slog.Error("close favorites", slog.Any("error", err))
		}
	}()

	st, err := store.New(client, fav, cfg)
	if err != nil {
		slog.Error("initialising store", slog.Any("error", err))
		os.Exit(1)
	}

	app := NewApp(st, client)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      app.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && client.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(client.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("catalog API listening",
			slog.String("addr", cfg.ListenAddr),
			slog.String("upstream", cfg.BaseURL),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", slog.Any("error", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

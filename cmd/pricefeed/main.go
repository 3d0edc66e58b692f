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

	"golang.org/x/sync/errgroup"

	"github.com/finwire/pricefeed/internal/config"
	"github.com/finwire/pricefeed/internal/feed"
	"github.com/finwire/pricefeed/internal/server"
	"github.com/finwire/pricefeed/internal/store"
	"github.com/finwire/pricefeed/internal/subscriber"
	"github.com/finwire/pricefeed/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/pricefeed.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting pricefeed",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"addr", cfg.Server.Addr,
		"feed_url", cfg.Feed.URL,
		"channels", cfg.Feed.Channels,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	priceStore := store.New()

	registry := subscriber.NewRegistry(subscriber.Config{
		SendTimeout: cfg.Subscribers.SendTimeout,
	}, logger.With("component", "subscriber"))

	adapter := feed.NewAdapter(feed.Config{
		URL:              cfg.Feed.URL,
		Channels:         cfg.Feed.Channels,
		SymbolMap:        cfg.Feed.SymbolMap,
		HandshakeTimeout: cfg.Feed.HandshakeTimeout,
		WriteTimeout:     cfg.Feed.WriteTimeout,
	}, priceStore, registry, logger.With("component", "feed"))

	srv := server.New(server.Config{
		SendTimeout:    cfg.Subscribers.SendTimeout,
		MaxMessageSize: cfg.Subscribers.MaxMessageSize,
	}, priceStore, registry, adapter, logger.With("component", "server"))

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Ingestion. A fatal feed error does not bring the process down: the
	// store stays frozen at its last known values and lookups keep working.
	g.Go(func() error {
		err := adapter.Run(gctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("feed terminated, prices are frozen", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("pricefeed stopped")
}

// Command arbitraged runs the cross-venue futures arbitrage scanner: it
// loads a configuration document, connects a feed and an executor per
// configured venue, and serves a read-only status API alongside the
// trading loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arbitrage/internal/api"
	"arbitrage/internal/config"
	"arbitrage/internal/executor"
	"arbitrage/internal/feed"
	"arbitrage/internal/logging"
	"arbitrage/internal/scanner"
	"arbitrage/internal/security"
	"arbitrage/internal/store"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the configuration document")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	fillStore, err := openStore(cfg, log)
	if err != nil {
		log.Error("failed to open persistence store", logging.Err(err))
		os.Exit(1)
	}
	defer fillStore.Close()

	credStore := security.NewStore(cfg.Security.Passphrase)

	sc := scanner.New(scanner.Config{
		Symbols:            cfg.Symbols,
		MaxPosUsd:          cfg.MaxPosUsd,
		MinSpreadPercent:   cfg.MinSpreadPercent,
		RebalanceMinSpread: cfg.RebalanceMinSpread,
		CheckInterval:      time.Duration(cfg.CheckIntervalSec) * time.Second,
	}, fillStore, log)

	for _, vc := range cfg.Venues {
		f, err := buildFeed(vc, log)
		if err != nil {
			log.Error("failed to construct feed", logging.String("venue", vc.Name), logging.Err(err))
			os.Exit(1)
		}
		if err := f.Connect(); err != nil {
			log.Error("feed connect failed", logging.String("venue", vc.Name), logging.Err(err))
			os.Exit(1)
		}
		for _, symbol := range cfg.Symbols {
			if err := f.Subscribe(symbol); err != nil {
				log.Error("feed subscribe failed",
					logging.String("venue", vc.Name), logging.String("symbol", symbol), logging.Err(err))
				os.Exit(1)
			}
		}

		exec, err := buildExecutor(cfg.Mode, vc, credStore, cfg.FeesPercent)
		if err != nil {
			log.Error("failed to construct executor", logging.String("venue", vc.Name), logging.Err(err))
			os.Exit(1)
		}

		sc.RegisterVenue(vc.Name, f, exec)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sc.Run(ctx)

	router := api.NewRouter(sc, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("status API listening", logging.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("status API server failed", logging.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("status API shutdown error", logging.Err(err))
	}

	log.Info("shutdown complete")
}

// openStore opens the Postgres-backed fill store, or falls back to a
// no-op store when no database host is configured.
func openStore(cfg *config.Config, log logging.Sink) (store.FillStore, error) {
	if cfg.Database.Host == "" {
		log.Info("no database configured, persistence disabled")
		return store.NoopStore{}, nil
	}
	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Name,
		cfg.Database.User, cfg.Database.Password, cfg.Database.SSLMode,
	)
	pg, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	return pg, nil
}

// buildFeed constructs the venue's order book feed for its configured
// wire dialect.
func buildFeed(vc config.VenueConfig, log logging.Sink) (feed.Feed, error) {
	switch vc.Dialect {
	case "binance":
		return feed.NewBinanceStyleFeed(vc.Name, vc.BaseURL, log), nil
	case "bybit":
		return feed.NewBybitStyleFeed(vc.Name, vc.BaseURL, log), nil
	default:
		return nil, fmt.Errorf("unknown feed dialect %q for venue %q", vc.Dialect, vc.Name)
	}
}

// buildExecutor constructs the venue's trade executor per the process's
// run mode, decrypting venue credentials only when live trading is
// enabled.
func buildExecutor(mode string, vc config.VenueConfig, credStore *security.Store, feesPercent float64) (executor.TradeExecutor, error) {
	if mode != "live" {
		return executor.NewPaperExecutor(vc.Name, feesPercent), nil
	}

	cred, err := credStore.Resolve(vc.Name, vc.APIKeyCiphertext, vc.SecretCiphertext, vc.PassphraseCiphertext)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials for %s: %w", vc.Name, err)
	}

	return executor.NewLiveExecutor(vc.Name, vc.BaseURL, vc.OrderPath, cred, nil, vc.RequestsPerSecond, vc.Burst, feesPercent), nil
}

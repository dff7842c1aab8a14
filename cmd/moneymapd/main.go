package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"moneymap/internal/amqp"
	"moneymap/internal/config"
	apphttp "moneymap/internal/http"
	applog "moneymap/internal/log"
	"moneymap/internal/services"
	"moneymap/internal/storage"
)

var cli struct {
	EnvFile  string `help:"Path to an env file loaded before configuration." default:".env" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("moneymapd"),
		kong.Description("Personal finance service: budgets, ledger, monthly summaries."))

	// Missing env file is fine; configuration falls back to the process env.
	_ = godotenv.Load(cli.EnvFile)

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cli.LogLevel),
		Component: "moneymapd",
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		kctx.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open storage", "error", err, "path", cfg.SQLiteDBPath)
		kctx.Exit(1)
	}
	defer store.Close()

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Event publishing is advisory; the service runs without it.
			logger.Warn("AMQP unavailable, ledger events disabled", "error", err)
		} else {
			defer events.Close()
		}
	}

	if cfg.SeedOwnerID > 0 {
		if err := store.SeedDefaultCategories(context.Background(), cfg.SeedOwnerID); err != nil {
			logger.Error("Failed to seed default categories", "error", err, "user_id", cfg.SeedOwnerID)
			kctx.Exit(1)
		}
	}

	ledger := services.NewLedger(store, events)
	summary := services.NewSummary(store)
	srv := apphttp.NewServer(":"+cfg.Port, store, ledger, summary)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting moneymap server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paystack-bridge/internal/bootstrap"
	"paystack-bridge/internal/config"
	cronpkg "paystack-bridge/internal/cron"
	"paystack-bridge/internal/dedup"
	"paystack-bridge/internal/notify"
	"paystack-bridge/internal/payment"
	"paystack-bridge/internal/paystack"
	"paystack-bridge/internal/repository"
	"paystack-bridge/internal/router"
)

func main() {
	// --- Config ---
	cfg, cfgErr := config.Load()

	// --- Logger ---
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if hasArg("--bootstrap-db") {
		if err := runDBBootstrap(logger); err != nil {
			logger.Fatal("Database bootstrap failed", zap.Error(err))
		}
		logger.Info("Database bootstrap completed")
		return
	}

	if cfgErr != nil {
		logger.Fatal("Failed to load config", zap.Error(cfgErr))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db, cfg.Server.Env == "development"); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	orders := repository.NewOrderRepository(db)
	payments := repository.NewPaymentRepository(db)

	// --- Report Deduper (Redis with in-memory fallback) ---
	deduper, dedupeErr := dedup.New(cfg.Redis.Addr, cfg.Redis.Pass, cfg.Redis.DB, "paystack", 7*24*time.Hour)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for report dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Payment reports ---
	var reporter payment.Reporter = notify.Nop{}
	if cfg.Telegram.Token != "" && cfg.Telegram.ReportChat != "" {
		tr, err := notify.NewTelegramReporter(notify.TelegramOptions{
			Token:  cfg.Telegram.Token,
			Chat:   cfg.Telegram.ReportChat,
			APIURL: cfg.Telegram.APIURL,
		}, deduper, logger)
		if err != nil {
			logger.Warn("Telegram reports disabled", zap.Error(err))
		} else {
			reporter = tr
		}
	}

	// --- Paystack ---
	gateway := paystack.NewClient(paystack.Options{
		BaseURL: cfg.Paystack.BaseURL,
		Timeout: cfg.Paystack.Timeout,
		Retries: cfg.Paystack.Retries,
	})

	baseURL := strings.TrimRight(cfg.Server.BaseURL, "/")
	plugin := payment.NewPlugin(gateway, orders, payment.Settings{
		Credentials:    cfg.Paystack.Credentials(),
		VerifiedStatus: cfg.Order.VerifiedStatus,
		InvalidStatus:  cfg.Order.InvalidStatus,
		RedirectURL:    cfg.Paystack.RedirectURL,
		CallbackURL:    cfg.Paystack.CallbackURL,
		ThankYouURL: func(id uint64) string {
			return fmt.Sprintf("%s/orders/%d/thank-you", baseURL, id)
		},
		StrictReconcile: cfg.Paystack.StrictReconcile,
	}, logger, payment.WithAttemptLog(payments), payment.WithReporter(reporter))

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Routes ---
	router.Setup(e, router.Deps{
		Plugin:   plugin,
		Orders:   orders,
		Payments: payments,
		Logger:   logger,
		APIKey:   cfg.API.Key,
	})

	// --- Cron Scheduler ---
	scheduler := cronpkg.New(cfg.Reconcile, plugin, payments, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("Failed to start cron scheduler", zap.Error(err))
	}

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting paystack bridge", zap.String("addr", addr), zap.String("mode", string(cfg.Paystack.Mode)))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop cron
	ctx := scheduler.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg != nil && cfg.Server.Env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func runDBBootstrap(logger *zap.Logger) error {
	dbCfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg)
	if err != nil {
		return err
	}
	if err := bootstrap.MigrateAndSeed(db, hasArg("--seed-demo")); err != nil {
		return err
	}
	logger.Info("Schema migration completed")
	return nil
}

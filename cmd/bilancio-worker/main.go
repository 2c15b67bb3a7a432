package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	"bilancio/internal/export"
	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/store/sqlite"
	"bilancio/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     log.DefaultConfig().Level,
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	logger.Info("starting bilancio-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	// The worker reads the same database the API writes.
	st, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open sqlite store", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer st.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Sheets export is optional.
	var exporter worker.SummaryExporter
	if cfg.SheetsSpreadsheetID != "" {
		sheets, err := export.NewSheetsExporter(context.Background(), export.Config{
			SpreadsheetID:   cfg.SheetsSpreadsheetID,
			SheetName:       cfg.SheetsSheetName,
			CredentialsFile: cfg.SheetsCredentialsFile,
			CredentialsJSON: cfg.SheetsCredentialsJSON,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize sheets exporter", log.FieldError, err)
			os.Exit(1)
		}
		exporter = sheets
		logger.Info("sheets export enabled",
			"spreadsheet_id", cfg.SheetsSpreadsheetID, "sheet", cfg.SheetsSheetName)
	} else {
		logger.Info("sheets export disabled, no spreadsheet ID provided")
	}

	analyticsSvc := services.NewAnalyticsService(st, cfg.AnalyticsCacheSize, cfg.AnalyticsCacheTTL, logger)
	eventWorker := worker.NewEventWorker(st, analyticsSvc, exporter, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		handler := func(msg *amqp.BudgetEventMessage) error {
			return eventWorker.HandleEvent(ctx, msg)
		}
		if err := amqpClient.ConsumeEvents(ctx, handler); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("event consumption failed", log.FieldError, err)
			}
			cancel()
		}
	}()

	if exporter != nil {
		go eventWorker.RunPeriodicExport(ctx, cfg.ExportInterval)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	cancel()
	logger.Info("shutting down worker")
	time.Sleep(2 * time.Second)
	logger.Info("worker shutdown complete")
}

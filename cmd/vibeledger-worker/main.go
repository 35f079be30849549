package main

import (
	"context"
	"errors"
	"os"

	"vibeledger/internal/amqp"
	"vibeledger/internal/cli"
	"vibeledger/internal/export"
	"vibeledger/internal/log"
	"vibeledger/internal/storage"
	"vibeledger/internal/worker"
)

func main() {
	cfg, logger := cli.Setup(log.ComponentWorker)

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
		os.Exit(1)
	}

	// The worker reads the same SQLite database the server writes.
	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("failed to open sqlite store", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	sheets, err := export.NewSheetsClient(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("failed to initialize sheets client", log.FieldError, err)
		os.Exit(1)
	}

	var broker *amqp.Client
	if cfg.AMQPURL != "" {
		broker, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("broker unavailable, relying on the pending scan only", log.FieldError, err)
			broker = nil
		} else {
			defer broker.Close()
		}
	}

	w := worker.NewExportWorker(store, sheets, cfg.ExportBatchSize, cfg.ExportInterval, logger)

	logger.Info("export worker started",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"batch_size", cfg.ExportBatchSize,
		"interval", cfg.ExportInterval.String(),
		"broker", broker != nil,
	)

	if err := w.Run(ctx, broker); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("export worker stopped")
}

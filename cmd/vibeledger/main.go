package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"vibeledger/internal/amqp"
	"vibeledger/internal/auth"
	"vibeledger/internal/backend"
	"vibeledger/internal/cli"
	apphttp "vibeledger/internal/http"
	"vibeledger/internal/intake"
	"vibeledger/internal/ledger"
	"vibeledger/internal/log"
	syncpkg "vibeledger/internal/sync"
)

func main() {
	cfg, logger := cli.Setup(log.ComponentApp)

	store, cleanup, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("failed to open data backend", log.FieldError, err)
		os.Exit(1)
	}
	defer cleanup()

	// Broker is optional: without it the in-process hub still serves
	// same-instance live updates.
	var broker *amqp.Client
	if cfg.AMQPURL != "" {
		broker, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("broker unavailable, continuing without it", log.FieldError, err)
			broker = nil
		} else {
			defer broker.Close()
		}
	}

	hub := syncpkg.NewHub()
	authSvc := auth.NewService(store, cfg.JWTSecret, time.Duration(cfg.SessionHours)*time.Hour, logger)

	var publisher ledger.Publisher
	if broker != nil {
		publisher = broker
	}
	ledgerSvc := ledger.NewService(store, publisher, hub, logger)

	opts := apphttp.Options{IntakeTimeout: cfg.IntakeTimeout}
	if cfg.OpenAIAPIKey != "" {
		opts.Voice = intake.NewTranscriber(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.WhisperModel, logger)
		opts.Receipt = intake.NewReceiptReader(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ExtractModel, logger)
	} else {
		logger.Info("no OpenAI key configured, voice and receipt entry disabled")
	}

	srv := apphttp.NewServer(":"+cfg.Port, authSvc, ledgerSvc, hub, logger, opts)

	ctx, stop := cli.SignalContext()
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if broker != nil {
		g.Go(func() error {
			// Change events from other instances feed the same hub.
			err := hub.Run(gctx, broker)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// Package main wires together the newsbrief digest service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"newsbrief/internal/app"
	"newsbrief/internal/config"
	"newsbrief/internal/logging"
	"newsbrief/internal/ops"
	"newsbrief/internal/pipeline"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}
	defer a.Close()

	opsServer := ops.NewServer(cfg.Ops.Port, logger)
	go func() {
		if err := opsServer.Start(); err != nil {
			logger.Warn("ops server stopped", zap.Error(err))
		}
	}()
	defer func() {
		if err := opsServer.Shutdown(context.Background()); err != nil {
			logger.Warn("ops server shutdown failed", zap.Error(err))
		}
	}()

	rec, err := a.Pipeline().Run(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoCandidates) {
			logger.Info("nothing new to digest")
			return nil
		}
		return err
	}

	logger.Info("digest published",
		zap.String("run_id", rec.ID),
		zap.String("message_type", rec.MessageType),
		zap.Int("sources", len(rec.SourceURLs)),
	)
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"newsbrief/internal/app"
	"newsbrief/internal/config"
	"newsbrief/internal/logging"
	"newsbrief/internal/pipeline"
)

// newAppFactory builds the application services. It is a variable so tests
// can substitute a factory without touching real backends.
var newAppFactory = app.New

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one digest run and exit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newAppFactory(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			defer a.Close()

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
				zap.Int("sources", len(rec.SourceURLs)),
			)
			return nil
		},
	}
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"seismicview/adapters/render"
	"seismicview/app"
	"seismicview/internal/analysis"
	"seismicview/internal/config"
	"seismicview/internal/dataset"
	"seismicview/internal/logging"
	"seismicview/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to read .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	analyses := app.NewAnalysisService(
		dataset.NewLocalFileStorageWithPath(cfg.Paths.UploadDir),
		dataset.NewLocalFileStorageWithPath(cfg.Paths.OutputDir),
		analysis.NewAnalyzer(logger),
		render.New(render.DefaultConfig(), logger),
		app.ServiceConfig{
			MaxConcurrent:   cfg.Analysis.MaxConcurrent,
			ArtifactTTL:     cfg.Upload.ArtifactTTL,
			JanitorInterval: cfg.Upload.JanitorInterval,
		},
		logger,
	)

	server, err := ui.NewServer(cfg, ui.Dependencies{Analyses: analyses, Logger: logger})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/chaptersplit/internal/api"
	"github.com/dgallion1/chaptersplit/internal/config"
	"github.com/dgallion1/chaptersplit/internal/parser"
	"github.com/dgallion1/chaptersplit/internal/pipeline"
	"github.com/dgallion1/chaptersplit/internal/stats"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := stats.NewRecorder(cfg.StatsWindow)
	splitter := pipeline.NewSplitter(log, rec, parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext})

	records := pipeline.NewRegistry(cfg.RecordTTL)
	go records.Run(ctx, 5*time.Minute)

	srv := api.NewServer(splitter, records, rec, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown incomplete, interrupting splits", "error", err)
		}
		cancel()
	}()

	log.Info("starting chaptersplit",
		"port", cfg.Port,
		"upload_dir", cfg.UploadDir,
		"output_root", cfg.OutputRoot,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-stopped
}

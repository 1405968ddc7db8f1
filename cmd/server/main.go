package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/legalscan/internal/analysis"
	"github.com/dgallion1/legalscan/internal/api"
	"github.com/dgallion1/legalscan/internal/config"
	"github.com/dgallion1/legalscan/internal/llm"
	"github.com/dgallion1/legalscan/internal/parser"
	"github.com/dgallion1/legalscan/internal/pipeline"
	"github.com/dgallion1/legalscan/internal/query"
	"github.com/dgallion1/legalscan/internal/sections"
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

	// Initialize clients.
	provider, err := llm.NewProvider(ctx, cfg.LLMOptions())
	if err != nil {
		log.Error("init llm provider", "error", err)
		os.Exit(1)
	}
	querier := query.New(provider,
		query.WithMaxRetries(cfg.MaxRetries),
		query.WithBackoffUnit(cfg.BackoffUnit),
		query.WithRetryable(query.AnyOf(query.QuotaMessage, llm.IsRateLimited)),
		query.WithLogger(log),
	)

	locator, err := sections.NewLocatorFromFile(cfg.SectionsFile)
	if err != nil {
		log.Error("load sections", "path", cfg.SectionsFile, "error", err)
		os.Exit(1)
	}
	analyzer := analysis.New(locator, querier, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(pipeline.Options{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
		Parser:       parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
	}, analyzer, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, provider, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		provider.Close()
	}()

	log.Info("starting legalscan",
		"port", cfg.Port,
		"provider", provider.Name(),
		"model", provider.Model(),
		"sections", len(locator.Specs()),
		"workers", cfg.WorkerCount,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

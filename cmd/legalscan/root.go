package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/legalscan/internal/analysis"
	"github.com/dgallion1/legalscan/internal/config"
	"github.com/dgallion1/legalscan/internal/doctree"
	"github.com/dgallion1/legalscan/internal/llm"
	"github.com/dgallion1/legalscan/internal/parser"
	"github.com/dgallion1/legalscan/internal/query"
	"github.com/dgallion1/legalscan/internal/sections"
)

var (
	sectionsFile string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "legalscan",
	Short: "Analyze legal documents with a language model",
	Long: `legalscan locates key clauses in a PDF contract by keyword and asks a
language model for metadata, risks and per-clause summaries, obligations and
dates. Provider settings come from the environment (LLM_PROVIDER,
GEMINI_API_KEY, ANTHROPIC_API_KEY, MAX_RETRIES, BACKOFF_UNIT).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sectionsFile, "sections", "", "YAML section table (default: built-in, or SECTIONS_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log retries and progress to stderr")
}

func newLogger() *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadLocator(cfg config.Config) (*sections.Locator, error) {
	path := sectionsFile
	if path == "" {
		path = cfg.SectionsFile
	}
	return sections.NewLocatorFromFile(path)
}

// readDocument extracts the text of a PDF on disk.
var readDocument = func(path string, cfg config.Config) (*doctree.DocTree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := parser.ForFile(path, parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext})
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(bytes.NewReader(data), path)
	if err != nil {
		return nil, err
	}
	if tree.IsBlank() {
		return nil, fmt.Errorf("%s: no extractable text", path)
	}
	return tree, nil
}

// newQuerier builds the retrying model client. The returned func releases
// the provider.
var newQuerier = func(ctx context.Context, cfg config.Config, log *slog.Logger) (analysis.Querier, func(), error) {
	if err := cfg.ValidateProvider(); err != nil {
		return nil, nil, err
	}
	provider, err := llm.NewProvider(ctx, cfg.LLMOptions())
	if err != nil {
		return nil, nil, err
	}
	q := query.New(provider,
		query.WithMaxRetries(cfg.MaxRetries),
		query.WithBackoffUnit(cfg.BackoffUnit),
		query.WithRetryable(query.AnyOf(query.QuotaMessage, llm.IsRateLimited)),
		query.WithLogger(log),
	)
	return q, func() { provider.Close() }, nil
}

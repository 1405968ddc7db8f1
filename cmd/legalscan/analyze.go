package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/legalscan/internal/analysis"
	"github.com/dgallion1/legalscan/internal/config"
	"github.com/dgallion1/legalscan/internal/report"
)

var (
	analyzeFormat     string
	analyzeMaxRetries int
	analyzeTitle      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.pdf>",
	Short: "Analyze a PDF contract",
	Long: `Extracts the text of a PDF, locates the configured sections and queries
the model for document metadata, risks, and a summary, obligations and dates
for every located section. A failed query is reported in place and never stops
the rest.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "md", "output format: md, json or html")
	analyzeCmd.Flags().IntVar(&analyzeMaxRetries, "max-retries", 0, "attempts per query (default: MAX_RETRIES or 3)")
	analyzeCmd.Flags().StringVar(&analyzeTitle, "title", "", "report title (default: file name)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	switch analyzeFormat {
	case "md", "json", "html":
	default:
		return fmt.Errorf("unknown format %q: want md, json or html", analyzeFormat)
	}

	cfg := config.Load()
	if analyzeMaxRetries > 0 {
		cfg.MaxRetries = analyzeMaxRetries
	}
	log := newLogger()

	locator, err := loadLocator(cfg)
	if err != nil {
		return err
	}
	tree, err := readDocument(path, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	querier, closeFn, err := newQuerier(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	a := analysis.New(locator, querier, log).Analyze(ctx, tree.Text(), func(s analysis.Step) {
		label := s.Kind
		if s.Section != "" {
			label = s.Section + " " + s.Kind
		}
		status := "ok"
		if !s.Result.OK() {
			status = string(s.Result.Failure.Kind)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s: %s\n", s.Done, s.Total, label, status)
	})

	title := analyzeTitle
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	out := cmd.OutOrStdout()
	switch analyzeFormat {
	case "json":
		data, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal analysis: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "html":
		if err := report.WriteHTML(out, title, a); err != nil {
			return err
		}
	default:
		fmt.Fprint(out, report.Markdown(title, a))
	}

	if a.Failed() == a.Total() {
		return fmt.Errorf("all %d queries failed", a.Total())
	}
	return nil
}

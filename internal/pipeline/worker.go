package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/legalscan/internal/analysis"
	"github.com/dgallion1/legalscan/internal/parser"
)

// Worker processes a single document job. All queries for one document run
// sequentially on the worker's goroutine.
type Worker struct {
	analyzer  *analysis.Analyzer
	parserFor func(filename string) (parser.Parser, error)
	log       *slog.Logger
}

func NewWorker(analyzer *analysis.Analyzer, parserOpt parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		analyzer: analyzer,
		parserFor: func(filename string) (parser.Parser, error) {
			return parser.ForFile(filename, parserOpt)
		},
		log: log,
	}
}

// Process runs the full analysis pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := w.parserFor(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	tree, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	job.releaseFileData()
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetExtracted(tree.PageCount(), tree.EstimatedTokens())
	if tree.IsBlank() {
		log.Warn("no extractable text", "pages", tree.PageCount())
		job.AddError("no extractable text (scanned or image-only PDF?)")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	text := tree.Text()
	job.SetContentHash(ContentHashHex([]byte(text)))

	// Phase 2: Locate sections
	job.SetStatus(StatusLocating, "locating")
	found := w.analyzer.Locator().Locate(text)
	job.SetSections(found.Names(), 2+3*len(found))
	log.Info("located sections",
		"pages", tree.PageCount(),
		"estimated_tokens", tree.EstimatedTokens(),
		"sections", found.Names(),
	)

	// Phase 3: Query the model
	job.SetStatus(StatusAnalyzing, "analyzing")
	result := w.analyzer.AnalyzeSections(ctx, text, found, func(s analysis.Step) {
		job.RecordQuery(s.Result.OK())
		if !s.Result.OK() {
			label := s.Kind
			if s.Section != "" {
				label = s.Section + "/" + s.Kind
			}
			job.AddError(fmt.Sprintf("%s: %s", label, s.Result.Failure))
		}
	})
	job.SetResult(result)

	failed := result.Failed()
	switch {
	case failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case failed == result.Total():
		job.SetStatus(StatusFailed, "analyzing")
	default:
		job.SetStatus(StatusPartial, "done")
	}
	log.Info("job finished", "queries", result.Total(), "failed", failed)
}

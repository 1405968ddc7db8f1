// Package analysis runs the per-document query plan: document metadata and
// risks, then a summary, obligations and dates for every located clause.
package analysis

import (
	"context"
	"log/slog"

	"github.com/dgallion1/legalscan/internal/query"
	"github.com/dgallion1/legalscan/internal/sections"
)

// Querier answers one instruction over one piece of content.
type Querier interface {
	Query(ctx context.Context, instruction, content string) query.Result
}

// ClauseAnalysis holds the model's answers for one located section.
type ClauseAnalysis struct {
	Section     string       `json:"section"`
	Title       string       `json:"title"`
	Text        string       `json:"text"`
	Summary     query.Result `json:"summary"`
	Obligations query.Result `json:"obligations"`
	Dates       query.Result `json:"dates"`
}

// Analysis is the full result for one document. Each result succeeds or
// fails on its own.
type Analysis struct {
	Metadata query.Result     `json:"metadata"`
	Risks    query.Result     `json:"risks"`
	Clauses  []ClauseAnalysis `json:"key_clauses"`
}

// Total returns the number of queries behind the analysis.
func (a *Analysis) Total() int {
	return 2 + 3*len(a.Clauses)
}

// Failed returns the number of failed queries.
func (a *Analysis) Failed() int {
	n := 0
	a.each(func(r query.Result) {
		if !r.OK() {
			n++
		}
	})
	return n
}

func (a *Analysis) each(fn func(query.Result)) {
	fn(a.Metadata)
	fn(a.Risks)
	for _, c := range a.Clauses {
		fn(c.Summary)
		fn(c.Obligations)
		fn(c.Dates)
	}
}

// Step describes one finished query.
type Step struct {
	Kind    string
	Section string // empty for document-level queries
	Done    int
	Total   int
	Result  query.Result
}

// StepFunc observes progress. It is called on the analyzing goroutine.
type StepFunc func(Step)

// Analyzer locates sections and queries the model about them.
type Analyzer struct {
	locator *sections.Locator
	querier Querier
	log     *slog.Logger
}

func New(locator *sections.Locator, querier Querier, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{locator: locator, querier: querier, log: log}
}

// Locator returns the section locator in use.
func (a *Analyzer) Locator() *sections.Locator {
	return a.locator
}

// Analyze runs every query one after another. A failed query never stops
// the rest.
func (a *Analyzer) Analyze(ctx context.Context, text string, onStep StepFunc) *Analysis {
	found := a.locator.Locate(text)
	return a.AnalyzeSections(ctx, text, found, onStep)
}

// AnalyzeSections is Analyze with sections already located.
func (a *Analyzer) AnalyzeSections(ctx context.Context, text string, found sections.Sections, onStep StepFunc) *Analysis {
	total := 2 + 3*len(found)
	done := 0
	run := func(kind, section, instruction, content string) query.Result {
		res := a.querier.Query(ctx, instruction, content)
		done++
		if !res.OK() {
			a.log.Warn("query failed", "kind", kind, "section", section, "failure", res.Failure.Kind, "error", res.Failure.Message)
		}
		if onStep != nil {
			onStep(Step{Kind: kind, Section: section, Done: done, Total: total, Result: res})
		}
		return res
	}

	out := &Analysis{Clauses: make([]ClauseAnalysis, 0, len(found))}
	out.Metadata = run(KindMetadata, "", MetadataPrompt, text)
	out.Risks = run(KindRisks, "", RisksPrompt, text)

	for _, sec := range found {
		out.Clauses = append(out.Clauses, ClauseAnalysis{
			Section:     sec.Name,
			Title:       sec.Title,
			Text:        sec.Text,
			Summary:     run(KindSummary, sec.Name, SummaryPrompt(sec.Name), sec.Text),
			Obligations: run(KindObligations, sec.Name, ObligationsPrompt, sec.Text),
			Dates:       run(KindDates, sec.Name, DatesPrompt, sec.Text),
		})
	}

	a.log.Info("analysis complete", "sections", len(found), "queries", total, "failed", out.Failed())
	return out
}

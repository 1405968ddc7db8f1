package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/legalscan/internal/analysis"
	"github.com/dgallion1/legalscan/internal/query"
)

func ok(text string) query.Result {
	return query.Result{Text: text, Attempts: 1}
}

func failed(kind query.FailureKind, msg string) query.Result {
	return query.Result{Failure: &query.Failure{Kind: kind, Message: msg}, Attempts: 3}
}

func sample() *analysis.Analysis {
	return &analysis.Analysis{
		Metadata: ok("```json\n{\"document_type\": \"NDA\"}\n```"),
		Risks:    failed(query.FailureExhausted, "maximum retries exceeded (3 attempts): quota"),
		Clauses: []analysis.ClauseAnalysis{{
			Section:     "termination",
			Title:       "Termination",
			Text:        "Termination requires <30> days notice.",
			Summary:     ok("- **Notice** of 30 days\n- Either party"),
			Obligations: failed(query.FailureTerminal, "401 <unauthorized>"),
			Dates:       ok("None found."),
		}},
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown("lease", sample())

	assert.True(t, strings.HasPrefix(out, "# lease\n"))
	assert.Contains(t, out, "## Document Metadata")
	assert.Contains(t, out, "### Termination")
	assert.Contains(t, out, "- **Notice** of 30 days")
	assert.Contains(t, out, "> **Error (terminal):** 401 <unauthorized>")
	assert.Contains(t, out, "> **Error (retries_exhausted):**")

	// Risks are rendered last.
	assert.Greater(t, strings.Index(out, "## Identified Risks"), strings.Index(out, "## Key Clauses"))
}

func TestMarkdown_NoClauses(t *testing.T) {
	out := Markdown("empty", &analysis.Analysis{Metadata: ok("{}"), Risks: ok("- none")})
	assert.Contains(t, out, "_No key clauses found._")
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "lease", sample()))
	out := buf.String()

	assert.Contains(t, out, "<title>lease - Legal Document Analysis</title>")
	assert.Contains(t, out, "<strong>Notice</strong>")
	assert.Contains(t, out, "<li>")
	assert.Contains(t, out, "2 of 5 queries failed.")
	// Failure messages and clause text are escaped.
	assert.Contains(t, out, "401 &lt;unauthorized&gt;")
	assert.Contains(t, out, "Termination requires &lt;30&gt; days notice.")
	assert.NotContains(t, out, "<unauthorized>")
}

func TestWriteHTML_DropsRawHTMLFromModel(t *testing.T) {
	a := &analysis.Analysis{
		Metadata: ok("<script>alert(1)</script>\n\nplain"),
		Risks:    ok("- none"),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "x", a))
	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "No key clauses found.")
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/legalscan/internal/analysis"
	"github.com/dgallion1/legalscan/internal/config"
	"github.com/dgallion1/legalscan/internal/doctree"
	"github.com/dgallion1/legalscan/internal/query"
	"github.com/dgallion1/legalscan/internal/sections"
)

const contractText = "This Agreement is made between Acme and Beta.\n\n" +
	"Termination: either party may end this agreement on 30 days notice.\n\n" +
	"Signed."

type stubQuerier struct {
	fail bool
}

func (q stubQuerier) Query(ctx context.Context, instruction, content string) query.Result {
	if q.fail {
		return query.Result{Failure: &query.Failure{Kind: query.FailureTerminal, Message: "bad request"}, Attempts: 1}
	}
	return query.Result{Text: "- answer", Attempts: 1}
}

// stubDeps replaces document reading and the model client for one test.
func stubDeps(t *testing.T, text string, q analysis.Querier) *config.Config {
	t.Helper()
	var seen config.Config

	origRead, origQuerier := readDocument, newQuerier
	readDocument = func(path string, cfg config.Config) (*doctree.DocTree, error) {
		return &doctree.DocTree{Children: []*doctree.DocNode{{Text: text, Page: 1}}}, nil
	}
	newQuerier = func(ctx context.Context, cfg config.Config, log *slog.Logger) (analysis.Querier, func(), error) {
		seen = cfg
		return q, func() {}, nil
	}
	t.Cleanup(func() {
		readDocument, newQuerier = origRead, origQuerier
	})
	return &seen
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		analyzeFormat, analyzeMaxRetries, analyzeTitle = "md", 0, ""
		sectionsJSON, sectionsFile, verbose = false, "", false
	})
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestAnalyzeCmd_Use(t *testing.T) {
	assert.Equal(t, "analyze <file.pdf>", analyzeCmd.Use)
}

func TestAnalyzeCmd_HasFlags(t *testing.T) {
	format := analyzeCmd.Flags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "f", format.Shorthand)
	assert.Equal(t, "md", format.DefValue)

	retries := analyzeCmd.Flags().Lookup("max-retries")
	require.NotNil(t, retries)
	assert.Equal(t, "0", retries.DefValue)

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("sections"))
}

func TestAnalyzeCmd_RequiresExactlyOneArg(t *testing.T) {
	_, _, err := execute(t, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAnalyzeCmd_Markdown(t *testing.T) {
	stubDeps(t, contractText, stubQuerier{})

	out, progress, err := execute(t, "analyze", "contract.pdf")
	require.NoError(t, err)

	assert.Contains(t, out, "# contract\n")
	assert.Contains(t, out, "## Document Metadata")
	assert.Contains(t, out, "### Parties")
	assert.Contains(t, out, "### Termination")
	assert.Contains(t, out, "## Identified Risks")
	assert.Contains(t, progress, "[1/8] metadata: ok")
	assert.Contains(t, progress, "[8/8] termination dates: ok")
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	stubDeps(t, contractText, stubQuerier{})

	out, _, err := execute(t, "analyze", "contract.pdf", "--format", "json")
	require.NoError(t, err)

	var a analysis.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "- answer", a.Metadata.Text)
	require.Len(t, a.Clauses, 2)
	assert.Equal(t, "parties", a.Clauses[0].Section)
	assert.Equal(t, "termination", a.Clauses[1].Section)
}

func TestAnalyzeCmd_HTML(t *testing.T) {
	stubDeps(t, contractText, stubQuerier{})

	out, _, err := execute(t, "analyze", "contract.pdf", "-f", "html", "--title", "Master Services")
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<h1>Master Services</h1>")
}

func TestAnalyzeCmd_MaxRetriesOverridesConfig(t *testing.T) {
	seen := stubDeps(t, contractText, stubQuerier{})

	_, _, err := execute(t, "analyze", "contract.pdf", "--max-retries", "5")
	require.NoError(t, err)
	assert.Equal(t, 5, seen.MaxRetries)
}

func TestAnalyzeCmd_UnknownFormat(t *testing.T) {
	stubDeps(t, contractText, stubQuerier{})

	_, _, err := execute(t, "analyze", "contract.pdf", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestAnalyzeCmd_AllQueriesFailed(t *testing.T) {
	stubDeps(t, "Nothing recognisable.", stubQuerier{fail: true})

	out, _, err := execute(t, "analyze", "memo.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 queries failed")
	assert.Contains(t, out, "> **Error (terminal):** bad request")
}

func TestAnalyzeCmd_ReadError(t *testing.T) {
	stubDeps(t, contractText, stubQuerier{})
	readDocument = func(string, config.Config) (*doctree.DocTree, error) {
		return nil, errors.New("open missing.pdf: no such file or directory")
	}

	_, _, err := execute(t, "analyze", "missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file")
}

func TestSectionsCmd_Text(t *testing.T) {
	stubDeps(t, contractText, stubQuerier{})

	out, _, err := execute(t, "sections", "contract.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "== Parties (\"between\" at 23) ==")
	assert.Contains(t, out, "between Acme and Beta.")
	assert.Contains(t, out, "== Termination")
}

func TestSectionsCmd_NoneFound(t *testing.T) {
	stubDeps(t, "Meeting notes.", stubQuerier{})

	out, _, err := execute(t, "sections", "notes.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "No sections found.")
}

func TestSectionsCmd_CustomTable(t *testing.T) {
	stubDeps(t, "Article 4. Warranty: goods are fit for purpose.\n\nEnd.", stubQuerier{})

	path := filepath.Join(t.TempDir(), "sections.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sections:\n  - name: warranty\n    keywords: [warranty]\n"), 0o644))

	out, _, err := execute(t, "sections", "contract.pdf", "--sections", path, "--json")
	require.NoError(t, err)

	var found sections.Sections
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "warranty", found[0].Name)
	assert.Equal(t, "Warranty: goods are fit for purpose.", found[0].Text)
}

func TestSectionsCmd_BadTable(t *testing.T) {
	stubDeps(t, contractText, stubQuerier{})

	_, _, err := execute(t, "sections", "contract.pdf", "--sections", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read sections file")
}

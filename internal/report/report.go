// Package report renders an analysis as markdown or as a standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/legalscan/internal/analysis"
	"github.com/dgallion1/legalscan/internal/query"
)

// Markdown renders a as a markdown document.
func Markdown(title string, a *analysis.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	sb.WriteString("## Document Metadata\n\n")
	writeResult(&sb, a.Metadata)

	sb.WriteString("## Key Clauses\n\n")
	if len(a.Clauses) == 0 {
		sb.WriteString("_No key clauses found._\n\n")
	}
	for _, c := range a.Clauses {
		fmt.Fprintf(&sb, "### %s\n\n", c.Title)
		sb.WriteString("**Summary:**\n\n")
		writeResult(&sb, c.Summary)
		sb.WriteString("**Obligations:**\n\n")
		writeResult(&sb, c.Obligations)
		sb.WriteString("**Key Dates:**\n\n")
		writeResult(&sb, c.Dates)
	}

	sb.WriteString("## Identified Risks\n\n")
	writeResult(&sb, a.Risks)
	return sb.String()
}

func writeResult(sb *strings.Builder, r query.Result) {
	if r.OK() {
		sb.WriteString(strings.TrimSpace(r.Text))
		sb.WriteString("\n\n")
		return
	}
	fmt.Fprintf(sb, "> **Error (%s):** %s\n\n", r.Failure.Kind, oneLine(r.Failure.Message))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tables and strikethrough show up in model answers; raw HTML is dropped.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

type block struct {
	OK    bool
	Kind  string
	Error string
	HTML  template.HTML
}

type clauseView struct {
	Title       string
	Text        string
	Summary     block
	Obligations block
	Dates       block
}

type pageView struct {
	Title    string
	Metadata block
	Risks    block
	Clauses  []clauseView
	Failed   int
	Total    int
}

func toBlock(r query.Result) (block, error) {
	if !r.OK() {
		return block{Kind: string(r.Failure.Kind), Error: r.Failure.Message}, nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(r.Text), &buf); err != nil {
		return block{}, fmt.Errorf("render markdown: %w", err)
	}
	// goldmark escapes text and omits raw HTML unless WithUnsafe is set.
	return block{OK: true, HTML: template.HTML(buf.String())}, nil
}

// WriteHTML renders a as an HTML page.
func WriteHTML(w io.Writer, title string, a *analysis.Analysis) error {
	view := pageView{Title: title, Failed: a.Failed(), Total: a.Total()}
	var err error
	if view.Metadata, err = toBlock(a.Metadata); err != nil {
		return err
	}
	if view.Risks, err = toBlock(a.Risks); err != nil {
		return err
	}
	for _, c := range a.Clauses {
		cv := clauseView{Title: c.Title, Text: c.Text}
		if cv.Summary, err = toBlock(c.Summary); err != nil {
			return err
		}
		if cv.Obligations, err = toBlock(c.Obligations); err != nil {
			return err
		}
		if cv.Dates, err = toBlock(c.Dates); err != nil {
			return err
		}
		view.Clauses = append(view.Clauses, cv)
	}
	return pageTmpl.Execute(w, view)
}

var pageTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - Legal Document Analysis</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
section { border: 1px solid #ddd; border-radius: 6px; padding: 0 1rem 1rem; margin-bottom: 1.5rem; }
.error { background: #fdecea; color: #8a1c13; padding: .5rem .75rem; border-radius: 4px; }
blockquote { color: #555; border-left: 3px solid #ccc; margin: 0; padding-left: 1rem; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Failed}}<p class="error">{{.Failed}} of {{.Total}} queries failed.</p>{{end}}
{{define "block"}}{{if .OK}}{{.HTML}}{{else}}<p class="error">API Error ({{.Kind}}): {{.Error}}</p>{{end}}{{end}}
<section>
<h2>Document Metadata</h2>
{{template "block" .Metadata}}
</section>
<section>
<h2>Key Clauses</h2>
{{range .Clauses}}
<h3>{{.Title}}</h3>
<blockquote>{{.Text}}</blockquote>
<h4>Summary</h4>
{{template "block" .Summary}}
<h4>Obligations</h4>
{{template "block" .Obligations}}
<h4>Key Dates</h4>
{{template "block" .Dates}}
<hr>
{{else}}
<p>No key clauses found.</p>
{{end}}
</section>
<section>
<h2>Identified Risks</h2>
{{template "block" .Risks}}
</section>
</body>
</html>
`))

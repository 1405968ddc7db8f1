package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // One node per page, in page order
}

// DocNode is one page of extracted text.
type DocNode struct {
	Title string // e.g. "Page 3"
	Text  string // Extracted text, untrimmed
	Page  int    // 1-based page number
}

// Text returns the page texts joined by a single newline.
func (t *DocTree) Text() string {
	parts := make([]string, len(t.Children))
	for i, n := range t.Children {
		parts[i] = n.Text
	}
	return strings.Join(parts, "\n")
}

// PageCount returns the number of pages with extracted text.
func (t *DocTree) PageCount() int {
	return len(t.Children)
}

// IsBlank reports whether no page produced any non-whitespace text.
func (t *DocTree) IsBlank() bool {
	for _, n := range t.Children {
		if strings.TrimSpace(n.Text) != "" {
			return false
		}
	}
	return true
}

// EstimatedTokens gives a rough prompt size for the full text, at about
// 1.33 tokens per word.
func (t *DocTree) EstimatedTokens() int {
	words := 0
	for _, n := range t.Children {
		words += len(strings.Fields(n.Text))
	}
	if words == 0 {
		return 0
	}
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// Package sections finds clause text in a legal document by keyword.
//
// Matching is a heuristic: a section starts at the earliest case-insensitive
// occurrence of any of its keywords and runs to the next blank line.
package sections

import (
	"regexp"
	"strings"
	"unicode"
)

// ExtractedSection is the text judged to belong to one section.
type ExtractedSection struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Keyword string `json:"keyword"` // matched text, as it appears in the source
	Text    string `json:"text"`
	Start   int    `json:"start"` // byte offsets into the source text
	End     int    `json:"end"`
}

// Sections holds located sections in table order.
type Sections []ExtractedSection

// Get returns the section with the given name.
func (s Sections) Get(name string) (ExtractedSection, bool) {
	for _, sec := range s {
		if sec.Name == name {
			return sec, true
		}
	}
	return ExtractedSection{}, false
}

// Names returns section names in order.
func (s Sections) Names() []string {
	names := make([]string, len(s))
	for i, sec := range s {
		names[i] = sec.Name
	}
	return names
}

// A blank line: newline, optional horizontal whitespace, newline.
var paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)

type compiledSpec struct {
	spec SectionSpec
	re   *regexp.Regexp
}

// Locator searches text for a fixed table of sections. It is safe for
// concurrent use.
type Locator struct {
	specs []compiledSpec
}

// NewLocator compiles a section table.
func NewLocator(specs []SectionSpec) (*Locator, error) {
	if err := Validate(specs); err != nil {
		return nil, err
	}
	l := &Locator{specs: make([]compiledSpec, 0, len(specs))}
	for _, s := range specs {
		alts := make([]string, len(s.Keywords))
		for i, kw := range s.Keywords {
			alts[i] = regexp.QuoteMeta(kw)
		}
		// Leftmost match wins, so the earliest keyword occurrence is used
		// regardless of its position in the list.
		re, err := regexp.Compile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
		if err != nil {
			return nil, err
		}
		l.specs = append(l.specs, compiledSpec{spec: s, re: re})
	}
	return l, nil
}

// MustDefault returns a Locator over DefaultSpecs.
func MustDefault() *Locator {
	l, err := NewLocator(DefaultSpecs())
	if err != nil {
		panic(err)
	}
	return l
}

// Specs returns a copy of the configured table.
func (l *Locator) Specs() []SectionSpec {
	out := make([]SectionSpec, len(l.specs))
	for i, cs := range l.specs {
		out[i] = cs.spec
	}
	return out
}

// Locate returns every section whose keyword appears in text. Sections are
// searched independently and may overlap.
func (l *Locator) Locate(text string) Sections {
	var out Sections
	if text == "" {
		return out
	}
	for _, cs := range l.specs {
		if sec, ok := locateOne(cs, text); ok {
			out = append(out, sec)
		}
	}
	return out
}

func locateOne(cs compiledSpec, text string) (ExtractedSection, bool) {
	loc := cs.re.FindStringIndex(text)
	if loc == nil {
		return ExtractedSection{}, false
	}
	start, kwEnd := loc[0], loc[1]

	end := len(text)
	if br := paragraphBreak.FindStringIndex(text[kwEnd:]); br != nil {
		end = kwEnd + br[0]
	}
	body := strings.TrimRightFunc(text[start:end], unicode.IsSpace)
	if body == "" {
		return ExtractedSection{}, false
	}

	return ExtractedSection{
		Name:    cs.spec.Name,
		Title:   cs.spec.DisplayTitle(),
		Keyword: text[start:kwEnd],
		Text:    body,
		Start:   start,
		End:     start + len(body),
	}, true
}

package sections

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SectionSpec names a clause category and the keywords that mark its start.
type SectionSpec struct {
	Name     string   `yaml:"name" json:"name"`
	Title    string   `yaml:"title,omitempty" json:"title"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DisplayTitle returns Title, or a title derived from Name.
func (s SectionSpec) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return TitleFromName(s.Name)
}

// DefaultSpecs returns the built-in clause table.
func DefaultSpecs() []SectionSpec {
	return []SectionSpec{
		{Name: "parties", Keywords: []string{"parties", "between"}},
		{Name: "effective_date", Keywords: []string{"effective date", "commencement"}},
		{Name: "termination", Keywords: []string{"termination", "expiry"}},
		{Name: "confidentiality", Keywords: []string{"confidentiality", "nda"}},
		{Name: "payment_terms", Keywords: []string{"payment", "consideration"}},
		{Name: "governing_law", Keywords: []string{"governing law", "jurisdiction"}},
	}
}

// Validate checks that a table is usable by a Locator.
func Validate(specs []SectionSpec) error {
	seen := make(map[string]bool, len(specs))
	for i, s := range specs {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("section %d: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("section %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if len(s.Keywords) == 0 {
			return fmt.Errorf("section %q: at least one keyword is required", s.Name)
		}
		for j, kw := range s.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("section %q: keyword %d is empty", s.Name, j)
			}
		}
	}
	return nil
}

type specFile struct {
	Sections []SectionSpec `yaml:"sections"`
}

// LoadSpecs reads a section table from a YAML file of the form:
//
//	sections:
//	  - name: termination
//	    keywords: [termination, expiry]
func LoadSpecs(path string) ([]SectionSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sections file: %w", err)
	}
	return ParseSpecs(data)
}

// ParseSpecs decodes and validates a YAML section table.
func ParseSpecs(data []byte) ([]SectionSpec, error) {
	var f specFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sections yaml: %w", err)
	}
	if len(f.Sections) == 0 {
		return nil, errors.New("sections file defines no sections")
	}
	if err := Validate(f.Sections); err != nil {
		return nil, err
	}
	return f.Sections, nil
}

// NewLocatorFromFile loads a table from path, or uses DefaultSpecs when path
// is empty.
func NewLocatorFromFile(path string) (*Locator, error) {
	specs := DefaultSpecs()
	if path != "" {
		var err error
		if specs, err = LoadSpecs(path); err != nil {
			return nil, err
		}
	}
	return NewLocator(specs)
}

// TitleFromName turns "payment_terms" into "Payment Terms".
func TitleFromName(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

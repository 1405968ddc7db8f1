package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestForFile_AcceptsPDF(t *testing.T) {
	for _, name := range []string{"contract.pdf", "CONTRACT.PDF", "dir/lease.Pdf"} {
		p, err := ForFile(name, Options{FallbackPdftotext: true})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		pdf, ok := p.(*PDFParser)
		if !ok {
			t.Fatalf("%s: expected *PDFParser, got %T", name, p)
		}
		if !pdf.FallbackPdftotext {
			t.Errorf("%s: expected fallback option to carry through", name)
		}
	}
}

func TestForFile_RejectsOtherExtensions(t *testing.T) {
	for _, name := range []string{"notes.txt", "contract.docx", "page.html", "noext", "contract.pdf.zip"} {
		_, err := ForFile(name, Options{})
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, ErrUnsupportedInput) {
			t.Errorf("%s: expected ErrUnsupportedInput, got %v", name, err)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.pdf") || !IsSupportedExtension("a.PDF") {
		t.Error("expected .pdf to be supported")
	}
	if IsSupportedExtension("a.txt") {
		t.Error("expected .txt to be unsupported")
	}
}

func TestPDFParser_InvalidBytes(t *testing.T) {
	p := &PDFParser{}
	_, err := p.Parse(strings.NewReader("this is not a pdf"), "fake.pdf")
	if err == nil {
		t.Fatal("expected error for non-pdf bytes")
	}
	if !strings.Contains(err.Error(), "extract pdf text") {
		t.Errorf("expected wrapped extraction error, got %v", err)
	}
}

func TestSplitPages(t *testing.T) {
	got := splitPages("page one\fpage two\f")
	if len(got) != 2 {
		t.Fatalf("expected 2 pages, got %d: %q", len(got), got)
	}
	if got[0] != "page one" || got[1] != "page two" {
		t.Errorf("unexpected pages: %q", got)
	}

	if got := splitPages("single"); len(got) != 1 || got[0] != "single" {
		t.Errorf("expected single page, got %q", got)
	}
}

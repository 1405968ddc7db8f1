package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/legalscan/internal/parser"
	"github.com/dgallion1/legalscan/internal/sections"
)

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sections": s.orchestrator.Analyzer().Locator().Specs(),
	})
}

// handleLocateSections runs only the keyword locator over an upload. No
// model calls are made.
func (s *Server) handleLocateSections(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	tree, err := s.parseUpload(filename, data)
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, parser.ErrUnsupportedInput) {
			code = http.StatusBadRequest
		}
		jsonError(w, err.Error(), code)
		return
	}
	if tree.IsBlank() {
		jsonError(w, "no extractable text", http.StatusUnprocessableEntity)
		return
	}

	found := s.orchestrator.Analyzer().Locator().Locate(tree.Text())
	if found == nil {
		found = sections.Sections{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename":         filename,
		"pages":            tree.PageCount(),
		"estimated_tokens": tree.EstimatedTokens(),
		"sections":         found,
	})
}

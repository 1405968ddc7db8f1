package api

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/legalscan/internal/config"
	"github.com/dgallion1/legalscan/internal/doctree"
	"github.com/dgallion1/legalscan/internal/llm"
	"github.com/dgallion1/legalscan/internal/parser"
	"github.com/dgallion1/legalscan/internal/pipeline"
)

// Server is the HTTP API server for legalscan.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	provider     *llm.Provider
	log          *slog.Logger
	cfg          config.Config

	// parseUpload extracts text for synchronous endpoints.
	parseUpload func(filename string, data []byte) (*doctree.DocTree, error)
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, provider *llm.Provider, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		provider:     provider,
		log:          log,
		cfg:          cfg,
	}
	s.parseUpload = func(filename string, data []byte) (*doctree.DocTree, error) {
		p, err := parser.ForFile(filename, parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext})
		if err != nil {
			return nil, err
		}
		return p.Parse(bytes.NewReader(data), filename)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/sections", s.handleListSections)
		r.Post("/api/sections/locate", s.handleLocateSections)

		r.Post("/api/analyze", s.handleAnalyze)
		r.Get("/api/analyze/{jobID}/status", s.handleAnalyzeStatus)
		r.Get("/api/analyze/{jobID}", s.handleAnalysisResult)
		r.Get("/api/analyze/{jobID}/report", s.handleReport)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

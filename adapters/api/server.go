package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"prmetrics/internal"
	"prmetrics/ports"
)

const requestTimeout = 10 * time.Second

// Server exposes the produced result tables and run history over HTTP. It
// serves files straight from the results directory so a rerun is visible
// without a restart.
type Server struct {
	router     *chi.Mux
	resultsDir string
	repo       ports.ResultRepository // nil when persistence is disabled
	logger     *internal.Logger
}

// NewServer creates a results API server
func NewServer(resultsDir string, repo ports.ResultRepository, logger *internal.Logger) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		resultsDir: resultsDir,
		repo:       repo,
		logger:     logger,
	}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/report", s.handleReport)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{name}", s.handleTable)
		r.Get("/runs", s.handleRuns)
	})
}

// Start runs the HTTP server on the given port
func (s *Server) Start(port string) error {
	s.logger.Info("results API listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}

// Handler returns the underlying router, for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTables enumerates the CSV tables currently in the results dir
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.resultsDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	tables := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		tables = append(tables, strings.TrimSuffix(e.Name(), ".csv"))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

// handleTable serves one result table as CSV
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != filepath.Base(name) || strings.ContainsAny(name, "/\\") {
		http.Error(w, "invalid table name", http.StatusBadRequest)
		return
	}
	path := filepath.Join(s.resultsDir, name+".csv")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "table not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Write(data)
}

// handleReport renders the stored markdown report as HTML
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	md, err := os.ReadFile(filepath.Join(s.resultsDir, "report.md"))
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "no report yet, run an analysis first", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.CompletePage})
	html := markdown.ToHTML(md, p, renderer)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// handleRuns lists recent persisted runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"runs": []ports.RunSummary{}, "persistence": "disabled"})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	runs, err := s.repo.ListRuns(ctx, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

package api

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/dgallion1/chaptersplit/internal/config"
	"github.com/dgallion1/chaptersplit/internal/pipeline"
	"github.com/dgallion1/chaptersplit/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP front end for chapter splitting.
type Server struct {
	router   chi.Router
	splitter *pipeline.Splitter
	records  *pipeline.Registry
	stats    *stats.Recorder
	log      *slog.Logger
	cfg      config.Config

	page  *template.Template
	usage template.HTML
}

// NewServer creates and configures the HTTP server.
func NewServer(splitter *pipeline.Splitter, records *pipeline.Registry, rec *stats.Recorder, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		splitter: splitter,
		records:  records,
		stats:    rec,
		log:      log,
		cfg:      cfg,
		page:     pageTemplate,
	}
	usage, err := renderUsage()
	if err != nil {
		log.Warn("usage notes unavailable", "error", err)
	}
	s.usage = usage
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
	r.Get("/", s.handleForm)
	r.Post("/", s.handleFormSubmit)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/split", s.handleSplit)
		r.Get("/api/splits/{splitID}", s.handleSplitStatus)
		r.Get("/api/splits/{splitID}/archive", s.handleArchive)
		r.Get("/api/stats/splits", s.handleSplitStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

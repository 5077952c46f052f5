package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kartoza/premium-estimator/internal/api"
	"github.com/kartoza/premium-estimator/internal/config"
	"github.com/kartoza/premium-estimator/internal/estimator"
	"github.com/kartoza/premium-estimator/internal/model"
)

//go:embed static/*
var staticFS embed.FS

//go:embed templates/*.html
var templateFS embed.FS

// Server holds all the components for the web application
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	handle     *model.Handle
	estimator  *estimator.Estimator
	pages      *template.Template
	logger     *slog.Logger
}

// New creates a new Server. The model artifact is loaded eagerly; a
// failed load is logged once and the page then reports the model as
// unavailable instead of accepting submissions.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return NewWithHandle(cfg, model.NewHandle(cfg.ModelPath), logger)
}

// NewWithHandle is New with a caller-supplied model handle
func NewWithHandle(cfg config.Config, handle *model.Handle, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pages, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		router:    mux.NewRouter(),
		handle:    handle,
		estimator: estimator.New(handle, cfg.PredictTimeout, logger),
		pages:     pages,
		logger:    logger,
	}

	if err := handle.Preload(); err != nil {
		logger.Error("model unavailable", slog.String("path", handle.Path()), slog.Any("error", err))
	} else {
		p, _ := handle.Get()
		logger.Info("model loaded", slog.String("path", handle.Path()), slog.String("strategy", p.Strategy().String()))
	}

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() error {
	s.router.Use(requestLogger(s.logger))

	// API routes
	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiHandler := api.NewHandler(s.handle, s.estimator, s.cfg)
	apiHandler.RegisterRoutes(apiRouter)

	// Form page
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/estimate", s.handleEstimate).Methods("POST")
	s.router.HandleFunc("/estimate", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}).Methods("GET")
	s.router.HandleFunc("/theme", s.handleTheme).Methods("POST")

	// Static assets (embedded)
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("failed to load embedded static files: %w", err)
	}
	s.router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	return nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP connections. It returns
// http.ErrServerClosed once Stop has been called, including when Stop ran
// first.
func (s *Server) Start() error {
	s.logger.Info("server listening", slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Port)))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

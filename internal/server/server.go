package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fasalvikas/fasal-vikas/internal/api"
	"github.com/fasalvikas/fasal-vikas/internal/config"
	"github.com/fasalvikas/fasal-vikas/internal/features"
	"github.com/fasalvikas/fasal-vikas/internal/history"
	"github.com/fasalvikas/fasal-vikas/internal/i18n"
	"github.com/fasalvikas/fasal-vikas/internal/logging"
	"github.com/fasalvikas/fasal-vikas/internal/nn"
)

//go:embed static/*
var staticFS embed.FS

// Server holds all the components for the web application
type Server struct {
	cfg          config.Config
	httpServer   *http.Server
	router       *mux.Router
	handler      http.Handler
	historyStore *history.Store
}

// New loads the models and wires the HTTP routes. A model that fails to
// load is fatal; an unavailable history database only disables history.
func New(cfg config.Config) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
	}

	yieldModel, err := nn.LoadYieldRegressor(cfg.Models.YieldPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load yield model: %w", err)
	}
	logging.Info().Str("path", cfg.Models.YieldPath()).Int("input_width", yieldModel.InputWidth()).Msg("Yield model loaded")

	cropModel, err := nn.LoadCropClassifier(cfg.Models.CropPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load crop model: %w", err)
	}
	logging.Info().Str("path", cfg.Models.CropPath()).Int("classes", len(cropModel.Classes)).Msg("Crop model loaded")

	localizer, err := NewLocalizer(cfg.I18n)
	if err != nil {
		return nil, err
	}

	deps := api.Deps{
		Encoder:   features.DefaultEncoder(),
		Yield:     yieldModel,
		Crop:      cropModel,
		Localizer: localizer,
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Driver, cfg.History.DSN)
		if err != nil {
			logging.Warn().Err(err).Msg("Prediction history not available")
		} else {
			s.historyStore = store
			deps.History = store
		}
	}

	apiHandler, err := api.NewHandler(cfg, deps)
	if err != nil {
		s.closeStores()
		return nil, err
	}

	s.setupRoutes(apiHandler)
	return s, nil
}

// NewLocalizer builds the localizer, attaching the remote translator when
// it is enabled. A misconfigured remote is logged and skipped.
func NewLocalizer(cfg config.I18nConfig) (*i18n.Localizer, error) {
	var remote i18n.Translator
	if cfg.Remote.Enabled {
		rt, err := i18n.NewRemoteTranslator(i18n.RemoteConfig{
			URL:       cfg.Remote.URL,
			APIKey:    cfg.Remote.APIKey,
			Timeout:   cfg.Remote.Timeout,
			CacheSize: cfg.Remote.CacheSize,
		})
		if err != nil {
			logging.Warn().Err(err).Msg("Remote translation not available")
		} else {
			remote = rt
		}
	}

	localizer, err := i18n.NewLocalizer(remote)
	if err != nil {
		return nil, fmt.Errorf("failed to load locales: %w", err)
	}
	return localizer, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(apiHandler *api.Handler) {
	s.router.Use(captureRoute)

	// API routes
	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiRouter.Use(rateLimit(s.cfg.RateLimit))
	apiHandler.RegisterRoutes(apiRouter)

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.handler = chain(s.cfg, s.router)

	// Static frontend files (embedded)
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		logging.Warn().Err(err).Msg("Could not load embedded static files")
		return
	}

	// SPA fallback: serve index.html for any non-API route
	fileServer := http.FileServer(http.FS(staticContent))
	s.router.PathPrefix("/").Methods("GET", "HEAD").Handler(spaHandler{staticContent: staticContent, fileServer: fileServer})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	logging.Info().Str("addr", s.cfg.Server.Addr()).Msg("Server listening")
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.closeStores()
	return err
}

func (s *Server) closeStores() {
	if s.historyStore != nil {
		if err := s.historyStore.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing history store")
		}
		s.historyStore = nil
	}
}

// spaHandler serves the form page, falling back to index.html for unknown paths
type spaHandler struct {
	staticContent fs.FS
	fileServer    http.Handler
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "index.html"
	}

	// fs.FS paths must not have a leading slash
	cleanPath := strings.TrimPrefix(path, "/")

	if _, err := fs.Stat(h.staticContent, cleanPath); err != nil {
		r.URL.Path = "/"
	}

	h.fileServer.ServeHTTP(w, r)
}

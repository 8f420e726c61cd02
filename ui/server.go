package ui

import (
	"context"
	stderrors "errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"seismicview/app"
	"seismicview/internal/config"
	"seismicview/internal/errors"
	"seismicview/internal/logging"
)

// Dependencies are the collaborators the web server needs
type Dependencies struct {
	Analyses *app.AnalysisService
	Logger   *slog.Logger
}

// Server is the upload and result web server
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server
	templates  *template.Template
	analyses   *app.AnalysisService
	logger     *slog.Logger

	janitorCtx    context.Context
	janitorCancel context.CancelFunc
	janitorDone   chan struct{}
	janitorOnce   sync.Once
}

// NewServer creates a server from explicit configuration. Nothing listens
// until Start is called.
func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("server configuration is required")
	}
	if deps.Analyses == nil {
		return nil, errors.ConfigInvalid("analysis service is required")
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load templates")
	}

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:           cfg,
		router:        router,
		templates:     templates,
		analyses:      deps.Analyses,
		logger:        logging.Component(deps.Logger, "http"),
		janitorCtx:    janitorCtx,
		janitorCancel: janitorCancel,
		janitorDone:   make(chan struct{}),
	}

	if err := s.setupMiddleware(); err != nil {
		janitorCancel()
		return nil, errors.Wrap(err, "failed to set up static files")
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)
	s.router.GET("/static/outputs/:name", s.handleArtifact)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/analyses", s.handleCreateAnalysis)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the artifact janitor and serves HTTP until Shutdown is called.
// A clean shutdown returns nil.
func (s *Server) Start() error {
	s.janitorOnce.Do(func() {
		go func() {
			defer close(s.janitorDone)
			s.analyses.RunJanitor(s.janitorCtx)
		}()
	})

	s.logger.Info("listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and stops the janitor.
func (s *Server) Shutdown(ctx context.Context) error {
	s.janitorCancel()
	// close the done channel ourselves if Start never launched the janitor
	s.janitorOnce.Do(func() { close(s.janitorDone) })

	err := s.httpServer.Shutdown(ctx)

	select {
	case <-s.janitorDone:
	case <-ctx.Done():
	}
	s.logger.Info("server stopped")
	return err
}

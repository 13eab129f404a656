// Package api exposes the pronunciation analyzer over HTTP for the
// data-collection frontend: participant registration, recording
// upload, phoneme lookups and the analysis endpoint itself.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/akustiklab/telaffuz/configs"
	"github.com/akustiklab/telaffuz/internal/analysis"
	"github.com/akustiklab/telaffuz/internal/phonemizer"
	"github.com/akustiklab/telaffuz/pkg/logging"
)

// Server is the HTTP API for the analysis service
type Server struct {
	echo       *echo.Echo
	config     configs.ServerConfig
	pipeline   *analysis.Pipeline
	phonemizer *phonemizer.EspeakPhonemizer
	store      *ParticipantStore
	logger     logging.Logger
}

// NewServer wires the echo instance, middleware and routes
func NewServer(config configs.ServerConfig, pipeline *analysis.Pipeline, phon *phonemizer.EspeakPhonemizer) (*Server, error) {
	store, err := NewParticipantStore(config.DataDir)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:       e,
		config:     config,
		pipeline:   pipeline,
		phonemizer: phon,
		store:      store,
		logger: logging.WithFields(logging.Fields{
			"component": "api_server",
		}),
	}

	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/", s.handleRoot)
	e.GET("/health", s.handleHealth)

	e.POST("/register", s.handleRegister)
	e.POST("/survey", s.handleSurvey)
	e.POST("/upload", s.handleUpload)
	e.GET("/audio/:participant/:filename", s.handleServeAudio)

	e.POST("/analyze", s.handleAnalyze)

	phoneme := e.Group("/phoneme")
	phoneme.POST("/generate", s.handlePhonemeGenerate)
	phoneme.POST("/analyze", s.handlePhonemeAnalyze)
	phoneme.POST("/batch", s.handlePhonemeBatch)
	phoneme.GET("/health", s.handlePhonemeHealth)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.Info("API server started", logging.Fields{
		"addr":     addr,
		"data_dir": s.config.DataDir,
	})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	return s.echo.Shutdown(shutdownCtx)
}

// Handler exposes the echo handler for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

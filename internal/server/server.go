// Package server exposes the HTTP API over gin.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/praxisapp/praxis-backend/internal/pipeline"
	"github.com/praxisapp/praxis-backend/internal/registry"
)

const defaultMaxUploadMB = 64

// Config holds the HTTP server settings.
type Config struct {
	Listen      string
	Debug       bool
	CORSOrigins []string
	MaxUploadMB int64

	// GeminiConfigured and GeminiModel describe the selected provider mode
	// for the health endpoint and upload responses.
	GeminiConfigured bool
	GeminiModel      string
}

// Server orchestrates uploads through the pipeline and serves registry reads.
type Server struct {
	cfg      Config
	engine   *gin.Engine
	registry *registry.Registry
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
	http     *http.Server
}

// New builds the server and registers all routes.
func New(cfg Config, reg *registry.Registry, pipe *pipeline.Pipeline, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = defaultMaxUploadMB
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.MaxMultipartMemory = cfg.MaxUploadMB << 20

	if len(cfg.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		registry: reg,
		pipeline: pipe,
		logger:   logger,
	}

	engine.GET("/health", s.health)
	engine.POST("/upload-video", s.uploadVideo)
	engine.POST("/upload-image", s.uploadImage)
	engine.GET("/processing-status", s.processingStatus)
	engine.GET("/skills", s.skills)
	engine.GET("/jobs", s.jobs)

	return s
}

// Handler returns the underlying HTTP handler, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.http = &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.engine,
	}

	s.logger.Info("http server listening", zap.String("addr", s.cfg.Listen))

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

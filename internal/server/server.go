package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/sitemapgen/internal/database"
	"github.com/nao1215/sitemapgen/internal/pipeline"
)

// shutdownTimeout bounds how long Run waits for in-flight crawls on exit.
const shutdownTimeout = 30 * time.Second

// Archive is the read side of the sitemap archive.
type Archive interface {
	ListSitemaps(ctx context.Context, baseURL string) ([]database.SitemapMetadata, error)
	GetSitemap(ctx context.Context, id int64) (*database.SitemapRecord, error)
}

// Server serves the sitemap API.
type Server struct {
	generator pipeline.Generator
	archive   Archive
	logger    *slog.Logger
	engine    *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request and error logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithArchive enables the /sitemaps endpoints.
func WithArchive(archive Archive) Option {
	return func(s *Server) {
		s.archive = archive
	}
}

// New creates a Server that generates sitemaps with generator.
func New(generator pipeline.Generator, opts ...Option) *Server {
	s := &Server{
		generator: generator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(s.logger), corsMiddleware())

	engine.GET("/health", s.health)
	engine.POST("/generate-sitemap", s.generateSitemap)
	if s.archive != nil {
		engine.GET("/sitemaps", s.listSitemaps)
		engine.GET("/sitemaps/:id", s.getSitemap)
	}

	s.engine = engine
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like Run on an existing listener. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// ctx is already done; shutdown needs its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Package httpapi serves the dispatcher and the assistant over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"business-assistant/internal/common/logger"
	"business-assistant/internal/orchestrator"
	"business-assistant/internal/protocol"
)

// Checker reports the health of one dependency.
type Checker func(ctx context.Context) error

type Options struct {
	// RequestTimeout bounds /rpc and /ask; zero means no extra deadline.
	RequestTimeout time.Duration
	Gatherer       prometheus.Gatherer
	Checks         map[string]Checker
}

type Server struct {
	dispatcher *protocol.Dispatcher
	assistant  *orchestrator.Assistant
	logger     logger.Logger
	opts       Options
}

func New(d *protocol.Dispatcher, a *orchestrator.Assistant, log logger.Logger, opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		dispatcher: d,
		assistant:  a,
		logger:     logger.Component(log, "http"),
		opts:       opts,
	}
}

// Handler builds the gin engine with every route attached.
func (s *Server) Handler() *gin.Engine {
	g := gin.New()
	g.Use(s.requestLogger(), gin.Recovery())
	s.attachRoutes(g)
	return g
}

func (s *Server) attachRoutes(g *gin.Engine) {
	g.POST("/rpc", s.rpc)
	if s.assistant != nil {
		g.POST("/ask", s.ask)
	}
	g.GET("/healthz", s.health)
	g.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", map[string]interface{}{"address": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("HTTP server shutting down", nil)
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request", map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout > 0 {
		return context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
	}
	return context.WithCancel(c.Request.Context())
}

// internal/server/server.go
// Package server exposes the function dispatcher over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mwiater/fncall/internal/appconfig"
	"github.com/mwiater/fncall/internal/functions"
	"github.com/mwiater/fncall/internal/logging"
	"github.com/mwiater/fncall/internal/metrics"
	"github.com/mwiater/fncall/internal/textutil"
)

const (
	maxBodyBytes    = 1 << 20 // 1 MiB
	shutdownTimeout = 5 * time.Second
	functionKey     = "function"
	maxLoggedBody   = 2048 // runes of request body echoed to the log
)

// Server serves POST /function and the supporting endpoints.
type Server struct {
	cfg        *appconfig.Config
	dispatcher *functions.Dispatcher
	metrics    *metrics.Collector
	engine     *gin.Engine
	log        *logging.Logger
}

// New builds the router. /metrics is mounted only when cfg.Metrics is set.
func New(cfg *appconfig.Config, dispatcher *functions.Dispatcher) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		engine:     gin.New(),
		log:        logging.New("server"),
	}
	if cfg.Metrics {
		s.metrics = metrics.New()
	}

	s.engine.Use(s.accessLog(), gin.CustomRecovery(s.onPanic))
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	s.engine.GET("/functions", s.handleDefinitions)
	s.engine.POST("/function", s.handleFunction)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return s
}

// Handler returns the router for use with httptest or a custom http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleFunction(c *gin.Context) {
	c.Set(functionKey, "unknown")

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		s.log.Warn("Invalid request format: %v", err)
		s.fail(c, functions.ErrInvalidRequest)
		return
	}
	s.log.Info("Received request: %s", textutil.TruncateRunes(compact(body), maxLoggedBody))

	req, err := functions.DecodeRequest(body)
	if err != nil {
		s.log.Warn("Invalid request format")
		s.log.Debug("%v", err)
		s.fail(c, err)
		return
	}
	if functions.Known(req.Name) {
		c.Set(functionKey, req.Name)
	}

	res, err := s.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	if res.Error != "" {
		s.log.Warn("%s returned error payload: %s", req.Name, res.Error)
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleDefinitions(c *gin.Context) {
	c.JSON(http.StatusOK, s.dispatcher.Definitions())
}

func (s *Server) fail(c *gin.Context, err error) {
	status, res := functions.StatusOf(err)
	c.AbortWithStatusJSON(status, res)
}

func (s *Server) onPanic(c *gin.Context, recovered any) {
	s.log.Error("Unexpected error: %v", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, functions.Result{Error: functions.ErrInternal.Message})
}

// accessLog sits outside the recovery middleware so it sees the final status.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		s.log.Info("%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, elapsed)
		if s.metrics != nil && c.FullPath() == "/function" {
			s.metrics.Observe(c.GetString(functionKey), status, elapsed)
		}
	}
}

func compact(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return string(bytes.TrimSpace(body))
	}
	return buf.String()
}

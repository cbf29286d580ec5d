// SPDX-License-Identifier: EPL-2.0

// Package server exposes the pipeline over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/ik5/audmark/pipeline"
)

type Server struct {
	pipeline     *pipeline.Pipeline
	logger       hclog.Logger
	maxBodyBytes int64
	started      time.Time
	engine       *gin.Engine
}

func New(p *pipeline.Pipeline, maxBodyBytes int64, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	s := &Server{
		pipeline:     p,
		logger:       logger.Named("server"),
		maxBodyBytes: maxBodyBytes,
		started:      time.Now(),
		engine:       gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

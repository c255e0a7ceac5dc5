// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"mindline/internal/observability"
	"mindline/pkg/session"
)

// Config holds HTTP server configuration
type Config struct {
	Host        string
	Port        int
	CORSOrigins []string
	Debug       bool
}

// StatsConfig carries the session policy limits surfaced by the stats
// endpoint.
type StatsConfig struct {
	MaxSessions       int
	TTLHours          int
	InactivityMinutes int
}

// Server hosts the REST API.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds the server with routes and middleware installed.
func New(cfg Config, store *session.Store, chatSvc ChatService, stats StatsConfig) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(RequestID(), RequestLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
	engine.Use(cors.New(corsConfig))

	h := newHandlers(store, chatSvc, stats)
	h.register(engine)

	engine.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      engine,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
	}
}

// Start begins serving and blocks until the listener fails or Stop is
// called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	log.Info().Msg("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

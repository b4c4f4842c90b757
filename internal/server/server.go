package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/routegraph/internal/config"
	"github.com/agenthands/routegraph/internal/core"
	"github.com/agenthands/routegraph/internal/core/model"
	"github.com/agenthands/routegraph/internal/driver"
)

type Server struct {
	Runner *core.Runner
	Graph  config.GraphConfig
	Log    *zap.Logger
}

func NewServer(runner *core.Runner, graph config.GraphConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Runner: runner, Graph: graph, Log: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/interfaces", s.Interfaces)
	r.GET("/healthz", s.Health)

	return r
}

type InterfacesResponse struct {
	Location string   `json:"location"`
	IPs      []string `json:"ips"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (s *Server) Interfaces(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "location query parameter is required"})
		return
	}

	records, err := s.Runner.Lookup(c.Request.Context(), s.Graph, location)
	if err != nil {
		s.Log.Error("lookup failed", zap.String("location", location), zap.Error(err))
		c.JSON(statusFor(err), ErrorResponse{Error: "lookup failed", Retryable: driver.IsRetryable(err)})
		return
	}

	c.JSON(http.StatusOK, InterfacesResponse{Location: location, IPs: model.IPs(records)})
}

func (s *Server) Health(c *gin.Context) {
	err := s.Runner.WithConnection(c.Request.Context(), s.Graph, func(conn *core.Connection) error {
		return conn.Ping(c.Request.Context())
	})
	if err != nil {
		s.Log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, driver.ErrConnection), errors.Is(err, driver.ErrTransient):
		return http.StatusServiceUnavailable
	case errors.Is(err, driver.ErrQuery):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

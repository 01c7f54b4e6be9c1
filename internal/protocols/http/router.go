package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Miandari/dailygrit/internal/core"
	"github.com/Miandari/dailygrit/internal/repository"
	"github.com/Miandari/dailygrit/pkg/config"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/metrics"
	"github.com/Miandari/dailygrit/pkg/utils"
)

// Server manages the HTTP REST API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	services *core.Services
	store    repository.Store
	metrics  *metrics.Recorder
	httpSrv  *http.Server
}

// NewServer creates a new HTTP server with all handlers
func NewServer(cfg *config.Config, services *core.Services, store repository.Store, recorder *metrics.Recorder) *Server {
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(requestLogMiddleware(recorder))
	router.Use(corsMiddleware())

	s := &Server{
		router:   router,
		config:   cfg,
		services: services,
		store:    store,
		metrics:  recorder,
	}

	s.setupRoutes()
	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1", AuthMiddleware(s.services.Tokens))
	if s.config.RateLimit.Enabled {
		v1.Use(RateLimitMiddleware(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.metrics))
	}
	{
		challenges := v1.Group("/challenges")
		{
			challenges.POST("", s.createChallenge)
			challenges.GET("/:id", s.getChallenge)
			challenges.DELETE("/:id", s.deleteChallenge)
			challenges.PUT("/:id/scoring", s.updateScoring)
			challenges.POST("/:id/recalculate", s.recalculate)
			challenges.POST("/:id/join", s.joinChallenge)
			challenges.DELETE("/:id/membership", s.leaveChallenge)
			challenges.DELETE("/:id/participants/:participant_id", s.removeParticipant)
			challenges.GET("/:id/leaderboard", s.getLeaderboard)
			challenges.POST("/:id/requests", s.requestJoin)
			challenges.GET("/:id/requests", s.listJoinRequests)
		}

		requests := v1.Group("/join-requests")
		{
			requests.POST("/:id/approve", s.approveJoinRequest)
			requests.POST("/:id/reject", s.rejectJoinRequest)
		}

		participants := v1.Group("/participants")
		{
			participants.POST("/:id/entries", s.submitEntry)
			participants.GET("/:id/entries", s.listEntries)
			participants.GET("/:id/entries/:date", s.getEntry)
			participants.GET("/:id/progress", s.getProgress)
		}
	}
}

// Start serves on the configured address until Shutdown is called
func (s *Server) Start() error {
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// healthCheck reports liveness and store reachability
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := utils.WithTimeout(c.Request.Context())
	defer cancel()

	status, code := "ok", http.StatusOK
	storeStatus := "ok"
	if err := s.store.Ping(ctx); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
		storeStatus = err.Error()
		logger.WithFields(map[string]interface{}{"component": "http", "error": err.Error()}).Warn("health check: store unreachable")
	}

	c.JSON(code, gin.H{
		"status": status,
		"store":  storeStatus,
		"time":   time.Now().Format(time.RFC3339),
	})
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/auth"
	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/middleware"
	"github.com/disputekit/disputekit-server/internal/service"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	service       *service.DisputeService
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
	tokens        *auth.Signer
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, svc *service.DisputeService, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware())
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	server := &Server{
		configManager: configManager,
		service:       svc,
		logger:        logger,
		router:        router,
	}

	tokens, err := auth.NewSigner(cfg.Server.UserTokenSecret, cfg.Server.UserTokenTTL)
	if err != nil {
		logger.Warn("user_token_secret not set; letters stay locked except for plugin requests")
	} else {
		server.tokens = tokens
	}

	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	cfg := s.configManager.GetServerConfig()

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ready", s.handleReady)

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.NewRateLimiter(cfg.RateLimitPerMinute).Middleware())
	v1.Use(s.requireReady())
	if s.tokens != nil {
		v1.Use(middleware.UserToken(s.tokens))
	}
	{
		v1.POST("/match-scenario", s.handleMatchScenario)
		v1.POST("/match-keywords", s.handleMatchKeywords)
		v1.GET("/reasons/:network", s.handleListReasons)
		v1.GET("/reasons/:network/:code", s.handleReasonDetails)
		v1.GET("/strategy/:network/:code", s.handleStrategy)
		v1.GET("/search-strategy", s.handleSearchStrategy)
		v1.POST("/intake", s.handleSubmitIntake)
		v1.GET("/intake/:id", s.handleGetIntake)
		v1.POST("/generate-letter", s.handleGenerateLetter)
		v1.POST("/preview-letter", s.handlePreviewLetter)
		v1.POST("/estimate-success-score", s.handleEstimateSuccessScore)
		v1.POST("/estimate-success", s.handleEstimateSuccess)
		v1.GET("/evidence-packet/:network/:code", s.handleEvidencePacket)
		v1.POST("/cfpb-summary", s.handleComplaintSummary)
		v1.GET("/bins/:bin", s.handleLookupBin)
		v1.GET("/issuers/:name", s.handleIssuerContact)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.BearerToken(cfg.AdminToken))
	{
		admin.GET("/disputes", s.handleListDisputes)
		admin.GET("/disputes/export", s.handleExportDisputes)
		admin.PATCH("/disputes/:sessionId", s.handleUpdateOutcome)
		admin.POST("/entitlements", s.handleGrantEntitlement)
	}
}

// requireReady answers 503 until the catalog has loaded.
func (s *Server) requireReady() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.service.Ready() {
			middleware.AbortWithError(c, http.StatusServiceUnavailable, domain.CodeNotReady, "reason catalog is still loading")
			return
		}
		c.Next()
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Correlation-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

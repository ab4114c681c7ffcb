package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/corgadogabriel/portfolio-api/internal/api/handlers"
	"github.com/corgadogabriel/portfolio-api/internal/api/middleware"
	"github.com/corgadogabriel/portfolio-api/internal/config"
	"github.com/corgadogabriel/portfolio-api/internal/contact"
	"github.com/corgadogabriel/portfolio-api/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	router *gin.Engine
	cfg    *config.Config
}

// New assembles the engine, middleware chain and routes from configuration.
func New(cfg *config.Config) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	logger := logging.GetGlobalLogger()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.Environment, cfg.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		RPS:   cfg.GlobalRPS,
		Burst: cfg.GlobalBurst,
	}))

	s := &Server{
		router: router,
		cfg:    cfg,
	}
	s.registerRoutes(logger)

	return s
}

func (s *Server) registerRoutes(logger *logging.Logger) {
	cfg := s.cfg

	var ledger contact.Ledger
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ledger = contact.NewRedisLedger(client, cfg.RateLimitWindow, cfg.RateLimitMax)
		logger.Info("Rate-limit ledger: redis (%s)", cfg.RedisAddr)
	} else {
		ledger = contact.NewMemoryLedger(cfg.RateLimitWindow, cfg.RateLimitMax)
		logger.Info("Rate-limit ledger: in-memory (single instance only)")
	}

	settings := contact.SMTPSettings{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		User:      cfg.SMTPUser,
		Pass:      cfg.SMTPPass,
		Secure:    cfg.SMTPSecure,
		From:      cfg.MailFrom,
		Recipient: cfg.ContactRecipient,
	}
	if !settings.Configured() {
		logger.Warn("SMTP is not configured; contact submissions will fail until SMTP_HOST, SMTP_PORT, SMTP_USER and SMTP_PASS are set")
	}

	limits := contact.Limits{
		MessageMaxLength: cfg.MessageMaxLength,
		MessageMinLength: cfg.MessageMinLength,
		MessageMaxLinks:  cfg.MessageMaxLinks,
		SpamPhrases:      cfg.SpamPhrases,
	}

	contactHandler := handlers.NewContactHandler(ledger, contact.NewSMTPSender(settings), limits, settings)
	healthHandler := handlers.NewHealthHandler()

	s.router.POST("/contact", contactHandler.Submit)
	s.router.GET("/healthz", healthHandler.Check)
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	logger := logging.GetGlobalLogger()

	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

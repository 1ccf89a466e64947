package router

import (
	"context"
	"net/http"
	"time"

	loginAPI "accmanager-api/api/v1/login"
	"accmanager-api/internal/logger"
	internalLogin "accmanager-api/internal/login"
	"accmanager-api/internal/tokenissuer"
	"accmanager-api/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HealthCheck reports whether a backing service is reachable
type HealthCheck func(ctx context.Context) error

// Dependencies are the collaborators the router wires into handlers
type Dependencies struct {
	Users  internalLogin.UserStore
	Issuer tokenissuer.Issuer
	Logger *logger.Logger

	// Health checks reported by GET /health, keyed by service name
	Health map[string]HealthCheck
}

// SetupEngine creates a new Gin engine with recovery and request logging
func SetupEngine(log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	return r
}

// RequestLogger logs one structured entry per request and tags it with an ID
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		entry := log.WithFields(logrus.Fields{
			"requestID": requestID,
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"remoteIP":  c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request completed with server error")
			return
		}
		entry.Info("request completed")
	}
}

// SetupCORS configures CORS settings
func SetupCORS(r *gin.Engine, cfg *config.CORSConfig) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 24 * time.Hour

	r.Use(cors.New(corsConfig))
}

// SetupLoginRoutes configures the login route
func SetupLoginRoutes(r *gin.Engine, cfg *config.AppConfig, deps Dependencies) {
	loginService := internalLogin.NewService(deps.Users, deps.Issuer, deps.Logger, internalLogin.Options{
		UnifyAuthFailures: cfg.Login.UnifyAuthFailures,
	})
	loginHandler := loginAPI.NewHandler(loginService, deps.Logger)

	loginAPI.RegisterPublicRoutes(r, loginHandler)
}

// SetupHealthRoutes exposes GET /health
func SetupHealthRoutes(r *gin.Engine, checks map[string]HealthCheck) {
	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		services := make(gin.H, len(checks))

		for name, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				services[name] = "down"
				continue
			}
			services[name] = "up"
		}

		c.JSON(status, gin.H{"services": services})
	})
}

// SetupRouter creates and configures the main router with all routes
func SetupRouter(cfg *config.AppConfig, deps Dependencies) *gin.Engine {
	r := SetupEngine(deps.Logger)

	if len(cfg.CORS.AllowOrigins) > 0 {
		SetupCORS(r, cfg.CORS)
	}

	SetupLoginRoutes(r, cfg, deps)
	SetupHealthRoutes(r, deps.Health)

	deps.Logger.Info("Router setup completed successfully")
	return r
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/cardwall/core/internal/adapters/http"
	"github.com/cardwall/core/internal/adapters/repository"
	"github.com/cardwall/core/internal/application/services"
	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/config"
	"github.com/cardwall/core/internal/infrastructure/database"
	"github.com/cardwall/core/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	manager *database.Manager
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, manager *database.Manager, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize repositories
	boardRepo := repository.NewBoardRepository(manager, appLogger)
	contactRepo := repository.NewContactRepository(manager)
	legendRepo := repository.NewLegendRepository(manager)
	docRepo := repository.NewDocumentRepository(manager)
	paramRepo := repository.NewAppParamRepository(manager)
	tileRepo := repository.NewTileRepository(manager)

	// Initialize services
	boardService := services.NewBoardService(boardRepo, appLogger)
	contactService := services.NewContactService(contactRepo, appLogger)
	libraryService := services.NewLibraryService(legendRepo, docRepo, paramRepo, appLogger)
	tileService := services.NewTileService(tileRepo, cfg.Tiles, appLogger)
	settingsService := services.NewSettingsService(manager, config.DefaultDBFilePath(), appLogger)

	// Initialize handlers
	boardHandler := httpHandlers.NewBoardHandler(boardService, appLogger)
	contactHandler := httpHandlers.NewContactHandler(contactService, appLogger)
	libraryHandler := httpHandlers.NewLibraryHandler(libraryService, appLogger)
	tileHandler := httpHandlers.NewTileHandler(tileService, appLogger)
	settingsHandler := httpHandlers.NewSettingsHandler(settingsService, appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger,
		manager: manager,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(boardHandler, contactHandler, libraryHandler, tileHandler, settingsHandler)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			return id, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Body limit sized for base64 image payloads riding inside board saves
	s.echo.Use(middleware.BodyLimit(s.config.Server.BodyLimit))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(
	boardHandler *httpHandlers.BoardHandler,
	contactHandler *httpHandlers.ContactHandler,
	libraryHandler *httpHandlers.LibraryHandler,
	tileHandler *httpHandlers.TileHandler,
	settingsHandler *httpHandlers.SettingsHandler,
) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	api := s.echo.Group("/api")

	// Board persistence
	api.GET("/card-sets", boardHandler.ListBoards)
	api.POST("/sets", boardHandler.CreateBoard)
	api.GET("/sets/:id", boardHandler.GetBoard)
	api.PUT("/sets/:id", boardHandler.ReplaceBoard)
	api.GET("/tasks/:cardId", boardHandler.GetCardTasks)
	api.POST("/image-cards", boardHandler.AddImage)
	api.GET("/image-cards/:cardId", boardHandler.GetImage)

	// Address book
	api.GET("/contacts", contactHandler.ListContacts)
	api.POST("/contacts", contactHandler.CreateContact)
	api.PUT("/contacts/:id", contactHandler.UpdateContact)
	api.DELETE("/contacts/:id", contactHandler.DeleteContact)

	// Color legends
	api.GET("/color-legends", libraryHandler.ListLegends)
	api.POST("/color-legends", libraryHandler.CreateLegend)
	api.PUT("/color-legends/:id", libraryHandler.UpdateLegend)
	api.DELETE("/color-legends/:id", libraryHandler.DeleteLegend)

	// Documents
	api.GET("/documents/:setId", libraryHandler.ListDocuments)
	api.POST("/documents", libraryHandler.CreateDocument)

	// Application parameters
	api.GET("/app-params/language", libraryHandler.GetLanguage)
	api.POST("/app-params/language", libraryHandler.SetLanguage)

	// Map tiles
	api.POST("/verifyTiles", tileHandler.VerifyTiles)
	api.GET("/tiles/:zoom/:x/:y", tileHandler.GetTile)

	// Runtime database settings
	api.GET("/db-config", settingsHandler.GetDBConfig)
	api.POST("/db-config", settingsHandler.UpdateDBConfig)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Echo exposes the underlying router. Used by integration tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	db := s.manager.Current()
	if db == nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  entities.ErrDatabaseUnavailable.Error(),
		}
	} else if err := db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  db.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	db := s.manager.Current()
	if db == nil || db.Ping() != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler maps domain errors onto the {error, details} body every
// client-facing failure uses.
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		body := map[string]interface{}{"error": "Internal server error", "details": err.Error()}

		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			code = he.Code
			body = map[string]interface{}{"error": fmt.Sprintf("%v", he.Message)}
		case errors.Is(err, entities.ErrBoardNotFound),
			errors.Is(err, entities.ErrCardNotFound),
			errors.Is(err, entities.ErrGroupNotFound),
			errors.Is(err, entities.ErrContactNotFound),
			errors.Is(err, entities.ErrLegendNotFound),
			errors.Is(err, entities.ErrImageNotFound),
			errors.Is(err, entities.ErrTileNotFound):
			code = http.StatusNotFound
			body = map[string]interface{}{"error": err.Error()}
		case errors.Is(err, entities.ErrInvalidLanguage):
			code = http.StatusBadRequest
			body = map[string]interface{}{"error": err.Error()}
		case errors.Is(err, entities.ErrDatabaseUnavailable):
			code = http.StatusServiceUnavailable
			body = map[string]interface{}{"error": err.Error()}
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Unhandled error", "error", err, "path", c.Request().URL.Path)
		}

		if jsonErr := c.JSON(code, body); jsonErr != nil {
			logger.Errorw("Failed to write error response", "error", jsonErr)
		}
	}
}

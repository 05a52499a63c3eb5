// Package server contains the HTTP handlers for the application's API
// endpoints and the wiring that assembles them into a running service.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"takopi/internal/cache"
	"takopi/internal/config"
	"takopi/internal/database"
	"takopi/internal/filestore"
	"takopi/internal/middleware"
	"takopi/internal/models"
	"takopi/internal/repository"
	"takopi/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config            *config.Config
	db                *gorm.DB
	store             *filestore.Store
	redis             *redis.Client
	app               *fiber.App
	promMiddleware    *fiberprometheus.FiberPrometheus
	repos             *repository.Repositories
	followService     *service.FollowService
	likeService       *service.LikeService
	collectionService *service.CollectionService
}

// NewServer creates a new server instance, establishing every dependency
// from configuration: the relational store, the file store when local mode
// is configured, and Redis.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	var store *filestore.Store
	if cfg.StorageMode == config.StorageModeLocal {
		store, err = filestore.Open(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("file store open failed: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, store, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the stores itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, store *filestore.Store, redisClient *redis.Client) (*Server, error) {
	repos, err := repository.NewRepositories(cfg, db, store)
	if err != nil {
		return nil, err
	}

	prom := middleware.InitMetrics("takopi-api")

	server := &Server{
		config:            cfg,
		db:                db,
		store:             store,
		redis:             redisClient,
		promMiddleware:    prom,
		repos:             repos,
		followService:     service.NewFollowService(repos.Follows),
		likeService:       service.NewLikeService(repos.Likes),
		collectionService: service.NewCollectionService(repos.Collections),
	}
	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Request tracing spans
	app.Use(middleware.TracingMiddleware())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// User routes: specific /:id/:resource routes before the generic /:id.
	users := api.Group("/users")
	users.Post("/:id/follow", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 30, time.Minute, "toggle_follow"), s.ToggleFollow)
	users.Get("/:id/follow-status", middleware.AuthRequired, s.GetFollowStatus)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/likes", middleware.AuthRequired, s.GetUserLikes)
	users.Get("/:id/collections", middleware.AuthOptional, s.GetUserCollections)
	users.Get("/:id", s.GetUserProfile)

	// Content routes
	content := api.Group("/content")
	content.Get("/", s.GetContentList)
	content.Post("/:id/like", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 60, time.Minute, "toggle_like"), s.ToggleLike)
	content.Get("/:id/likes", s.GetContentLikes)
	content.Get("/:id", middleware.AuthOptional, s.GetContent)

	// Collection routes
	collections := api.Group("/collections")
	collections.Get("/", s.GetPublicCollections)
	collections.Post("/", middleware.AuthRequired, s.CreateCollection)
	collections.Get("/:id/items", middleware.AuthOptional, s.GetCollectionItems)
	collections.Post("/:id/items", middleware.AuthRequired, s.AddCollectionItem)
	collections.Delete("/:id/items/:contentId", middleware.AuthRequired, s.RemoveCollectionItem)
	collections.Get("/:id", middleware.AuthOptional, s.GetCollection)
	collections.Patch("/:id", middleware.AuthRequired, s.UpdateCollection)
	collections.Delete("/:id", middleware.AuthRequired, s.DeleteCollection)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. The relational store is
// required; Redis and the file store are reported but only the stores the
// configuration actually selects gate readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	storeStatus := "not configured"
	if s.store != nil {
		storeStatus = "healthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database":   dbStatus,
			"file_store": storeStatus,
			"redis":      redisStatus,
		},
		"storage_mode": s.config.StorageMode,
		"time":         time.Now(),
	})
}

// NewApp builds the Fiber app with the error handler that renders
// unhandled errors in the standardized error body.
func (s *Server) NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName: "Takopi API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
}

// Start starts the server.
func (s *Server) Start() error {
	app := s.NewApp()
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

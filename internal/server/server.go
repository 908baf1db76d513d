// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"time"

	"kominn/internal/cache"
	"kominn/internal/config"
	"kominn/internal/induct"
	"kominn/internal/middleware"
	"kominn/internal/profile"
	"kominn/internal/repository"
	"kominn/internal/service"
	"kominn/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config *config.Config
	redis  *redis.Client

	suggestionRepo repository.SuggestionRepository
	commentRepo    repository.CommentRepository
	likeRepo       repository.LikeRepository
	goalRepo       repository.GoalRepository
	campaignRepo   repository.CampaignRepository
	postalRepo     repository.PostalRepository
	tenantRepo     repository.TenantConfigRepository

	profileService    *service.ProfileService
	suggestionService *service.SuggestionService
	commentService    *service.CommentService
	likeService       *service.LikeService
	publishService    *service.PublishService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	storeClient := store.New(cfg.StoreURL, cfg.StoreToken)
	dir := profile.New(cfg.ProfileAPIURL, cfg.StoreToken)
	ideas := induct.New(cfg.InductAPIURL)

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, storeClient, dir, ideas, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the clients.
func NewServerWithDeps(cfg *config.Config, storeClient *store.Client, dir service.Directory, ideas service.IdeaAPI, redisClient *redis.Client) (*Server, error) {
	goalRepo := repository.NewGoalRepository(storeClient)
	suggestionRepo := repository.NewSuggestionRepository(storeClient, goalRepo)
	commentRepo := repository.NewCommentRepository(storeClient)
	likeRepo := repository.NewLikeRepository(storeClient)
	campaignRepo := repository.NewCampaignRepository(storeClient)
	postalRepo := repository.NewPostalRepository(storeClient)
	tenantRepo := repository.NewTenantConfigRepository(storeClient)

	server := &Server{
		config:         cfg,
		redis:          redisClient,
		suggestionRepo: suggestionRepo,
		commentRepo:    commentRepo,
		likeRepo:       likeRepo,
		goalRepo:       goalRepo,
		campaignRepo:   campaignRepo,
		postalRepo:     postalRepo,
		tenantRepo:     tenantRepo,
	}

	server.profileService = service.NewProfileService(dir, postalRepo)
	server.suggestionService = service.NewSuggestionService(suggestionRepo, server.profileService)
	server.commentService = service.NewCommentService(commentRepo, suggestionRepo, dir)
	server.likeService = service.NewLikeService(likeRepo, suggestionRepo)
	server.publishService = service.NewPublishService(suggestionRepo, tenantRepo, ideas)

	middleware.InitMiddleware(cfg)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and actor ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus request metrics and the /metrics endpoint
	middleware.RegisterMetrics(app)

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "KomInn Backend Metrics Dashboard",
	}))

	// Suggestion routes. Specific paths are registered before the generic
	// /:id route so "mine" and "search" are never captured as ids.
	suggestions := api.Group("/suggestions")
	suggestions.Get("/", s.GetSuggestions)
	suggestions.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchSuggestions)
	suggestions.Get("/mine", middleware.AuthRequired, s.GetMySuggestions)
	suggestions.Post("/", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "submit_suggestion"), s.SubmitSuggestion)
	suggestions.Get("/:id/comments", s.GetComments)
	suggestions.Post("/:id/comments", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 10, time.Minute, "add_comment"), s.AddComment)
	suggestions.Post("/:id/like", middleware.AuthRequired, s.ToggleLike)
	suggestions.Post("/:id/publish", middleware.AuthRequired, middleware.RateLimit(
		s.redis, 5, time.Minute, "publish"), s.PublishSuggestion)
	suggestions.Get("/:id", s.GetSuggestion)

	api.Get("/goals", s.GetGoals)
	api.Get("/campaigns", s.GetCampaigns)

	api.Get("/profile/me", middleware.AuthRequired, s.GetMyProfile)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. The backing record store
// is remote and is not probed here; only the local dependencies are checked.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	storeStatus := "configured"
	if s.config.StoreURL == "" {
		storeStatus = "unconfigured"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if redisStatus == "unhealthy" || storeStatus == "unconfigured" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

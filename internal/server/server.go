// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"gaethering/internal/cache"
	"gaethering/internal/config"
	"gaethering/internal/database"
	"gaethering/internal/featureflags"
	"gaethering/internal/mail"
	"gaethering/internal/middleware"
	"gaethering/internal/models"
	"gaethering/internal/repository"
	"gaethering/internal/service"
	"gaethering/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	store          *storage.FileStore
	featureFlags   *featureflags.Manager
	categoryRepo   repository.CategoryRepository
	memberService  *service.MemberService
	postService    *service.PostService
	commentService *service.CommentService
	heartService   *service.HeartService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	memberRepo := repository.NewMemberRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	heartRepo := repository.NewHeartRepository(db)
	emailAuthRepo := repository.NewEmailAuthRepository(redisClient)

	prom := middleware.InitMetrics("gaethering-api")
	flags := featureflags.NewManager(cfg.FeatureFlags)
	store := storage.NewFileStore(cfg)

	var mailer mail.Mailer
	if cfg.SMTPHost != "" && flags.EnabledOrMissing(featureflags.FlagSMTPMail, 0) {
		mailer = mail.NewSMTPMailer(cfg)
	} else {
		mailer = mail.NewLogMailer()
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		store:          store,
		featureFlags:   flags,
		categoryRepo:   categoryRepo,
	}
	server.memberService = service.NewMemberService(memberRepo, emailAuthRepo, mailer, store, redisClient, cfg)
	server.postService = service.NewPostService(postRepo, categoryRepo, store)
	server.commentService = service.NewCommentService(commentRepo, postRepo)
	server.heartService = service.NewHeartService(heartRepo, postRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and Member ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
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
		// Never rate-limit preflight requests; they should be handled by CORS.
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
	api := app.Group(s.apiPrefix())

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Gaethering Backend Metrics Dashboard",
	}))

	// Uploaded images are served from the object store's local directory.
	app.Static("/media", s.store.BaseDir())

	authRequired := s.AuthRequired()

	// Member routes
	members := api.Group("/members")
	members.Post("/sign-up", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "sign_up"), s.SignUp)
	members.Post("/sign-in", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "sign_in"), s.SignIn)
	members.Post("/auth/reissue", s.Reissue)
	members.Post("/sign-out", authRequired, s.SignOut)
	members.Post("/email-auth", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "email_auth_send"), s.SendEmailAuthCode)
	members.Post("/email-confirm", authRequired, s.ConfirmEmailAuth)
	members.Get("/:memberId/profile", s.GetOtherProfile)

	// The signed-in member's own profile lives under /mypage.
	api.Get("/mypage", authRequired, s.GetOwnProfile)
	api.Patch("/mypage/nickname", authRequired, s.ModifyNickname)

	// Board routes
	boards := api.Group("/boards")
	boards.Get("/categories", s.GetCategories)
	// Literal /categories segment must be registered before the generic /:postId routes.
	boards.Post("/categories/:categoryId/posts", authRequired, s.WritePost)
	boards.Get("/categories/:categoryId/posts", s.GetPosts)
	boards.Get("/categories/:categoryId/posts/:postId", s.GetOnePost)
	boards.Put("/:postId", authRequired, s.UpdatePost)
	boards.Delete("/:postId", authRequired, s.DeletePost)
	boards.Post("/:postId/images", authRequired, s.UploadPostImage)
	boards.Delete("/:postId/images/:imageId", authRequired, s.DeletePostImage)
	boards.Post("/:postId/hearts", authRequired, s.ToggleHeart)
	boards.Post("/:postId/comments", authRequired, middleware.RateLimit(
		s.redis, 10, time.Minute, "write_comment"), s.WriteComment)
	boards.Get("/:postId/comments", s.GetComments)
	boards.Put("/:postId/comments/:commentId", authRequired, s.UpdateComment)
	boards.Delete("/:postId/comments/:commentId", authRequired, s.DeleteComment)

	// Feature flag snapshot for the signed-in member
	api.Get("/feature-flags", authRequired, s.GetFeatureFlags)
}

func (s *Server) apiPrefix() string {
	if s.config.APIPrefix != "" {
		return s.config.APIPrefix
	}
	return "/api"
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.config.JWTSecret, s.redis)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
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

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis holds auth codes and the token blacklist, so it is required
		// for full readiness.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// GetFeatureFlags returns the evaluated flag snapshot for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)
	return c.JSON(fiber.Map{"flags": s.featureFlags.Snapshot(memberID)})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Gaethering API",
		BodyLimit: 25 * 1024 * 1024, // multipart sign-up and board image uploads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
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

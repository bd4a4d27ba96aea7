// Package server contains the HTTP handlers for the application's API
// endpoints.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tekblog/internal/cache"
	"tekblog/internal/config"
	"tekblog/internal/database"
	"tekblog/internal/mailer"
	"tekblog/internal/middleware"
	"tekblog/internal/models"
	"tekblog/internal/observability"
	"tekblog/internal/repository"
	"tekblog/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
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
	mail           mailer.Mailer
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	tagRepo        repository.TagRepository
	reportRepo     repository.ReportRepository
	relationships  *service.RelationshipService
	moderation     *service.ModerationService
	search         *service.SearchService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and a miniredis-backed client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	mail := mailer.NewSMTPMailer(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: fiberprometheus.New("tekblog-api"),
		mail:           mail,
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		tagRepo:        repository.NewTagRepository(db),
		reportRepo:     repository.NewReportRepository(db),
	}
	server.relationships = service.NewRelationshipService(db)
	server.moderation = service.NewModerationService(db, mail)
	server.search = service.NewSearchService(server.userRepo, server.postRepo, server.tagRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Propagate the request ID into the user context
	app.Use(middleware.ContextMiddleware())

	// Per-request server spans
	app.Use(middleware.Tracing())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
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
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Envelope{
				Success: false,
				Message: "Too many requests, please try again later.",
				Code:    fiber.StatusTooManyRequests,
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

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup",
		middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"),
		middleware.DoNotAllowFields("activeStatus", "followers", "following",
			"isEmailVerified", "role", "savedPosts", "likedPosts"),
		middleware.MustHaveFields("username", "password", "name", "email", "major"),
		s.Signup)
	auth.Post("/signin",
		middleware.RateLimit(s.redis, 10, 5*time.Minute, "signin"),
		middleware.MustHaveFields("username", "password"),
		s.Signin)

	// User routes
	user := api.Group("/user")
	user.Get("/", middleware.AuthRequired, s.GetCurrentUser)
	user.Put("/", middleware.AuthRequired,
		middleware.DoNotAllowFields("role", "activeStatus", "followers", "following"),
		s.UpdateCurrentUser)
	user.Put("/change-password", middleware.AuthRequired,
		middleware.MustHaveFields("oldPassword", "newPassword"),
		s.ChangePassword)
	user.Put("/:user_id/follow", middleware.AuthRequired, s.FollowUser)
	user.Get("/:user_id/follow", s.GetFollow)
	user.Get("/:user_id", s.GetUserByID)

	// Post routes. Specific paths go before the generic /:id routes.
	post := api.Group("/post")
	post.Post("/", middleware.AuthRequired,
		middleware.DoNotAllowFields("activeStatus", "author", "comments", "likes"),
		middleware.MustHaveFields("content", "tags", "title"),
		s.CreatePost)
	post.Get("/", s.GetPosts)
	post.Get("/hot", s.GetHotPost)
	post.Get("/user", middleware.AuthRequired, s.GetUserPosts)
	post.Get("/tag", s.GetPostsByTag)
	post.Put("/like", middleware.AuthRequired, s.LikePost)
	post.Put("/save", middleware.AuthRequired, s.SavePost)
	post.Get("/:id", s.GetPost)
	post.Put("/:id", middleware.AuthRequired,
		middleware.DoNotAllowFields("activeStatus", "author", "comments", "createdAt", "likes"),
		s.UpdatePost)
	post.Delete("/:id", middleware.AuthRequired, s.DeletePost)

	// Comment routes
	comment := api.Group("/comment")
	comment.Post("/post/:postId", middleware.AuthRequired,
		middleware.MustHaveFields("content"),
		s.CreateComment)
	comment.Get("/post/:postId", s.GetComments)
	comment.Put("/:id/like", middleware.AuthRequired, s.LikeComment)
	comment.Put("/:id", middleware.AuthRequired,
		middleware.MustHaveFields("content"),
		s.UpdateComment)
	comment.Delete("/:id", middleware.AuthRequired, s.DeleteComment)

	// Tag routes
	tag := api.Group("/tag")
	tag.Post("/", middleware.AuthRequired,
		middleware.MustHaveFields("title"),
		s.CreateTag)
	tag.Get("/some", s.GetSomeTags)
	tag.Get("/", s.GetTags)

	// Search
	api.Get("/search",
		middleware.RateLimit(s.redis, 30, time.Minute, "search"),
		s.Search)

	// Reports
	report := api.Group("/report")
	report.Post("/", middleware.AuthRequired,
		middleware.DoNotAllowFields("createdAt", "updatedAt", "reporter"),
		middleware.MustHaveFields("content", "title", "objectType"),
		s.CreateReport)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthRequired, s.AdminRequired)
	admin.Get("/report/:id", s.GetReport)
	admin.Get("/report", s.GetReports)
	admin.Put("/block/user", s.BlockUser)
	admin.Put("/block/post", s.BlockPost)
	admin.Put("/remove/user", middleware.MustHaveFields("reason"), s.RemoveUser)
	admin.Put("/remove/post", middleware.MustHaveFields("reason"), s.RemovePost)
	admin.Put("/return/user", s.ReturnUser)
	admin.Put("/return/post", s.ReturnPost)

	// Email verification
	verify := api.Group("/verify")
	verify.Post("/email/send", middleware.AuthRequired, s.SendVerifyEmail)
	verify.Get("/email", s.VerifyEmail)
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
		// The API degrades gracefully without Redis; report but don't fail.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// AdminRequired rejects non-admin callers with 403. Must be placed after
// AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if user.Role != models.RoleAdmin {
		return models.RespondWithError(c,
			models.NewForbiddenError("You are not admin."))
	}

	return c.Next()
}

// optionalUserID extracts the caller's ID from the Authorization header if a
// valid token is present, without enforcing authentication.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0
	}
	return uint(userID)
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "TekBlog API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			observability.GlobalLogger.Error("unhandled error", "error", err)
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	observability.GlobalLogger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.GlobalLogger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.GlobalLogger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			observability.GlobalLogger.Error("error closing redis", "error", rerr)
		}
	}

	observability.GlobalLogger.Info("server shutdown complete")
	return nil
}

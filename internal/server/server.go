// Package server
//
// @title Barrens Blog API
// @version 1.0
// @description Fan blog API with cookie sessions
// @host localhost:5000
// @BasePath /
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/barrens-blog/barrens/internal/auth"
	"github.com/barrens-blog/barrens/internal/config"
	"github.com/barrens-blog/barrens/internal/database"
	"github.com/barrens-blog/barrens/internal/models"
	"github.com/barrens-blog/barrens/internal/posts"
	"github.com/barrens-blog/barrens/internal/revocations"
	"github.com/barrens-blog/barrens/internal/seed"
	"github.com/barrens-blog/barrens/internal/users"
	"github.com/barrens-blog/barrens/internal/workers"
)

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	db           *gorm.DB
	config       *config.Config
	logger       zerolog.Logger
	validator    *validator.Validate
	verifier     *auth.Verifier
	guard        *auth.Guard
	revocations  *revocations.Store
	postsService *posts.Service
	usersService *users.Service
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger) (*Server, error) {
	db, err := database.Open(cfg.Database.URL, zlog)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.GeneratedSecret {
		zlog.Warn().Msg("JWT_SECRET not set - using a generated secret, sessions end when the process restarts")
	}

	codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	// Initialize validator
	validate := validator.New()

	// Register custom validators
	validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.IsValidCategory(fl.Field().String())
	})

	usersService := users.NewService(db, zlog)
	denylist := revocations.NewStore(db)

	server := &Server{
		db:           db,
		config:       cfg,
		logger:       zlog,
		validator:    validate,
		verifier:     auth.NewVerifier(usersService.Store(), auth.NewHasher(cfg.Auth.BcryptCost), codec, denylist, zlog),
		guard:        auth.NewGuard(codec, usersService.Store(), denylist),
		revocations:  denylist,
		postsService: posts.NewService(db, zlog),
		usersService: usersService,
	}

	if cfg.Seed.File != "" {
		if err := server.applySeed(cfg.Seed.File); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

func (s *Server) applySeed(path string) error {
	file, err := seed.Load(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	created, err := seed.Apply(ctx, file, s.verifier, s.logger)
	if err != nil {
		return err
	}
	s.logger.Info().Str("file", path).Int("created", created).Msg("Seed applied")
	return nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	switch s.config.Server.Environment {
	case config.EnvDevelopment:
		gin.SetMode(gin.DebugMode)
	case config.EnvTest:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Add middleware
	s.router.Use(s.recoveryMiddleware())
	s.router.Use(s.loggingMiddleware())

	// Browser client sends the session cookie cross-origin
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.config.Server.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	public := PublicMiddleware(s.guard, s.logger)
	authenticated := AuthenticatedMiddleware(s.guard, s.logger)
	adminOnly := AdminOnlyMiddleware(s.guard, s.logger)

	api := s.router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		authRoutes.POST("/register", public, s.register)
		authRoutes.POST("/login", public, s.login)
		authRoutes.GET("/logout", public, s.logout)
		authRoutes.GET("/me", authenticated, s.getCurrentUser)

		postRoutes := api.Group("/posts")
		postRoutes.GET("", public, s.listPosts)
		postRoutes.GET("/:id", public, s.getPost)
		postRoutes.POST("", adminOnly, s.createPost)
		postRoutes.PUT("/:id", authenticated, s.updatePost)
		postRoutes.DELETE("/:id", authenticated, s.deletePost)
		postRoutes.POST("/:id/comments", authenticated, s.addComment)
		postRoutes.POST("/:id/comments/:commentId/like", authenticated, s.likeComment)
		postRoutes.GET("/:id/comments/:commentId/liked", authenticated, s.checkLiked)

		userRoutes := api.Group("/users")
		userRoutes.GET("/stats/:userId", authenticated, s.getUserStats)
		userRoutes.PUT("/update/avatar", authenticated, s.changeAvatar)
		userRoutes.GET("", adminOnly, s.listUsers)
		userRoutes.DELETE("/:id", adminOnly, s.deleteUser)
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "barrens-api",
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// GetDB returns the database connection
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Close releases the database connection
func (s *Server) Close() error {
	return database.Close(s.db)
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	port := ":" + s.config.Server.Port

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	purge, err := workers.StartRevocationPurge(s.config.Auth.RevocationPurgeSchedule, s.revocations, s.logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              port,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("port", port).Str("environment", s.config.Server.Environment).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	case err := <-serveErr:
		s.logger.Error().Err(err).Msg("HTTP server error")
		<-purge.Stop().Done()
		_ = s.Close()
		return err
	}

	// Let an in-flight purge finish before the database goes away
	<-purge.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	s.logger.Info().Msg("Closing database connection...")
	if err := s.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Error closing database")
	} else {
		s.logger.Info().Msg("Database closed successfully")
	}

	return nil
}

// @title QuizHub API
// @version 1.0
// @description API for QuizHub: multiple-choice quizzes, scored submissions and attempt history.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize, or rely on the session_token cookie.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "quizhub/cmd/api/docs"
	"quizhub/internal/adapter"
	"quizhub/internal/auth"
	"quizhub/internal/cache"
	"quizhub/internal/config"
	"quizhub/internal/database"
	"quizhub/internal/domain"
	"quizhub/internal/handler"
	"quizhub/internal/logger"
	"quizhub/internal/middleware"
	"quizhub/internal/repository"
	"quizhub/internal/service"
	"quizhub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// newCache connects to Redis when an address is configured. Without Redis
// answer keys are read from the database on every submission and logout
// revocation is disabled.
func newCache(ctx context.Context, cfg config.RedisConfig) domain.Cache {
	appLogger := logger.Get()
	if cfg.Address == "" {
		appLogger.Warn("redis.address not set; running without cache")
		return adapter.NewNoopCache()
	}
	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		appLogger.Error("Failed to connect to Redis; running without cache", zap.Error(err))
		return adapter.NewNoopCache()
	}
	appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return adapter.NewRedisCacheAdapter(client)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cacheStore := newCache(ctx, cfg.Redis)

	quizRepository := repository.NewSQLXQuizRepository(db)
	userRepository := repository.NewSQLXUserRepository(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWT.SecretKey, cfg.Auth.JWT.AccessTokenTTL, cfg.Auth.JWT.RefreshTokenTTL)
	if err != nil {
		appLogger.Fatal("Failed to create token manager; set auth.jwt.secret_key", zap.Error(err))
	}

	oauthProvider, err := service.NewOAuthProvider(cfg.Auth.OAuth)
	switch {
	case errors.Is(err, service.ErrOAuthNotConfigured):
		appLogger.Info("Social login disabled; auth.oauth.client_id not set")
	case err != nil:
		appLogger.Fatal("Failed to configure OAuth provider", zap.Error(err))
	default:
		appLogger.Info("Social login enabled", zap.String("provider", oauthProvider.Name()))
	}

	answerKeys := service.NewAnswerKeyLoader(quizRepository, cacheStore, cfg.Cache.AnswerKeyTTL)
	quizService := service.NewQuizService(quizRepository, txManager, answerKeys, cfg.DB.TxTimeout)
	attemptService := service.NewAttemptService(answerKeys, attemptRepository, quizRepository, txManager)
	userService := service.NewUserService(userRepository, attemptRepository, cfg.Auth.BcryptCost)
	authService, err := service.NewAuthService(userRepository, tokens, cacheStore, oauthProvider, cfg.Auth.BcryptCost)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	appLogger.Info("Services initialized")

	v := validation.NewValidator()

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: cfg.Server.AllowOrigins != "*",
		MaxAge:           300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app, handler.Handlers{
		Quiz:          handler.NewQuizHandler(quizService, v),
		Attempt:       handler.NewAttemptHandler(attemptService),
		Auth:          handler.NewAuthHandler(authService, cfg.Server, v),
		User:          handler.NewUserHandler(userService, v),
		Authenticator: authService,
		Validation:    middleware.NewValidationMiddleware(v),
	})

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}

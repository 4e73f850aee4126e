// Package bootstrap assembles the application: configuration, database,
// dependency wiring, and the router.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/casportal/casportal/internal/app/auth"
	appControllers "github.com/casportal/casportal/internal/app/controllers"
	appMigrations "github.com/casportal/casportal/internal/app/migrations"
	appRepos "github.com/casportal/casportal/internal/app/repositories"
	appRoutes "github.com/casportal/casportal/internal/app/routes"
	appServices "github.com/casportal/casportal/internal/app/services"
	"github.com/casportal/casportal/internal/config"
	"github.com/casportal/casportal/internal/db"
	appMiddleware "github.com/casportal/casportal/internal/middleware"
	pkgAuth "github.com/casportal/casportal/internal/pkg/auth"
	"github.com/casportal/casportal/internal/pkg/email"
	"github.com/casportal/casportal/internal/pkg/filestorage"
	"github.com/casportal/casportal/internal/pkg/helpers"
	"github.com/casportal/casportal/internal/pkg/logger"
	"github.com/casportal/casportal/internal/pkg/websocket"
	"github.com/casportal/casportal/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services               *appServices.Services
	AuthController         *appControllers.AuthController
	ProfileController      *appControllers.ProfileController
	GroupController        *appControllers.GroupController
	ReflectionController   *appControllers.ReflectionController
	CommentController      *appControllers.CommentController
	NotificationController *appControllers.NotificationController
	TagController          *appControllers.TagController
	ReportController       *appControllers.ReportController
	ChatController         *appControllers.ChatController
	AuthMiddleware         *appMiddleware.AuthMiddleware
	Repos                  *appRepos.Repositories
	JWTService             *pkgAuth.JWTService
	AuthzService           *appAuth.AuthorizationService
	FileStorage            *filestorage.LocalStorage
	Hub                    *websocket.Hub
	WSHandler              *websocket.Handler
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	// Run migrations
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	// Create default data after migrations
	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	// Initialize file storage; the stored relative paths are served from
	// the /uploads static route.
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 30*time.Minute),
		TokenIssuer:    cfg.JWT.Issuer,
		TokenAudience:  cfg.JWT.Audience,
	})

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.ProfileRepository,
		deps.Repos.GroupRepository,
		lgr.With().Str("service", "authz").Logger(),
	)

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		FromName:   cfg.SMTP.FromName,
		FromEmail:  cfg.SMTP.FromEmail,
		ConfirmURL: cfg.SMTP.ConfirmURL,
	}, lgr.With().Str("service", "email").Logger())

	deps.Services = appServices.NewServices(
		deps.Repos,
		deps.JWTService,
		mailer,
		deps.FileStorage,
		deps.AuthzService,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.ProfileRepository, lgr)

	deps.AuthController = appControllers.NewAuthController(deps.Services.AuthService)
	deps.ProfileController = appControllers.NewProfileController(deps.Services.ProfileService)
	deps.GroupController = appControllers.NewGroupController(deps.Services.GroupService)
	deps.ReflectionController = appControllers.NewReflectionController(deps.Services.ReflectionService, deps.Services.ReportService)
	deps.CommentController = appControllers.NewCommentController(deps.Services.CommentService, deps.Services.ReportService)
	deps.NotificationController = appControllers.NewNotificationController(deps.Services.NotificationService)
	deps.TagController = appControllers.NewTagController(deps.Services.TagService)
	deps.ReportController = appControllers.NewReportController(deps.Services.ReportService)
	deps.ChatController = appControllers.NewChatController(deps.Services.MessageService)

	// The relay hub runs for the lifetime of the process
	deps.Hub = websocket.NewHub(lgr.With().Str("component", "hub").Logger())
	go deps.Hub.Run()
	deps.WSHandler = websocket.NewHandler(deps.Hub, deps.Services.MessageService, lgr.With().Str("component", "ws").Logger())

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.ProfileController,
		deps.GroupController,
		deps.ReflectionController,
		deps.CommentController,
		deps.NotificationController,
		deps.TagController,
		deps.ReportController,
		deps.ChatController,
		deps.WSHandler,
		deps.AuthMiddleware,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

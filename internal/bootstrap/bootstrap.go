package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/recruitportal/internal/app/auth"
	appControllers "github.com/yigit/recruitportal/internal/app/controllers"
	appMigrations "github.com/yigit/recruitportal/internal/app/migrations"
	appModels "github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/registry"
	appRepos "github.com/yigit/recruitportal/internal/app/repositories"
	appRoutes "github.com/yigit/recruitportal/internal/app/routes"
	appServices "github.com/yigit/recruitportal/internal/app/services"
	"github.com/yigit/recruitportal/internal/config"
	"github.com/yigit/recruitportal/internal/db"
	appMiddleware "github.com/yigit/recruitportal/internal/middleware"
	pkgAuth "github.com/yigit/recruitportal/internal/pkg/auth"
	"github.com/yigit/recruitportal/internal/pkg/cache"
	"github.com/yigit/recruitportal/internal/pkg/email"
	"github.com/yigit/recruitportal/internal/pkg/filestorage"
	"github.com/yigit/recruitportal/internal/pkg/logger"
	"github.com/yigit/recruitportal/internal/pkg/websocket"
	"github.com/yigit/recruitportal/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Registry           *registry.Registry
	Repos              *appRepos.Repositories
	JWTService         *pkgAuth.JWTService
	AuthzService       *appAuth.AuthorizationService
	ApplicationService appServices.ApplicationService
	EBProfileService   appServices.EBProfileService
	UserService        appServices.UserService
	AuthMiddleware     *appMiddleware.AuthMiddleware
	Limiter            appMiddleware.Limiter
	Hub                *websocket.Hub
	LiveFeed           *websocket.Handler
	Controllers        appRoutes.Controllers
	FileStorage        *filestorage.LocalStorage
	Redis              *redis.Client
	Database           *db.PostgresDB
	Logger             zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.EqualFold(cfg.Logging.Format, "text"),
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds defaults.
func SetupDatabase(ctx context.Context, cfg *config.Config, reg *registry.Registry, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrator"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(ctx, database, reg, cfg.Seed.SuperAdminEmail, lgr); err != nil {
		// Reviews still work without seeded profiles
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// SetupRedis connects to Redis when an address is configured. A nil client
// disables rate limiting.
func SetupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis not configured, rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// The limiter fails open, so a late Redis only delays throttling
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable at startup")
	} else {
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	}
	return client
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, reg *registry.Registry, redisClient *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Registry: reg, Redis: redisClient, Database: database}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, strings.TrimRight(cfg.Server.PublicURL, "/"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.Auth.Secret,
		TokenIssuer: cfg.Auth.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.UserRepository, reg)

	sender := email.NewSMTPSender(email.SMTPConfig{
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		Username:  cfg.Mail.Username,
		Password:  cfg.Mail.Password,
		FromName:  cfg.Mail.FromName,
		FromEmail: cfg.Mail.FromEmail,
		UseTLS:    cfg.Mail.UseTLS,
	}, logger.Component("mail"))
	notifier := appServices.NewNotificationService(sender, reg, cfg.Mail.Organization, cfg.Server.PortalURL, logger.Component("notifications"))

	deps.Hub = websocket.NewHub(logger.Component("livefeed"))

	deps.ApplicationService = appServices.NewApplicationService(
		deps.Repos.ApplicationRepository,
		deps.Repos.EBProfileRepository,
		deps.AuthzService,
		reg,
		notifier,
		deps.FileStorage,
		deps.Hub,
		logger.Component("applications"),
	)
	deps.EBProfileService = appServices.NewEBProfileService(
		deps.Repos.EBProfileRepository,
		reg,
		cache.NewSessionCache[*appModels.EBProfile](cfg.Cache.ProfileTTL),
		logger.Component("ebprofiles"),
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, deps.EBProfileService, reg, logger.Component("users"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)
	// Keep the interface nil without Redis so RateLimit skips the lookup entirely
	if redisClient != nil {
		deps.Limiter = appMiddleware.NewRedisLimiter(redisClient, cfg.RateLimit.TransitionsPerMinute, time.Minute, "rl:transitions")
	}

	deps.LiveFeed = websocket.NewHandler(
		deps.Hub,
		appRoutes.ReviewerSubscriber(deps.AuthMiddleware, deps.AuthzService),
		[]string{cfg.Server.PortalURL},
		logger.Component("livefeed"),
	)

	deps.Controllers = appRoutes.Controllers{
		Application: appControllers.NewApplicationController(deps.ApplicationService),
		EBProfile:   appControllers.NewEBProfileController(deps.EBProfileService),
		User:        appControllers.NewUserController(deps.UserService),
		Registry:    appControllers.NewRegistryController(reg),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.CORS([]string{cfg.Server.PortalURL}),
	)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.Limiter, deps.LiveFeed, deps.Database.Ping)

	return router
}

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/uniconsult/internal/app/controllers"
	appJobs "github.com/yigit/uniconsult/internal/app/jobs"
	appMigrations "github.com/yigit/uniconsult/internal/app/migrations"
	appRepos "github.com/yigit/uniconsult/internal/app/repositories"
	appRoutes "github.com/yigit/uniconsult/internal/app/routes"
	appServices "github.com/yigit/uniconsult/internal/app/services"
	"github.com/yigit/uniconsult/internal/config"
	"github.com/yigit/uniconsult/internal/db"
	appMiddleware "github.com/yigit/uniconsult/internal/middleware"
	pkgAuth "github.com/yigit/uniconsult/internal/pkg/auth"
	"github.com/yigit/uniconsult/internal/pkg/email"
	"github.com/yigit/uniconsult/internal/pkg/helpers"
	"github.com/yigit/uniconsult/internal/pkg/lock"
	"github.com/yigit/uniconsult/internal/pkg/logger"
	"github.com/yigit/uniconsult/internal/pkg/websocket"
	"github.com/yigit/uniconsult/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          appServices.AuthService
	FacultyStatusService appServices.FacultyStatusService
	ConsultationService  appServices.ConsultationService
	AdminService         appServices.AdminService

	Handlers       appRoutes.Handlers
	AuthMiddleware *appMiddleware.AuthMiddleware
	LoginLimiter   *appMiddleware.IPRateLimiter

	Repos      *appRepos.Repositories
	JWTService *pkgAuth.JWTService
	Locker     lock.Locker
	Hub        *websocket.Hub
	Cron       *appJobs.CronManager
	Logger     zerolog.Logger

	// closers release external connections owned by the dependencies, in order
	closers []func() error
}

// Close releases resources opened by BuildDependencies
func (d *Dependencies) Close() error {
	var firstErr error
	for _, c := range d.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.FromFormat(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	// Seeding problems are logged and startup continues
	seedOpts := seed.Options{
		AdminName:     cfg.Seed.AdminName,
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
		DemoFaculty:   cfg.Seed.DemoFaculty,
	}
	if err := seed.CreateDefaultData(ctx, appRepos.NewUserRepository(dbPool), appRepos.NewFacultyStatusRepository(dbPool), seedOpts, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services, controllers and background workers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		SessionExp:  helpers.ParseDuration(cfg.JWT.SessionExpiration, 24*time.Hour),
		TokenIssuer: cfg.JWT.Issuer,
	})

	if cfg.Redis.Enabled {
		redisLock, err := lock.NewRedisLock(context.Background(), lock.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
			return nil, fmt.Errorf("failed to initialize slot lock: %w", err)
		}
		deps.Locker = redisLock
		deps.closers = append(deps.closers, redisLock.Close)
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis slot locks")
	} else {
		deps.Locker = lock.NewMemoryLock()
		lgr.Info().Msg("Using in-process slot locks")
	}

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr)

	deps.Hub = websocket.NewHub(lgr)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.SessionRepository,
		deps.JWTService,
		lgr,
	)
	deps.FacultyStatusService = appServices.NewFacultyStatusService(
		deps.Repos.UserRepository,
		deps.Repos.FacultyStatusRepository,
		deps.Hub,
		lgr,
	)
	deps.ConsultationService = appServices.NewConsultationService(
		deps.Repos.UserRepository,
		deps.Repos.ConsultationRepository,
		deps.Locker,
		mailer,
		appServices.BookingOptions{
			LockTTL:       helpers.ParseDuration(cfg.Booking.LockTTL, 5*time.Second),
			LockWait:      helpers.ParseDuration(cfg.Booking.LockWait, 3*time.Second),
			TxTimeout:     helpers.ParseDuration(cfg.Booking.TxTimeout, 3*time.Second),
			CompleteGrace: helpers.ParseDuration(cfg.Booking.CompleteGrace, time.Hour),
		},
		lgr,
	)
	deps.AdminService = appServices.NewAdminService(
		deps.Repos.UserRepository,
		deps.Repos.FacultyStatusRepository,
		deps.Repos.ConsultationRepository,
		deps.Hub,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService, lgr)
	deps.LoginLimiter = appMiddleware.NewIPRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	deps.Handlers = appRoutes.Handlers{
		Auth:          appControllers.NewAuthController(deps.AuthService, cfg.Server.SecureCookies, lgr),
		Consultations: appControllers.NewConsultationController(deps.ConsultationService, lgr),
		FacultyStatus: appControllers.NewFacultyStatusController(deps.FacultyStatusService, lgr),
		Admin:         appControllers.NewAdminController(deps.AdminService, lgr),
		Health:        appControllers.NewHealthController(dbPool, lgr),
		StatusFeed:    websocket.NewHandler(deps.Hub, lgr),
	}

	deps.Cron = appJobs.NewCronManager(
		deps.ConsultationService,
		deps.AuthService,
		appJobs.Schedules{
			Completion:     cfg.Jobs.CompletionSchedule,
			SessionCleanup: cfg.Jobs.SessionCleanupSchedule,
		},
		lgr,
	)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Metrics(),
		deps.AuthMiddleware.PageGuard(),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware, deps.LoginLimiter)

	router.NoRoute(appMiddleware.StaticPages(cfg.Server.WebRoot, lgr))
	if cfg.Server.WebRoot != "" {
		lgr.Info().Str("path", cfg.Server.WebRoot).Msg("Serving web pages")
	}

	return router, nil
}

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
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yigit/institute/internal/app/cache"
	appControllers "github.com/yigit/institute/internal/app/controllers"
	"github.com/yigit/institute/internal/app/grading"
	appMigrations "github.com/yigit/institute/internal/app/migrations"
	appRepos "github.com/yigit/institute/internal/app/repositories"
	appRoutes "github.com/yigit/institute/internal/app/routes"
	appServices "github.com/yigit/institute/internal/app/services"
	"github.com/yigit/institute/internal/config"
	"github.com/yigit/institute/internal/db"
	appMiddleware "github.com/yigit/institute/internal/middleware"
	pkgAuth "github.com/yigit/institute/internal/pkg/auth"
	"github.com/yigit/institute/internal/pkg/helpers"
	"github.com/yigit/institute/internal/pkg/logger"
	"github.com/yigit/institute/internal/pkg/monitoring"
	"github.com/yigit/institute/internal/pkg/tracing"
	"github.com/yigit/institute/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	QuestionService    appServices.QuestionService
	ExamService        appServices.ExamService
	AnswerService      appServices.AnswerService
	ResultService      appServices.ResultService
	QuestionController *appControllers.QuestionController
	ExamController     *appControllers.ExamController
	AuthMiddleware     *appMiddleware.AuthMiddleware
	Repos              *appRepos.Repositories
	JWTService         *pkgAuth.JWTService
	ExamCache          cache.ExamCache
	Redis              *redis.Client // nil when the cache is disabled
	Logger             zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}

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
		File: logger.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
		},
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
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
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	deps.ExamCache = cache.NewNoopExamCache()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to initialize exam cache")
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		deps.Redis = client
		deps.ExamCache = cache.NewRedisExamCache(client, cfg.Redis.ExamCacheTTL)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	repos := deps.Repos
	deps.QuestionService = appServices.NewQuestionService(
		repos.QuestionRepository,
		repos.CourseRepository,
		deps.ExamCache,
		cfg.Exam.OptionDelimiter,
		lgr.With().Str("service", "question").Logger(),
	)
	deps.ExamService = appServices.NewExamService(
		repos.ExamRepository,
		repos.QuestionRepository,
		repos.CourseRepository,
		deps.ExamCache,
		appServices.ExamComposition{
			MultipleChoiceCount: cfg.Exam.MultipleChoiceCount,
			TrueFalseCount:      cfg.Exam.TrueFalseCount,
		},
		lgr.With().Str("service", "exam").Logger(),
	)
	deps.AnswerService = appServices.NewAnswerService(
		repos.AnswerRepository,
		repos.ExamRepository,
		repos.StudentRepository,
		grading.ExactMatch,
		lgr.With().Str("service", "answer").Logger(),
	)
	deps.ResultService = appServices.NewResultService(
		repos.AnswerRepository,
		repos.ExamRepository,
		repos.StudentRepository,
		repos.EnrollmentRepository,
		lgr.With().Str("service", "result").Logger(),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.QuestionController = appControllers.NewQuestionController(deps.QuestionService)
	deps.ExamController = appControllers.NewExamController(deps.ExamService, deps.AnswerService, deps.ResultService)

	return deps, nil
}

// SeedData creates the demo data when enabled. Outside production it also logs
// demo access tokens.
func SeedData(ctx context.Context, cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) {
	if !cfg.Seed.Enabled {
		return
	}

	directory := seed.NewRepositoryDirectory(deps.Repos)
	if err := seed.CreateDefaultData(ctx, directory, deps.QuestionService, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	if !cfg.IsProduction() {
		if err := seed.LogDemoTokens(ctx, directory, deps.JWTService, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to issue demo tokens")
		}
	}
}

// SetupRouter configures the Gin engine with middleware and routes. ctx bounds
// background work started by middleware.
func SetupRouter(ctx context.Context, cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(),
	)
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}
	if cfg.Metrics.Enabled {
		monitoring.Init()
		router.Use(monitoring.MetricsMiddleware())
		router.GET("/metrics", monitoring.PrometheusHandler())
	}
	router.Use(
		appMiddleware.Secure(),
		appMiddleware.CORS(cfg.AllowedOrigins()),
	)

	answerLimiter := appMiddleware.RateLimiter(ctx, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	appRoutes.SetupRouter(router,
		deps.QuestionController,
		deps.ExamController,
		deps.AuthMiddleware,
		answerLimiter,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

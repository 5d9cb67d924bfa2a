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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/eparask/courselab/internal/app/controllers"
	appMigrations "github.com/eparask/courselab/internal/app/migrations"
	appRepos "github.com/eparask/courselab/internal/app/repositories"
	appRoutes "github.com/eparask/courselab/internal/app/routes"
	appServices "github.com/eparask/courselab/internal/app/services"
	"github.com/eparask/courselab/internal/config"
	"github.com/eparask/courselab/internal/db"
	appMiddleware "github.com/eparask/courselab/internal/middleware"
	pkgAuth "github.com/eparask/courselab/internal/pkg/auth"
	"github.com/eparask/courselab/internal/pkg/cache"
	"github.com/eparask/courselab/internal/pkg/helpers"
	"github.com/eparask/courselab/internal/pkg/logger"
	"github.com/eparask/courselab/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos *appRepos.Repositories

	AuthService            *appServices.AuthService
	CourseService          *appServices.CourseService
	CourseSemesterService  *appServices.CourseSemesterService
	LabSessionService      *appServices.LabSessionService
	FinalAssignmentService *appServices.FinalAssignmentService
	DashboardService       *appServices.DashboardService
	ExportService          *appServices.ExportService
	StudentService         *appServices.StudentService

	AuthController            *appControllers.AuthController
	CourseController          *appControllers.CourseController
	CourseSemesterController  *appControllers.CourseSemesterController
	LabSessionController      *appControllers.LabSessionController
	FinalAssignmentController *appControllers.FinalAssignmentController
	DashboardController       *appControllers.DashboardController
	ExportController          *appControllers.ExportController
	StudentController         *appControllers.StudentController

	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	Cache          *cache.Client
	Logger         zerolog.Logger
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

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Pool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

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

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	if cfg.Redis.Enabled {
		cacheClient, err := cache.NewClient(cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to Redis")
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		deps.Cache = cacheClient
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache enabled")
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(deps.Repos.User, deps.Repos.Token, deps.JWTService, lgr)
	deps.CourseService = appServices.NewCourseService(deps.Repos.Course, lgr)
	deps.CourseSemesterService = appServices.NewCourseSemesterService(deps.Repos.CourseSemester, deps.Repos.Course, deps.Repos.User, lgr)
	deps.LabSessionService = appServices.NewLabSessionService(deps.Repos.LabSession, deps.Repos.CourseSemester, lgr)
	deps.FinalAssignmentService = appServices.NewFinalAssignmentService(deps.Repos.FinalAssignment, deps.Repos.CourseSemester, lgr)
	deps.DashboardService = appServices.NewDashboardService(deps.Repos.CourseSemester, deps.Repos.Stats, deps.Cache, cfg.GetStatsTTL(), lgr)
	deps.ExportService = appServices.NewExportService(deps.Repos.CourseSemester, deps.Repos.Stats, lgr)
	deps.StudentService = appServices.NewStudentService(deps.Repos.CourseSemester, deps.Repos.FinalAssignment, deps.Repos.Stats, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.CourseController = appControllers.NewCourseController(deps.CourseService, lgr)
	deps.CourseSemesterController = appControllers.NewCourseSemesterController(deps.CourseSemesterService, lgr)
	deps.LabSessionController = appControllers.NewLabSessionController(deps.LabSessionService, lgr)
	deps.FinalAssignmentController = appControllers.NewFinalAssignmentController(deps.FinalAssignmentService, lgr)
	deps.DashboardController = appControllers.NewDashboardController(deps.DashboardService, lgr)
	deps.ExportController = appControllers.NewExportController(deps.DashboardService, deps.ExportService, lgr)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService, lgr)

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

	router := gin.Default()

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CourseController,
		deps.CourseSemesterController,
		deps.LabSessionController,
		deps.FinalAssignmentController,
		deps.DashboardController,
		deps.ExportController,
		deps.StudentController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

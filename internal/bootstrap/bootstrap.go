package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/kindergarten-canvas/backend/internal/app/auth"
	appControllers "github.com/kindergarten-canvas/backend/internal/app/controllers"
	appMigrations "github.com/kindergarten-canvas/backend/internal/app/migrations"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	appRepos "github.com/kindergarten-canvas/backend/internal/app/repositories"
	appRoutes "github.com/kindergarten-canvas/backend/internal/app/routes"
	appServices "github.com/kindergarten-canvas/backend/internal/app/services"
	"github.com/kindergarten-canvas/backend/internal/config"
	"github.com/kindergarten-canvas/backend/internal/db"
	appMiddleware "github.com/kindergarten-canvas/backend/internal/middleware"
	pkgAuth "github.com/kindergarten-canvas/backend/internal/pkg/auth"
	"github.com/kindergarten-canvas/backend/internal/pkg/autosave"
	"github.com/kindergarten-canvas/backend/internal/pkg/cache"
	"github.com/kindergarten-canvas/backend/internal/pkg/filestorage"
	"github.com/kindergarten-canvas/backend/internal/pkg/helpers"
	"github.com/kindergarten-canvas/backend/internal/pkg/logger"
	"github.com/kindergarten-canvas/backend/internal/pkg/ratelimit"
	"github.com/kindergarten-canvas/backend/internal/pkg/websocket"
	"github.com/kindergarten-canvas/backend/internal/seed"
)

// TokenCleanupInterval is how often expired refresh tokens are purged.
const TokenCleanupInterval = time.Hour

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos *appRepos.Repositories

	JWTService *pkgAuth.JWTService
	Hasher     *pkgAuth.PasswordHasher
	Authz      *appAuth.AuthorizationService

	AuthService    appServices.AuthService
	UserService    appServices.UserService
	NewsService    appServices.NewsService
	TeacherService appServices.TeacherService
	StatsService   appServices.StatsService
	UploadService  appServices.UploadService

	AutoSave *autosave.Manager[websocket.Draft]
	Hub      *websocket.Hub

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimitStore ratelimit.Store

	Logger zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Format: logger.Format(cfg.Logging.Format),
	})
	lgr.Info().
		Str("environment", cfg.Environment).
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to Postgres and applies pending migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); err != nil {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr.With().Str("component", "migrator").Logger())
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SeedDefaultData creates the default admin account. Failures are logged and
// do not stop startup.
func SeedDefaultData(ctx context.Context, cfg *config.Config, userRepo appRepos.IUserRepository, lgr zerolog.Logger) {
	hasher := pkgAuth.NewPasswordHasher(cfg.Bcrypt.Cost)
	admin := seed.Admin{Email: cfg.Admin.Email, Password: cfg.Admin.Password}
	if err := seed.CreateDefaultData(ctx, userRepo, hasher, admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRedis connects to REDIS_URL. It returns nil when Redis is not
// configured or unreachable, and callers fall back to in-memory state.
func SetupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) *redis.Client {
	if strings.TrimSpace(cfg.Redis.URL) == "" {
		lgr.Info().Msg("REDIS_URL not set, using in-memory rate limiting and no cache")
		return nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		lgr.Warn().Err(err).Msg("Invalid REDIS_URL, falling back to memory")
		return nil
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, client); err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, falling back to memory")
		_ = client.Close()
		return nil
	}

	lgr.Info().Str("addr", opts.Addr).Msg("Redis connection established")
	return client
}

func autosaveConfig(cfg *config.Config) autosave.Config {
	return autosave.Config{
		Debounce:   helpers.ParseDuration(cfg.AutoSave.Debounce, autosave.DefaultConfig.Debounce),
		Retry:      helpers.ParseDuration(cfg.AutoSave.RetryDelay, autosave.DefaultConfig.Retry),
		SavedReset: helpers.ParseDuration(cfg.AutoSave.SavedReset, autosave.DefaultConfig.SavedReset),
	}
}

func publicBaseURL(cfg *config.Config) string {
	if cfg.Server.PublicURL != "" {
		return strings.TrimRight(cfg.Server.PublicURL, "/")
	}
	return "http://localhost:" + cfg.Server.Port
}

// BuildDependencies initializes application repositories, services, and controllers.
// dbPool and redisClient may be nil; readiness checks then skip them.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, dbPool *pgxpool.Pool, redisClient *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	// Uploaded files are served by the router under /uploads.
	fileStorage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath, publicBaseURL(cfg)+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		AccessSecret:    cfg.JWT.Secret,
		RefreshSecret:   cfg.JWT.RefreshSecret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 15*time.Minute),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 7*24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.Hasher = pkgAuth.NewPasswordHasher(cfg.Bcrypt.Cost)
	deps.Authz = appAuth.NewAuthorizationService(repos.UserRepository)

	if redisClient != nil {
		deps.RateLimitStore = ratelimit.NewRedisStore(redisClient)
	} else {
		deps.RateLimitStore = ratelimit.NewMemoryStore()
	}

	deps.StatsService = appServices.NewStatsService(
		repos.NewsRepository,
		repos.TeacherRepository,
		cache.NewHelper(redisClient, cache.StatsConfig),
		logger.Component("stats"),
	)
	deps.AuthService = appServices.NewAuthService(repos.UserRepository, repos.TokenRepository, deps.JWTService, deps.Hasher, logger.Component("auth"))
	deps.UserService = appServices.NewUserService(repos.UserRepository, deps.Authz, deps.Hasher, logger.Component("users"))
	deps.NewsService = appServices.NewNewsService(repos.NewsRepository, deps.StatsService, logger.Component("news"))
	deps.TeacherService = appServices.NewTeacherService(repos.TeacherRepository, deps.StatsService, logger.Component("teachers"))
	deps.UploadService = appServices.NewUploadService(fileStorage, cfg.Upload.MaxSizeBytes, cfg.Upload.Folder, logger.Component("upload"))

	deps.AutoSave = autosave.NewManager[websocket.Draft](autosaveConfig(cfg), logger.Component("autosave"))
	deps.Hub = websocket.NewHub(deps.NewsService, deps.AutoSave, logger.Component("preview"))
	deps.NewsService.Subscribe(deps.Hub)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	checks := map[string]appControllers.HealthCheck{}
	if dbPool != nil {
		checks["database"] = dbPool.Ping
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, redisClient) }
	}

	previewHandler := websocket.NewHandler(deps.Hub, deps.JWTService, cfg.AllowedOrigins(), logger.Component("preview"))
	deps.Controllers = appRoutes.Controllers{
		Auth:    appControllers.NewAuthController(deps.AuthService, lgr),
		User:    appControllers.NewUserController(deps.UserService, lgr),
		News:    appControllers.NewNewsController(deps.NewsService),
		Teacher: appControllers.NewTeacherController(deps.TeacherService),
		Public:  appControllers.NewPublicController(deps.NewsService, lgr),
		Stats:   appControllers.NewStatsController(deps.StatsService),
		Upload:  appControllers.NewUploadController(deps.UploadService, lgr),
		Health:  appControllers.NewHealthController(checks),
		Preview: previewHandler.HandleConnection,
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() || strings.ToLower(cfg.Server.Mode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Environment == config.EnvTest {
		gin.SetMode(gin.TestMode)
	}
	appMiddleware.RegisterValidatorTagNames()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.SecurityHeaders(),
		appMiddleware.CORS(cfg.AllowedOrigins()),
		appMiddleware.XSS(),
	)

	if !cfg.IsProduction() {
		appRoutes.SetupSwagger(router)
	}

	apiLimiter := ratelimit.NewLimiter(deps.RateLimitStore, "api",
		cfg.RateLimit.APIRequests,
		helpers.ParseDuration(cfg.RateLimit.APIWindow, 15*time.Minute))
	loginLimiter := ratelimit.NewLimiter(deps.RateLimitStore, "login",
		cfg.RateLimit.LoginAttempts,
		helpers.ParseDuration(cfg.RateLimit.LoginWindow, 15*time.Minute))

	limits := appRoutes.Limits{
		Login: appMiddleware.RateLimit(loginLimiter, appMiddleware.RateLimitOptions{
			SkipSuccessful: true,
			Message:        dto.MsgRateLimitExceeded,
			Logger:         logger.Component("ratelimit"),
		}),
	}
	if cfg.RateLimit.APIRequests > 0 {
		limits.API = appMiddleware.RateLimit(apiLimiter, appMiddleware.RateLimitOptions{
			Logger: logger.Component("ratelimit"),
		})
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, limits)

	router.Static("/uploads", cfg.Server.StoragePath)
	lgr.Info().Str("path", cfg.Server.StoragePath).Msg("Static file serving configured for uploads directory")

	router.NoRoute(func(c *gin.Context) {
		appMiddleware.RespondError(c, http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeNotFound, dto.MsgNotFound))
	})

	return router
}

// StartTokenJanitor purges expired refresh tokens every interval until ctx
// is done.
func StartTokenJanitor(ctx context.Context, tokens appRepos.ITokenRepository, interval time.Duration, lgr zerolog.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := tokens.CleanupExpiredTokens(ctx)
				if err != nil && !errors.Is(err, context.Canceled) {
					lgr.Error().Err(err).Msg("Failed to clean up expired refresh tokens")
					continue
				}
				if removed > 0 {
					lgr.Info().Int64("removed", removed).Msg("Expired refresh tokens removed")
				}
			}
		}
	}()
}

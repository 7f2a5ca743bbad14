package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environments accepted by Environment.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// MinSecretLength is the shortest accepted JWT signing secret.
const MinSecretLength = 32

// Config structure represents the application configuration
type Config struct {
	Environment string `yaml:"environment" env:"NODE_ENV"`

	Server struct {
		Port        string `yaml:"port" env:"PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`
		PublicURL   string `yaml:"public_url" env:"PUBLIC_URL"`
	} `yaml:"server"`

	Database struct {
		URL             string `yaml:"url" env:"DATABASE_URL"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		RefreshSecret          string `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	CORS struct {
		AllowOrigins []string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGIN"`
	} `yaml:"cors"`

	Redis struct {
		URL string `yaml:"url" env:"REDIS_URL"`
	} `yaml:"redis"`

	RateLimit struct {
		LoginAttempts int    `yaml:"login_attempts" env:"LOGIN_RATE_LIMIT_MAX"`
		LoginWindow   string `yaml:"login_window" env:"LOGIN_RATE_LIMIT_WINDOW"`
		APIRequests   int    `yaml:"api_requests" env:"RATE_LIMIT_MAX"`
		APIWindow     string `yaml:"api_window" env:"RATE_LIMIT_WINDOW"`
	} `yaml:"rate_limit"`

	Upload struct {
		MaxSizeBytes int64  `yaml:"max_size_bytes" env:"UPLOAD_MAX_SIZE_BYTES"`
		Folder       string `yaml:"folder" env:"UPLOAD_FOLDER"`
	} `yaml:"upload"`

	Admin struct {
		Email    string `yaml:"email" env:"DEFAULT_ADMIN_EMAIL"`
		Password string `yaml:"password" env:"DEFAULT_ADMIN_PASSWORD"`
	} `yaml:"admin"`

	Bcrypt struct {
		Cost int `yaml:"cost" env:"BCRYPT_SALTROUNDS"`
	} `yaml:"bcrypt"`

	AutoSave struct {
		Debounce   string `yaml:"debounce" env:"AUTOSAVE_DEBOUNCE"`
		RetryDelay string `yaml:"retry_delay" env:"AUTOSAVE_RETRY_DELAY"`
		SavedReset string `yaml:"saved_reset" env:"AUTOSAVE_SAVED_RESET"`
	} `yaml:"autosave"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a .env file, a YAML file and the
// environment, in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Environment = EnvDevelopment

	config.Server.Port = "3000"
	config.Server.Mode = "debug"
	config.Server.StoragePath = "uploads"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "kindergarten"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "15m"
	config.JWT.RefreshTokenExpiration = "168h"
	config.JWT.Issuer = "kindergarten-canvas"

	config.CORS.AllowOrigins = []string{"*"}

	config.RateLimit.LoginAttempts = 5
	config.RateLimit.LoginWindow = "15m"
	config.RateLimit.APIRequests = 100
	config.RateLimit.APIWindow = "15m"

	config.Upload.MaxSizeBytes = 10 << 20
	config.Upload.Folder = "kindergarten-canvas/news"

	config.Admin.Email = "admin@kindergarten.bg"

	config.Bcrypt.Cost = 12

	config.AutoSave.Debounce = "10s"
	config.AutoSave.RetryDelay = "30s"
	config.AutoSave.SavedReset = "3500ms"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Environment {
	case EnvDevelopment, EnvTest, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("environment must be one of development, test, staging, production; got %q", config.Environment)
	}

	if config.Database.URL == "" && config.Database.Host == "" {
		return errors.New("database host or DATABASE_URL is required")
	}

	if len(config.JWT.Secret) < MinSecretLength {
		return fmt.Errorf("JWT secret must be at least %d characters", MinSecretLength)
	}
	if len(config.JWT.RefreshSecret) < MinSecretLength {
		return fmt.Errorf("JWT refresh secret must be at least %d characters", MinSecretLength)
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"login rate limit window":      config.RateLimit.LoginWindow,
		"API rate limit window":        config.RateLimit.APIWindow,
		"autosave debounce":            config.AutoSave.Debounce,
		"autosave retry delay":         config.AutoSave.RetryDelay,
		"autosave saved reset":         config.AutoSave.SavedReset,
		"database connection lifetime": config.Database.ConnMaxLifetime,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Bcrypt.Cost < 4 || config.Bcrypt.Cost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", config.Bcrypt.Cost)
	}

	if config.RateLimit.LoginAttempts <= 0 {
		return errors.New("login rate limit must be positive")
	}

	if config.IsProduction() {
		if config.Database.URL == "" {
			return errors.New("DATABASE_URL is required in production")
		}
		origins := config.AllowedOrigins()
		if len(origins) == 0 || slices.Contains(origins, "*") {
			return errors.New("CORS_ALLOW_ORIGIN must name explicit origins in production")
		}
	}

	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// AllowedOrigins returns the configured CORS origins without blank entries.
func (c *Config) AllowedOrigins() []string {
	return splitList(strings.Join(c.CORS.AllowOrigins, ","))
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

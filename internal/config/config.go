package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode       string
	Port          string
	BrandName     string
	EnvFileLoaded bool
	Database      DatabaseConfig
	JWT           JWTConfig
	Cookie        CookieConfig
	Verification  VerificationConfig
	Redis         RedisConfig
	Email         EmailConfig
	Seed          SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// VerificationConfig controls the one-time code store
type VerificationConfig struct {
	Store          string
	CodeTTL        time.Duration
	ResendInterval time.Duration
	MaxAttempts    int
	SweepSpec      string
}

// RedisConfig is used when the code store is redis
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// EmailConfig selects and configures the email provider
type EmailConfig struct {
	Provider  string
	APIKey    string
	BrevoURL  string
	FromEmail string
	FromName  string
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
}

// SeedConfig holds the development seed switches
type SeedConfig struct {
	Enabled       bool
	AdminEmail    string
	AdminPassword string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; production injects plain environment variables
	envLoaded := godotenv.Load() == nil

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	verification, err := loadVerificationConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:       appMode,
		Port:          getEnv("PORT", "3000"),
		BrandName:     getEnv("BRAND_NAME", "CreditoExpress"),
		EnvFileLoaded: envLoaded,
		Database:      loadDatabaseConfig(appMode),
		JWT:           loadJWTConfig(appMode),
		Cookie:        loadCookieConfig(appMode),
		Verification:  verification,
		Redis:         loadRedisConfig(),
		Email:         loadEmailConfig(),
		Seed:          loadSeedConfig(appMode),
	}

	AppConfig = config
	return config, nil
}

// modePrefix returns the env prefix for mode-specific keys
func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "microcredit"),
		Path:     getEnv(prefix+"DB_PATH", "microcredit.db"),
	}
}

func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadVerificationConfig() (VerificationConfig, error) {
	store := strings.ToLower(getEnv("CODE_STORE", "memory"))
	if store != "memory" && store != "redis" {
		return VerificationConfig{}, fmt.Errorf("invalid CODE_STORE: '%s' (must be 'memory' or 'redis')", store)
	}

	ttl, err := time.ParseDuration(getEnv("CODE_TTL", "10m"))
	if err != nil {
		return VerificationConfig{}, fmt.Errorf("invalid CODE_TTL: %w", err)
	}
	resend, err := time.ParseDuration(getEnv("CODE_RESEND_INTERVAL", "60s"))
	if err != nil {
		return VerificationConfig{}, fmt.Errorf("invalid CODE_RESEND_INTERVAL: %w", err)
	}
	maxAttempts, _ := strconv.Atoi(getEnv("CODE_MAX_ATTEMPTS", "3"))
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	return VerificationConfig{
		Store:          store,
		CodeTTL:        ttl,
		ResendInterval: resend,
		MaxAttempts:    maxAttempts,
		SweepSpec:      getEnv("CODE_SWEEP_SPEC", "@every 5m"),
	}, nil
}

func loadRedisConfig() RedisConfig {
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return RedisConfig{
		URL:      getEnv("REDIS_URL", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func loadEmailConfig() EmailConfig {
	port, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))

	return EmailConfig{
		Provider:  strings.ToLower(getEnv("EMAIL_PROVIDER", "brevo")),
		APIKey:    getEnv("BREVO_API_KEY", ""),
		BrevoURL:  getEnv("BREVO_API_URL", ""),
		FromEmail: getEnv("BREVO_FROM_EMAIL", "noreply@creditoexpress.pe"),
		FromName:  getEnv("BREVO_FROM_NAME", "CreditoExpress"),
		SMTPHost:  getEnv("SMTP_HOST", ""),
		SMTPPort:  port,
		SMTPUser:  getEnv("SMTP_USER", ""),
		SMTPPass:  getEnv("SMTP_PASS", ""),
	}
}

func loadSeedConfig(mode string) SeedConfig {
	defaultEnabled := "false"
	if mode == "dev" {
		defaultEnabled = "true"
	}
	enabled, _ := strconv.ParseBool(getEnv("SEED_DATA", defaultEnabled))

	return SeedConfig{
		Enabled:       enabled,
		AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@creditoexpress.pe"),
		AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123456"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://app.creditoexpress.pe"
	}
	return origins
}

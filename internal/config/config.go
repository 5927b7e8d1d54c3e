package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

const defaultSecret = "dev-secret-key-change-in-production"

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Reports   ReportsConfig
	Metrics   MetricsConfig
	Breaker   BreakerConfig
}

type AppConfig struct {
	Name      string
	Version   string
	Env       string
	SecretKey string
	LogLevel  string
}

type ServerConfig struct {
	Host string
	Port string
	Mode string // gin mode
}

type DatabaseConfig struct {
	Type       string // mysql o sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	PoolSize   int
	SQLitePath string
}

type CacheConfig struct {
	RedisURL   string
	Enabled    bool
	DefaultTTL time.Duration
	ReportTTL  time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type AuthConfig struct {
	Enabled       bool
	KeyHubPedidos string
	KeyAdmin      string
	KeyAnalytics  string
	JWTSecret     string
	JWTExpiration time.Duration
}

type ReportsConfig struct {
	MaxRows     int
	PageSize    int
	CompanyName string
}

type MetricsConfig struct {
	Enabled bool
}

type BreakerConfig struct {
	Threshold int
	Timeout   time.Duration
}

// Load construye la configuración desde variables de entorno (.env opcional).
// El perfil se selecciona con APP_ENV: development, testing o production.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", EnvDevelopment)

	cfg := &Config{
		App: AppConfig{
			Name:      getEnv("APP_NAME", "Reportes Service"),
			Version:   getEnv("APP_VERSION", "2.0.0"),
			Env:       env,
			SecretKey: getEnv("SECRET_KEY", defaultSecret),
			LogLevel:  getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnv("PORT", "5001"),
			Mode: getEnv("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			Type:       getEnv("DB_TYPE", "mysql"),
			Host:       getEnv("DB_HOST", "127.0.0.1"),
			Port:       getEnv("DB_PORT", "3306"),
			User:       getEnv("DB_USER", "root"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "hubpedidos_db"),
			PoolSize:   getEnvInt("DB_POOL_SIZE", 5),
			SQLitePath: getEnv("SQLITE_DB_PATH", "db.sqlite3"),
		},
		Cache: CacheConfig{
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/1"),
			Enabled:    getEnvBool("CACHE_ENABLED", true),
			DefaultTTL: time.Duration(getEnvInt("CACHE_DEFAULT_TTL", 300)) * time.Second,
			ReportTTL:  time.Duration(getEnvInt("REPORT_CACHE_TTL", 600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitAndTrim(getEnv(
				"CORS_ALLOWED_ORIGINS",
				"http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000",
			)),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATELIMIT_ENABLED", true),
			RPS:     getEnvFloat("RATELIMIT_RPS", 10),
			Burst:   getEnvInt("RATELIMIT_BURST", 20),
		},
		Auth: AuthConfig{
			Enabled:       getEnvBool("API_AUTH_ENABLED", false),
			KeyHubPedidos: getEnv("API_KEY_HUBPEDIDOS", "hub_reportes_9x4m7n2p8k5w1"),
			KeyAdmin:      getEnv("API_KEY_ADMIN", ""),
			KeyAnalytics:  getEnv("API_KEY_ANALYTICS", ""),
			JWTSecret:     getEnv("JWT_SECRET", getEnv("SECRET_KEY", defaultSecret)),
			JWTExpiration: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		},
		Reports: ReportsConfig{
			MaxRows:     getEnvInt("REPORT_MAX_ROWS", 10000),
			PageSize:    getEnvInt("REPORT_PAGE_SIZE", 50),
			CompanyName: getEnv("PDF_COMPANY_NAME", "SOA Minimarket"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
		Breaker: BreakerConfig{
			Threshold: getEnvInt("CIRCUIT_BREAKER_THRESHOLD", 5),
			Timeout:   time.Duration(getEnvInt("CIRCUIT_BREAKER_TIMEOUT", 60)) * time.Second,
		},
	}

	applyProfile(cfg)

	return cfg
}

// applyProfile ajusta los valores no configurados explícitamente según el entorno.
func applyProfile(cfg *Config) {
	switch cfg.App.Env {
	case EnvDevelopment:
		cfg.Server.Mode = getEnv("GIN_MODE", "debug")
		cfg.App.LogLevel = getEnv("LOG_LEVEL", "debug")
		cfg.Cache.Enabled = getEnvBool("CACHE_ENABLED", false)

	case EnvTesting:
		cfg.Database.Type = "sqlite"
		cfg.Database.SQLitePath = ":memory:"
		cfg.Cache.Enabled = false
		cfg.RateLimit.Enabled = false
		cfg.Metrics.Enabled = false
		cfg.Auth.Enabled = false
		cfg.Reports.MaxRows = 100
		cfg.Reports.PageSize = 10
		cfg.Server.Mode = "test"

	case EnvProduction:
		cfg.Auth.Enabled = getEnvBool("API_AUTH_ENABLED", true)
		cfg.RateLimit.Enabled = getEnvBool("RATELIMIT_ENABLED", true)
		cfg.App.LogLevel = getEnv("LOG_LEVEL", "warn")
		cfg.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
	}
}

// Validate verifica que la configuración tenga los valores críticos.
func (c *Config) Validate() error {
	if c.App.Env == EnvProduction && c.App.SecretKey == defaultSecret {
		return errors.New("SECRET_KEY debe ser configurado en producción")
	}

	if c.Database.Type == "mysql" {
		if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
			return errors.New("DB_HOST, DB_USER y DB_NAME son requeridos para MySQL")
		}
	}

	if c.Auth.Enabled && c.Auth.KeyHubPedidos == "" && c.Auth.KeyAdmin == "" {
		return errors.New("al menos un API Key debe estar configurado")
	}

	return nil
}

// Addr retorna la dirección de escucha del servidor HTTP.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.EqualFold(value, "true")
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

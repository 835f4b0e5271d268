package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Swipe     SwipeConfig     `yaml:"swipe"`
	Blob      BlobConfig      `yaml:"blob"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type AppConfig struct {
	ENV string `yaml:"env"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Component string `yaml:"component"`
	Source    bool   `yaml:"source"`
}

type DBConfig struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	LogSQL   bool   `yaml:"log_sql"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GRPCConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// SwipeConfig holds the entitlement constants.
type SwipeConfig struct {
	DailyLimit      int `yaml:"daily_limit"`
	DailySuperLimit int `yaml:"daily_super_limit"`
	GoldCredits     int `yaml:"gold_credits"`
	GoldSuperBonus  int `yaml:"gold_super_bonus"`
}

type BlobConfig struct {
	// Driver is s3 or memory.
	Driver        string `yaml:"driver"`
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// New builds the config from defaults and environment variables only.
func New() *Config {
	cfg := defaults()
	applyEnv(cfg)
	return cfg
}

// Load reads an optional YAML file and then applies environment overrides.
// An empty path behaves like New.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}

	cfg.App.ENV = "development"

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.Component = "spotme"

	cfg.DB.Driver = "mysql"
	cfg.DB.Host = "localhost"
	cfg.DB.Port = "3306"
	cfg.DB.User = "root"
	cfg.DB.Password = "root"
	cfg.DB.Name = "spotme"

	cfg.Redis.Addr = "localhost:6379"

	cfg.GRPC.Host = "127.0.0.1"
	cfg.GRPC.Port = "50051"

	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = "8080"

	cfg.Auth.JWTSecret = "dev-secret-change-me"
	cfg.Auth.TokenTTL = 7 * 24 * time.Hour

	cfg.Swipe.DailyLimit = 5
	cfg.Swipe.DailySuperLimit = 1
	cfg.Swipe.GoldCredits = 99999
	cfg.Swipe.GoldSuperBonus = 5

	cfg.Blob.Driver = "memory"
	cfg.Blob.Region = "us-east-1"

	cfg.RateLimit.RPS = 10
	cfg.RateLimit.Burst = 20

	return cfg
}

func applyEnv(cfg *Config) {
	cfg.App.ENV = getEnvDefault("APP_ENV", cfg.App.ENV)

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", cfg.Log.Component)
	cfg.Log.Source = getEnvBool("LOG_SOURCE", cfg.Log.Source)

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.Host = getEnvDefault("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnvDefault("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnvDefault("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnvDefault("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnvDefault("DB_NAME", cfg.DB.Name)
	cfg.DB.LogSQL = getEnvBool("DB_LOG_SQL", cfg.DB.LogSQL)
	cfg.DB.DSN = getEnvDefault("DB_DSN", cfg.DB.DSN)
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = buildDSN(cfg.DB)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	// gRPC + HTTP
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", cfg.GRPC.Host)
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", cfg.GRPC.Port)
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", cfg.HTTP.Host)
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", cfg.HTTP.Port)

	// Auth
	cfg.Auth.JWTSecret = getEnvDefault("JWT_SECRET", cfg.Auth.JWTSecret)
	if v := strings.TrimSpace(os.Getenv("TOKEN_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = d
		}
	}

	// Swipe quotas
	cfg.Swipe.DailyLimit = getEnvInt("SWIPE_DAILY_LIMIT", cfg.Swipe.DailyLimit)
	cfg.Swipe.DailySuperLimit = getEnvInt("SWIPE_DAILY_SUPER_LIMIT", cfg.Swipe.DailySuperLimit)
	cfg.Swipe.GoldCredits = getEnvInt("SWIPE_GOLD_CREDITS", cfg.Swipe.GoldCredits)
	cfg.Swipe.GoldSuperBonus = getEnvInt("SWIPE_GOLD_SUPER_BONUS", cfg.Swipe.GoldSuperBonus)

	// Blob storage
	cfg.Blob.Driver = strings.ToLower(getEnvDefault("BLOB_DRIVER", cfg.Blob.Driver))
	cfg.Blob.Bucket = getEnvDefault("BLOB_BUCKET", cfg.Blob.Bucket)
	cfg.Blob.Region = getEnvDefault("BLOB_REGION", cfg.Blob.Region)
	cfg.Blob.Endpoint = getEnvDefault("BLOB_ENDPOINT", cfg.Blob.Endpoint)
	cfg.Blob.AccessKey = getEnvDefault("BLOB_ACCESS_KEY", cfg.Blob.AccessKey)
	cfg.Blob.SecretKey = getEnvDefault("BLOB_SECRET_KEY", cfg.Blob.SecretKey)
	cfg.Blob.PublicBaseURL = getEnvDefault("BLOB_PUBLIC_BASE_URL", cfg.Blob.PublicBaseURL)

	// Rate limiting
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RPS = f
		}
	}
	cfg.RateLimit.Burst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst)
}

func buildDSN(c DBConfig) string {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.Host, c.Port, c.User, c.Password, c.Name,
		)
	case "sqlite":
		return c.Name + ".db"
	default:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name,
		)
	}
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return isTruthy(v)
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

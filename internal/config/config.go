package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Redis render cache; an empty URL disables it
	Redis RedisConfig `yaml:"redis"`

	// Session token configuration
	Auth AuthConfig `yaml:"auth"`

	// Article image uploads
	Uploads UploadConfig `yaml:"uploads"`

	// Audit log file
	AuditLog AuditLogConfig `yaml:"audit_log"`

	// Comment threading
	Comments CommentsConfig `yaml:"comments"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"name"`
	SSLMode        string        `yaml:"sslmode"`
	MaxOpenConns   int           `yaml:"max_open_conns"`
	MaxIdleConns   int           `yaml:"max_idle_conns"`
	MaxLifetime    time.Duration `yaml:"max_lifetime"`
	MigrationsPath string        `yaml:"migrations_path"`
}

// RedisConfig holds render cache settings
type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	CookieName string        `yaml:"cookie_name"`
}

// Upload drivers
const (
	UploadDriverLocal = "local"
	UploadDriverS3    = "s3"
)

// UploadConfig selects and configures the image store
type UploadConfig struct {
	Driver    string   `yaml:"driver"` // "local" or "s3"
	Dir       string   `yaml:"dir"`
	URLPrefix string   `yaml:"url_prefix"`
	MaxSize   int64    `yaml:"max_size"` // in bytes
	S3        S3Config `yaml:"s3"`
}

// S3Config holds S3-compatible bucket settings
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicURL       string `yaml:"public_url"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// AuditLogConfig holds the audit log location
type AuditLogConfig struct {
	Path string `yaml:"path"`
}

// CommentsConfig holds comment tree settings
type CommentsConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "pretty"
}

// Defaults returns the configuration used when nothing is overridden
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "postgres",
			Password:       "postgres",
			Name:           "newsroom",
			SSLMode:        "disable",
			MaxOpenConns:   25,
			MaxIdleConns:   5,
			MaxLifetime:    5 * time.Minute,
			MigrationsPath: "./migrations",
		},
		Redis: RedisConfig{
			TTL: 5 * time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL:   24 * time.Hour,
			CookieName: "token",
		},
		Uploads: UploadConfig{
			Driver:    UploadDriverLocal,
			Dir:       "./public/uploads",
			URLPrefix: "/uploads",
			MaxSize:   10 * 1024 * 1024, // 10MB
		},
		AuditLog: AuditLogConfig{
			Path: "logs/app.log",
		},
		Comments: CommentsConfig{
			MaxDepth: 2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from .env, an optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.AllowedOrigins = getListEnv("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getIntEnv("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.MaxLifetime = getDurationEnv("DB_MAX_LIFETIME", c.Database.MaxLifetime)
	c.Database.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Database.MigrationsPath)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Redis.TTL = getDurationEnv("RENDER_CACHE_TTL", c.Redis.TTL)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getDurationEnv("JWT_TTL", c.Auth.TokenTTL)
	c.Auth.CookieName = getEnv("AUTH_COOKIE", c.Auth.CookieName)

	c.Uploads.Driver = getEnv("UPLOAD_DRIVER", c.Uploads.Driver)
	c.Uploads.Dir = getEnv("UPLOAD_DIR", c.Uploads.Dir)
	c.Uploads.URLPrefix = getEnv("UPLOAD_URL_PREFIX", c.Uploads.URLPrefix)
	c.Uploads.MaxSize = getInt64Env("MAX_UPLOAD_SIZE", c.Uploads.MaxSize)
	c.Uploads.S3.Bucket = getEnv("S3_BUCKET", c.Uploads.S3.Bucket)
	c.Uploads.S3.Region = getEnv("S3_REGION", c.Uploads.S3.Region)
	c.Uploads.S3.Endpoint = getEnv("S3_ENDPOINT", c.Uploads.S3.Endpoint)
	c.Uploads.S3.AccessKeyID = getEnv("S3_ACCESS_KEY_ID", c.Uploads.S3.AccessKeyID)
	c.Uploads.S3.SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", c.Uploads.S3.SecretAccessKey)
	c.Uploads.S3.PublicURL = getEnv("S3_PUBLIC_URL", c.Uploads.S3.PublicURL)
	c.Uploads.S3.UsePathStyle = getBoolEnv("S3_USE_PATH_STYLE", c.Uploads.S3.UsePathStyle)

	c.AuditLog.Path = getEnv("AUDIT_LOG_PATH", c.AuditLog.Path)

	c.Comments.MaxDepth = getIntEnv("COMMENT_MAX_DEPTH", c.Comments.MaxDepth)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Uploads.Driver {
	case UploadDriverLocal:
		if c.Uploads.Dir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for the local upload driver")
		}
	case UploadDriverS3:
		if c.Uploads.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 upload driver")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_DRIVER %q, must be local or s3", c.Uploads.Driver)
	}
	if c.Comments.MaxDepth < 0 {
		return fmt.Errorf("COMMENT_MAX_DEPTH must not be negative")
	}
	if c.AuditLog.Path == "" {
		return fmt.Errorf("AUDIT_LOG_PATH is required")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

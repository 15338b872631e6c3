package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// State backend
	StoreBackend    string        `json:"store_backend"`
	StoragePath     string        `json:"storage_path"`
	SQLitePath      string        `json:"sqlite_path"`
	RedisURL        string        `json:"redis_url"`
	RedisPrefix     string        `json:"redis_prefix"`
	StoreWriteDelay time.Duration `json:"store_write_delay"`

	// AI Configuration
	AIApiKey          string        `json:"ai_api_key"`
	AIBackend         string        `json:"ai_backend"`
	AIBaseURL         string        `json:"ai_base_url"`
	AISearchModel     string        `json:"ai_search_model"`
	AIFastModel       string        `json:"ai_fast_model"`
	AIFallbackModel   string        `json:"ai_fallback_model"`
	AIProModel        string        `json:"ai_pro_model"`
	AIImageModel      string        `json:"ai_image_model"`
	AIProxyModel      string        `json:"ai_proxy_model"`
	AITimeout         time.Duration `json:"ai_timeout"`
	AISearchTimeout   time.Duration `json:"ai_search_timeout"`
	AIFallbackBackoff time.Duration `json:"ai_fallback_backoff"`
	AIFallbackRetries int           `json:"ai_fallback_retries"`

	// Trends
	AutoRefreshInterval time.Duration `json:"auto_refresh_interval"`
	TrendsFeedURL       string        `json:"trends_feed_url"`

	// CloudFlare R2 Configuration
	R2Endpoint     string `json:"r2_endpoint"`
	R2AccessKey    string `json:"r2_access_key"`
	R2SecretKey    string `json:"r2_secret_key"`
	R2Bucket       string `json:"r2_bucket"`
	R2AccountID    string `json:"r2_account_id"`
	AssetPublicURL string `json:"asset_public_url"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
	LogPretty bool   `json:"log_pretty"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// FromEnv builds a Config from the current environment without loading .env
// or validating.
func FromEnv() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 120*time.Second),

		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", "file")),
		StoragePath:     getEnv("STORAGE_PATH", "./data"),
		SQLitePath:      getEnv("SQLITE_PATH", "./data/studio.db"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:     getEnv("REDIS_PREFIX", "autostudio:"),
		StoreWriteDelay: getEnvAsDuration("STORE_WRITE_DELAY", 800*time.Millisecond),

		AIApiKey:          getEnv("AI_API_KEY", ""),
		AIBackend:         strings.ToLower(getEnv("AI_BACKEND", "rest")),
		AIBaseURL:         getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		AISearchModel:     getEnv("AI_SEARCH_MODEL", "gemini-3-flash-preview"),
		AIFastModel:       getEnv("AI_FAST_MODEL", "gemini-3-flash-preview"),
		AIFallbackModel:   getEnv("AI_FALLBACK_MODEL", "gemini-flash-latest"),
		AIProModel:        getEnv("AI_PRO_MODEL", "gemini-3-pro-preview"),
		AIImageModel:      getEnv("AI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		AIProxyModel:      getEnv("AI_PROXY_MODEL", "gemini-1.5-flash"),
		AITimeout:         getEnvAsDuration("AI_TIMEOUT", 120*time.Second),
		AISearchTimeout:   getEnvAsDuration("AI_SEARCH_TIMEOUT", 25*time.Second),
		AIFallbackBackoff: getEnvAsDuration("AI_FALLBACK_BACKOFF", 1500*time.Millisecond),
		AIFallbackRetries: getEnvAsInt("AI_FALLBACK_RETRIES", 2),

		AutoRefreshInterval: getEnvAsDuration("AUTO_REFRESH_INTERVAL", 5*time.Minute),
		TrendsFeedURL:       getEnv("TRENDS_FEED_URL", "https://trends.google.com/trending/rss"),

		R2Endpoint:     getEnv("R2_ENDPOINT", ""),
		R2AccessKey:    getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey:    getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:       getEnv("R2_BUCKET", "autostudio"),
		R2AccountID:    getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		AssetPublicURL: getEnv("ASSET_PUBLIC_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFile:   getEnv("LOG_FILE", ""),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "memory", "file", "redis", "sqlite":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.AIBackend {
	case "rest", "sdk":
	default:
		return fmt.Errorf("unknown AI_BACKEND %q", c.AIBackend)
	}
	if c.AIFallbackRetries < 0 {
		return fmt.Errorf("AI_FALLBACK_RETRIES must not be negative")
	}
	if c.AutoRefreshInterval < time.Second {
		return fmt.Errorf("AUTO_REFRESH_INTERVAL must be at least 1s")
	}
	return nil
}

// AssetsEnabled reports whether generated images should be offloaded to R2.
func (c *Config) AssetsEnabled() bool {
	return c.R2AccessKey != "" && c.R2SecretKey != "" && (c.R2Endpoint != "" || c.R2AccountID != "")
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

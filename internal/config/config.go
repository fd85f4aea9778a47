package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	BaseDir  string
	LogLevel string
	LogJSON  bool

	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DBDriver string
	DBPath   string
	DBDSN    string

	MediaRoot string
	MediaURL  string

	AdminToken string

	Image      ImageConfig
	RateLimits RateLimitConfig
}

type ImageConfig struct {
	TargetKB       int
	MaxWidth       int
	InitialQuality int
	QualityFloor   int
	QualityStep    int
}

type LimitConfig struct {
	MaxRequests int64
	Window      time.Duration
	KeyPrefix   string
}

type RateLimitConfig struct {
	Search LimitConfig
	API    LimitConfig
	Strict LimitConfig
}

// Load reads the process environment. A .env file in the working directory,
// when present, fills variables that are not already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:     getEnv("PORT", "8080"),
		BaseDir:  getEnv("BASE_DIR", "."),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogJSON:  getEnvBool("LOG_JSON", true),

		Backend:       getEnv("BACKEND", "memory"),
		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBPath:   getEnv("DB_PATH", "newsdesk.sqlite3"),
		DBDSN:    getEnv("DB_DSN", ""),

		MediaRoot: getEnv("MEDIA_ROOT", "media"),
		MediaURL:  getEnv("MEDIA_URL", "/media/"),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		Image: ImageConfig{
			TargetKB:       getEnvInt("IMAGE_TARGET_KB", 100),
			MaxWidth:       getEnvInt("IMAGE_MAX_WIDTH", 1000),
			InitialQuality: getEnvInt("IMAGE_INITIAL_QUALITY", 85),
			QualityFloor:   getEnvInt("IMAGE_QUALITY_FLOOR", 10),
			QualityStep:    getEnvInt("IMAGE_QUALITY_STEP", 5),
		},
		RateLimits: RateLimitConfig{
			Search: loadLimit("SEARCH", 30, "search_limit"),
			API:    loadLimit("API", 100, "api_limit"),
			Strict: loadLimit("STRICT", 10, "strict_limit"),
		},
	}
}

func loadLimit(name string, maxRequests int64, prefix string) LimitConfig {
	return LimitConfig{
		MaxRequests: int64(getEnvInt("RATE_LIMIT_"+name+"_MAX", int(maxRequests))),
		Window:      getEnvDuration("RATE_LIMIT_"+name+"_WINDOW", time.Minute),
		KeyPrefix:   getEnv("RATE_LIMIT_"+name+"_PREFIX", prefix),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port   string
	AppEnv string

	AllowedOrigins []string
	FrontendURL    string

	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	RedisURL      string
	RedisPassword string

	JWTSecret      string
	AccessTokenTTL time.Duration

	AgentTimeout     time.Duration
	AgentMemoryPages uint32
	MatchTimeout     time.Duration
	AgentCacheSize   int
	MaxArtifactBytes int64
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")
	appEnv := GetEnv("APP_ENV", "development")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{frontendURL}
	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", ""), ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" && trimmed != frontendURL {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}

	// Database Config
	// Append simple_protocol for PgBouncer compatibility (pgx driver)
	dbURL := GetEnv("DATABASE_URL", "")
	if dbURL != "" {
		if u, err := url.Parse(dbURL); err == nil {
			q := u.Query()
			if q.Get("default_query_exec_mode") == "" {
				q.Set("default_query_exec_mode", "simple_protocol")
				u.RawQuery = q.Encode()
				dbURL = u.String()
			}
		}
	}

	return &Config{
		Port:           port,
		AppEnv:         appEnv,
		AllowedOrigins: allowedOrigins,
		FrontendURL:    frontendURL,

		DatabaseURL:          dbURL,
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),

		RedisURL:      GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),

		// Security
		JWTSecret:      GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		AccessTokenTTL: time.Duration(GetEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60)) * time.Minute,

		// Sandbox
		AgentTimeout:     GetEnvAsDuration("AGENT_TIMEOUT_MS", 2000*time.Millisecond, time.Millisecond),
		AgentMemoryPages: uint32(GetEnvAsInt("AGENT_MEMORY_PAGES", 256)),
		MatchTimeout:     GetEnvAsDuration("MATCH_TIMEOUT_SECONDS", 5*time.Minute, time.Second),
		AgentCacheSize:   GetEnvAsInt("AGENT_CACHE_SIZE", 32),
		MaxArtifactBytes: int64(GetEnvAsInt("MAX_ARTIFACT_BYTES", 8<<20)),
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsDuration reads an integer count of unit, e.g. AGENT_TIMEOUT_MS=500.
func GetEnvAsDuration(key string, defaultValue, unit time.Duration) time.Duration {
	n := GetEnvAsInt(key, -1)
	if n < 0 {
		return defaultValue
	}
	return time.Duration(n) * unit
}

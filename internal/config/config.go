package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
// It follows the 12-factor app methodology by prioritizing environment variables.
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Engine EngineConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
}

// EngineConfig tunes the reconciliation engine itself.
type EngineConfig struct {
	CurrentUserID        string
	AnimationDelay       time.Duration
	SnapAnimationDelay   time.Duration
	TypingDraftTTL       time.Duration
	CanAnimateSnapEffect bool
}

// LoadConfig loads configuration from environment variables.
// Defaults can be set here if needed.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
		},
		Engine: EngineConfig{
			CurrentUserID:        getEnv("CURRENT_USER_ID", ""),
			AnimationDelay:       getEnvAsDuration("ANIMATION_DELAY", 0),
			SnapAnimationDelay:   getEnvAsDuration("SNAP_ANIMATION_DELAY", 0),
			TypingDraftTTL:       getEnvAsDuration("TYPING_DRAFT_TTL", 0),
			CanAnimateSnapEffect: getEnvAsBool("CAN_ANIMATE_SNAP_EFFECT", false),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

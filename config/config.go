package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything read from the environment at startup. It is built
// once in main and passed by reference; nothing reads the environment after
// Load returns.
type Config struct {
	Addr        string
	DatabaseURL string
	LogLevel    string
	Token       TokenConfig
}

// TokenConfig configures JWT signing. Secret and Algorithm have no defaults;
// the token service refuses to start without them.
type TokenConfig struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

func Load() *Config {
	return &Config{
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Token: TokenConfig{
			Secret:    os.Getenv("SECRET_KEY"),
			Algorithm: os.Getenv("ALGORITHM"),
			TTL:       time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// Package config loads client settings from environment variables, with an
// optional .env file for development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerURL string // chat server base URL
	DataPath  string // optional scrollback store directory; empty disables it
	LogFile   string // optional log destination; empty keeps the terminal clean
	LogLevel  string // zerolog level name
}

// Load reads the environment. A missing .env is fine; production setups use
// real environment variables.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerURL: getEnv("CHAT_SERVER_URL", "http://localhost:3080"),
		DataPath:  getEnv("CHAT_DATA_PATH", ""),
		LogFile:   getEnv("CHAT_LOG_FILE", ""),
		LogLevel:  getEnv("CHAT_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

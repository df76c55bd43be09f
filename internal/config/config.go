package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	APIURL     string
	APIToken   string
	TokenFile  string
	DataDir    string
	ListenAddr string
}

// Load loads configuration from environment variables only.
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile loads configuration from an optional .env file and environment variables.
func LoadWithFile(envFile string) (*Config, error) {
	// Attempt to load .env file if provided, but don't fail if it doesn't exist.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		APIURL:     os.Getenv("STAYKEEPER_API_URL"),
		APIToken:   os.Getenv("STAYKEEPER_API_TOKEN"),
		TokenFile:  os.Getenv("STAYKEEPER_TOKEN_FILE"),
		DataDir:    getEnvOrDefault("STAYKEEPER_DATA_DIR", "./data"),
		ListenAddr: getEnvOrDefault("STAYKEEPER_LISTEN_ADDR", "127.0.0.1:8642"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required fields are set.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("STAYKEEPER_API_URL is required")
	}
	if c.APIToken == "" && c.TokenFile == "" {
		return fmt.Errorf("one of STAYKEEPER_API_TOKEN or STAYKEEPER_TOKEN_FILE is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

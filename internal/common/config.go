package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Gemini   GeminiConfig
	Pipeline PipelineConfig
}

// DatabaseConfig holds document-store configuration
type DatabaseConfig struct {
	URI         string
	Database    string
	Collection  string
	DialTimeout time.Duration
}

// GeminiConfig holds extraction-service configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// PipelineConfig holds batch-pipeline behavior knobs
type PipelineConfig struct {
	ChunkSize    int
	PollInterval time.Duration
	Workers      int
	FailuresDir  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URI:         getEnv("DATABASE_URL", ""),
			Database:    getEnv("DATABASE_NAME", "processed_documents_db"),
			Collection:  getEnv("COLLECTION_NAME", "processed_documents"),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 5*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "models/gemini-2.5-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
		},
		Pipeline: PipelineConfig{
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 5),
			PollInterval: getEnvAsDuration("POLL_INTERVAL", 30*time.Second),
			Workers:      getEnvAsInt("PIPELINE_WORKERS", 4),
			FailuresDir:  getEnv("FAILURES_DIR", "failures"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return NewAppError("CONFIG_ERROR", "DATABASE_URL is required", ErrInvalidConfig)
	}
	if c.Gemini.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidConfig)
	}
	if c.Pipeline.ChunkSize < 1 {
		return NewAppError("CONFIG_ERROR", "CHUNK_SIZE must be positive", ErrInvalidConfig)
	}
	return nil
}

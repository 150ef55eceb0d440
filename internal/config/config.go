/**
 * Configuration for the OCR frame worker
 *
 * Loads configuration from environment variables (optionally seeded from
 * .env.ocr by the entry point).
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Queue backends
const (
	BackendRedis = "redis"
	BackendAsynq = "asynq"
)

// Config holds worker configuration
type Config struct {
	// Logging
	LogLevel string

	// Orientation sampling
	SamplingInterval time.Duration
	AccelerometerKey string

	// Tesseract configuration
	TesseractLanguages []string
	TessdataPrefix     string
	TesseractPSM       int

	// Frame intake
	RedisURL          string
	FrameQueue        string
	QueueBackend      string
	WorkerConcurrency int

	// Optional PostgreSQL outcome archive
	DatabaseURL string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		SamplingInterval:   getEnvAsDurationOrDefault("SAMPLING_INTERVAL", 200*time.Millisecond),
		AccelerometerKey:   getEnvOrDefault("ACCELEROMETER_KEY", "ocr:accelerometer"),
		TesseractLanguages: getEnvAsListOrDefault("TESSERACT_LANGUAGES", []string{"eng"}),
		TessdataPrefix:     getEnvOrDefault("TESSDATA_PREFIX", ""),
		TesseractPSM:       getEnvAsIntOrDefault("TESSERACT_PSM", 3),
		RedisURL:           getEnvOrDefault("REDIS_URL", ""),
		FrameQueue:         getEnvOrDefault("FRAME_QUEUE", "ocr:frames"),
		QueueBackend:       getEnvOrDefault("QUEUE_BACKEND", BackendRedis),
		WorkerConcurrency:  getEnvAsIntOrDefault("WORKER_CONCURRENCY", 1),
		DatabaseURL:        getEnvOrDefault("DATABASE_URL", ""),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.SamplingInterval <= 0 {
		return fmt.Errorf("SAMPLING_INTERVAL must be positive, got %v", c.SamplingInterval)
	}

	if len(c.TesseractLanguages) == 0 {
		return fmt.Errorf("TESSERACT_LANGUAGES must name at least one language")
	}

	if c.TesseractPSM < 0 || c.TesseractPSM > 13 {
		return fmt.Errorf("TESSERACT_PSM must be between 0 and 13, got %d", c.TesseractPSM)
	}

	if c.QueueBackend != BackendRedis && c.QueueBackend != BackendAsynq {
		return fmt.Errorf("QUEUE_BACKEND must be %q or %q, got %q", BackendRedis, BackendAsynq, c.QueueBackend)
	}

	if c.FrameQueue == "" {
		return fmt.Errorf("FRAME_QUEUE is required")
	}

	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 16 {
		return fmt.Errorf("WORKER_CONCURRENCY must be between 1 and 16, got %d", c.WorkerConcurrency)
	}

	return nil
}

// ArchiveEnabled reports whether outcomes are archived to PostgreSQL
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDurationOrDefault accepts Go durations ("200ms") or plain
// milliseconds ("200").
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsListOrDefault splits a comma or plus separated list ("eng+deu")
func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	fields := strings.FieldsFunc(valueStr, func(r rune) bool {
		return r == ',' || r == '+' || r == ' '
	})
	if len(fields) == 0 {
		return defaultValue
	}
	return fields
}

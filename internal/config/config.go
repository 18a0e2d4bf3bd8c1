package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Content repository. A non-empty ContentURL selects the remote
	// key/value store over the local directory.
	ContentDir    string
	ContentURL    string
	ContentAPIKey string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentCompile int

	// Upload limits
	MaxUploadBytes int64

	// Job and render cache state
	JobTTL   time.Duration
	CacheTTL time.Duration

	// View applied when a request names none.
	DefaultView string

	LogLevel slog.Level

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ContentDir:    envOr("CONTENT_DIR", "./content"),
		ContentURL:    os.Getenv("CONTENT_URL"),
		ContentAPIKey: os.Getenv("CONTENT_API_KEY"),

		APIKey: os.Getenv("MARKWEAVE_API_KEY"),

		WorkerCount:          envInt("WORKER_COUNT", 4),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentCompile: envInt("MAX_CONCURRENT_COMPILE", 8),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL:   envDuration("JOB_TTL", 1*time.Hour),
		CacheTTL: envDuration("CACHE_TTL", 10*time.Minute),

		DefaultView: os.Getenv("DEFAULT_VIEW"),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentCompile <= 0 {
		cfg.MaxConcurrentCompile = 8
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("MARKWEAVE_API_KEY is required")
	}
	if c.ContentURL != "" && c.ContentAPIKey == "" {
		return fmt.Errorf("CONTENT_API_KEY is required when CONTENT_URL is set")
	}
	if c.ContentURL == "" && c.ContentDir == "" {
		return fmt.Errorf("CONTENT_DIR or CONTENT_URL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.TrimSpace(v))); err == nil {
			return l
		}
	}
	return fallback
}

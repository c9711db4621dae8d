package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"go-housing-estimator/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Host                 string
	Port                 string        `validate:"required,numeric"`
	RequestTimeout       time.Duration `validate:"gt=0"`
	ArtifactFetchTimeout time.Duration `validate:"gt=0"`
	MaxRequestBodySize   int64         `validate:"gt=0"`

	ArtifactSource      string `validate:"oneof=file http azure"`
	ArtifactDir         string `validate:"required_if=ArtifactSource file"`
	ArtifactBaseURL     string `validate:"required_if=ArtifactSource http"`
	AzureAccount        string `validate:"required_if=ArtifactSource azure"`
	AzureKey            string `validate:"required_if=ArtifactSource azure"`
	AzureContainer      string `validate:"required_if=ArtifactSource azure"`
	TransformerArtifact string `validate:"required"`
	ModelArtifact       string `validate:"required"`
	ArtifactWatch       bool

	CategoryFallback    string `validate:"oneof=zero nearest"`
	NearestMaxDistance  int    `validate:"gte=0"`
	PredictionCacheSize int    `validate:"gte=0"`

	LogLevel      string `validate:"oneof=debug info warn error"`
	LogFile       string
	LogMaxSizeMB  int `validate:"gte=0"`
	LogMaxBackups int `validate:"gte=0"`
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:                 getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                 strings.TrimSpace(getEnvOrDefault("PORT", "8080")),
		RequestTimeout:       parseDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
		ArtifactFetchTimeout: parseDurationOrDefault("ARTIFACT_FETCH_TIMEOUT", 30*time.Second),
		MaxRequestBodySize:   parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 64*1024), // 64KB

		ArtifactSource:      getEnvOrDefault("ARTIFACT_SOURCE", "file"),
		ArtifactDir:         getEnvOrDefault("ARTIFACT_DIR", "artifacts"),
		ArtifactBaseURL:     os.Getenv("ARTIFACT_BASE_URL"),
		AzureAccount:        os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureKey:            os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainer:      os.Getenv("AZURE_CONTAINER"),
		TransformerArtifact: getEnvOrDefault("TRANSFORMER_ARTIFACT", "transformer.yaml"),
		ModelArtifact:       getEnvOrDefault("MODEL_ARTIFACT", "model.json"),
		ArtifactWatch:       parseBoolOrDefault("ARTIFACT_WATCH", false),

		CategoryFallback:    getEnvOrDefault("CATEGORY_FALLBACK", "zero"),
		NearestMaxDistance:  int(parseIntOrDefault("NEAREST_MAX_DISTANCE", 2)),
		PredictionCacheSize: int(parseIntOrDefault("PREDICTION_CACHE_SIZE", 0)),

		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
		LogMaxSizeMB:  int(parseIntOrDefault("LOG_MAX_SIZE_MB", 100)),
		LogMaxBackups: int(parseIntOrDefault("LOG_MAX_BACKUPS", 3)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the artifact URL
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Validate port is in range
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.ArtifactSource == "http" {
		if err := validation.NewURLValidator().ValidateArtifactURL(c.ArtifactBaseURL); err != nil {
			return fmt.Errorf("invalid ARTIFACT_BASE_URL: %w", err)
		}
	}
	if c.ArtifactWatch && c.ArtifactSource != "file" {
		return fmt.Errorf("ARTIFACT_WATCH requires ARTIFACT_SOURCE=file (got %s)", c.ArtifactSource)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"seismicview/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Paths    PathConfig
	Upload   UploadConfig
	Analysis AnalysisConfig
	Logging  LoggingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// PathConfig holds file system paths
type PathConfig struct {
	UploadDir string
	OutputDir string
}

// UploadConfig holds upload limits and retention
type UploadConfig struct {
	MaxFileSize     int64
	ArtifactTTL     time.Duration
	JanitorInterval time.Duration
}

// AnalysisConfig bounds the CPU-heavy analysis work
type AnalysisConfig struct {
	MaxConcurrent int
}

// LoggingConfig selects the log level and output format
type LoggingConfig struct {
	Level  string
	Format string
}

// Default returns the configuration used when no environment overrides are set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			GinMode:         "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Paths: PathConfig{
			UploadDir: "uploads",
			OutputDir: "static/outputs",
		},
		Upload: UploadConfig{
			MaxFileSize:     50 * 1024 * 1024,
			ArtifactTTL:     time.Hour,
			JanitorInterval: 5 * time.Minute,
		},
		Analysis: AnalysisConfig{
			MaxConcurrent: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// maxUploadMB keeps the byte limit within int64 once shifted
const maxUploadMB = math.MaxInt64 >> 20

// Load reads configuration from environment variables and validates it.
// A variable that is set but does not parse is an error, not a fallback
// to the default.
func Load() (*Config, error) {
	def := Default()
	config := &Config{}
	env := &envParser{}

	config.Server = ServerConfig{
		Port:            getEnvOrDefault("PORT", def.Server.Port),
		GinMode:         getEnvOrDefault("GIN_MODE", def.Server.GinMode),
		ShutdownTimeout: env.durationOrDefault("SHUTDOWN_TIMEOUT", def.Server.ShutdownTimeout),
	}

	config.Paths = PathConfig{
		UploadDir: getEnvOrDefault("UPLOAD_DIR", def.Paths.UploadDir),
		OutputDir: getEnvOrDefault("OUTPUT_DIR", def.Paths.OutputDir),
	}

	config.Upload = UploadConfig{
		MaxFileSize:     env.uploadBytes("MAX_UPLOAD_MB", def.Upload.MaxFileSize),
		ArtifactTTL:     env.durationOrDefault("ARTIFACT_TTL", def.Upload.ArtifactTTL),
		JanitorInterval: env.durationOrDefault("JANITOR_INTERVAL", def.Upload.JanitorInterval),
	}

	config.Analysis = AnalysisConfig{
		MaxConcurrent: env.intOrDefault("MAX_CONCURRENT_ANALYSES", def.Analysis.MaxConcurrent),
	}

	config.Logging = LoggingConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", def.Logging.Level)),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", def.Logging.Format)),
	}

	if env.err != nil {
		return nil, errors.Wrap(env.err, "configuration parsing failed")
	}
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be one of debug, release, test")
	}
	if config.Paths.UploadDir == "" {
		return errors.ConfigInvalid("upload directory is required")
	}
	if config.Paths.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Upload.MaxFileSize <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Upload.ArtifactTTL < 0 {
		return errors.ConfigInvalid("ARTIFACT_TTL cannot be negative")
	}
	if config.Upload.ArtifactTTL > 0 && config.Upload.JanitorInterval <= 0 {
		return errors.ConfigInvalid("JANITOR_INTERVAL must be positive when ARTIFACT_TTL is set")
	}
	if config.Analysis.MaxConcurrent < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_ANALYSES must be at least 1")
	}
	switch config.Logging.Format {
	case "console", "json":
	default:
		return errors.ConfigInvalid("LOG_FORMAT must be console or json")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envParser reads typed environment variables and keeps the first
// value that fails to parse.
type envParser struct {
	err error
}

func (p *envParser) fail(key, value, want string) {
	if p.err == nil {
		p.err = errors.ConfigInvalid(fmt.Sprintf("%s must be %s, got %q", key, want, value))
	}
}

func (p *envParser) intOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, "an integer")
		return defaultValue
	}
	return intValue
}

func (p *envParser) durationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		p.fail(key, value, "a duration such as 30s or 1h")
		return defaultValue
	}
	return duration
}

// uploadBytes reads a size in megabytes and returns it in bytes
func (p *envParser) uploadBytes(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	mb, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		p.fail(key, value, "an integer")
		return defaultValue
	}
	if mb > maxUploadMB {
		p.fail(key, value, fmt.Sprintf("at most %d", int64(maxUploadMB)))
		return defaultValue
	}
	return mb << 20
}

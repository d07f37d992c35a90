// Package config loads server configuration from flags, environment variables,
// a .env file and an optional YAML file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Logger LoggerConfig `yaml:"logger"`
	Data   DataConfig   `yaml:"data"`
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Media  MediaConfig  `yaml:"media"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `yaml:"environment"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// DataConfig holds on-disk locations.
type DataConfig struct {
	// BasePath holds the database, the token key and uploaded media.
	BasePath string `yaml:"base_path"`
	// DatabasePath defaults to {BasePath}/recipes.db.
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"`
	RateLimitRPS float64       `yaml:"rate_limit_rps"` // per client IP
	RateBurst    int           `yaml:"rate_limit_burst"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// TokenKey is the PASETO v4 symmetric key. Set by auth.LoadOrGenerateKey, never from config.
	TokenKey      []byte        `yaml:"-"`
	TokenDuration time.Duration `yaml:"token_duration"`
}

// MediaConfig holds image upload configuration.
type MediaConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// MediaPath is where uploaded recipe images live.
func (c *Config) MediaPath() string {
	return filepath.Join(c.Data.BasePath, "media")
}

// KeyPath is where the token key is persisted.
func (c *Config) KeyPath() string {
	return filepath.Join(c.Data.BasePath, "auth.key")
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			CORSOrigins:  []string{"*"},
			RateLimitRPS: 20,
			RateBurst:    40,
		},
		Auth:  AuthConfig{TokenDuration: 24 * time.Hour},
		Media: MediaConfig{MaxUploadBytes: 10 << 20},
	}
}

// Load builds the configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. YAML file given by --config or CONFIG_FILE.
// 5. Defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("recipe-server", flag.ContinueOnError)

	configFile := fs.String("config", "", "Path to YAML config file")
	envFile := fs.String("env-file", ".env", "Path to .env file")
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for database and media")
	dbPath := fs.String("db-path", "", "SQLite database path (default: {data-path}/recipes.db)")
	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins")
	rateRPS := fs.String("rate-limit-rps", "", "Requests per second per client IP")
	rateBurst := fs.String("rate-limit-burst", "", "Burst size per client IP")
	tokenDuration := fs.String("token-duration", "", "Lifetime of issued tokens (e.g. 24h)")
	maxUpload := fs.String("max-upload-bytes", "", "Maximum image upload size in bytes")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env is fine.
	_ = loadEnvFile(*envFile)

	cfg := Defaults()
	if path := getConfigValue(*configFile, "CONFIG_FILE", ""); path != "" {
		if err := cfg.mergeYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.App.Environment = getConfigValue(*env, "ENV", cfg.App.Environment)
	cfg.Logger.Level = getConfigValue(*logLevel, "LOG_LEVEL", cfg.Logger.Level)
	cfg.Data.BasePath = getConfigValue(*dataPath, "DATA_PATH", cfg.Data.BasePath)
	cfg.Data.DatabasePath = getConfigValue(*dbPath, "DATABASE_PATH", cfg.Data.DatabasePath)
	cfg.Server.Port = getConfigValue(*port, "SERVER_PORT", cfg.Server.Port)

	if v := getConfigValue(*corsOrigins, "CORS_ORIGINS", ""); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout); err != nil {
		return nil, err
	}
	if cfg.Auth.TokenDuration, err = getDurationConfigValue(*tokenDuration, "TOKEN_DURATION", cfg.Auth.TokenDuration); err != nil {
		return nil, err
	}
	if cfg.Server.RateLimitRPS, err = getFloatConfigValue(*rateRPS, "RATE_LIMIT_RPS", cfg.Server.RateLimitRPS); err != nil {
		return nil, err
	}
	if cfg.Server.RateBurst, err = getIntConfigValue(*rateBurst, "RATE_LIMIT_BURST", cfg.Server.RateBurst); err != nil {
		return nil, err
	}
	maxBytes, err := getIntConfigValue(*maxUpload, "MAX_UPLOAD_BYTES", int(cfg.Media.MaxUploadBytes))
	if err != nil {
		return nil, err
	}
	cfg.Media.MaxUploadBytes = int64(maxBytes)

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateBurst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}
	if c.Auth.TokenDuration <= 0 {
		return errors.New("token duration must be positive")
	}
	if c.Media.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	return nil
}

func (c *Config) mergeYAML(path string) error {
	data, err := os.ReadFile(path) //#nosec G304 -- operator supplied config path
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) expandPaths() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	base, err := expandPath(c.Data.BasePath, filepath.Join(home, ".recipe-server"))
	if err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	c.Data.BasePath = base

	db, err := expandPath(c.Data.DatabasePath, filepath.Join(base, "recipes.db"))
	if err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}
	c.Data.DatabasePath = db
	return nil
}

// expandPath expands ~ and makes path absolute. Empty paths become defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = abs
	}
	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or fallback.
func getConfigValue(flagValue, envKey, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

func getDurationConfigValue(flagValue, envKey string, fallback time.Duration) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return d, nil
}

func getIntConfigValue(flagValue, envKey string, fallback int) (int, error) {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return n, nil
}

func getFloatConfigValue(flagValue, envKey string, fallback float64) (float64, error) {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from path into the environment without
// overriding variables that are already set.
func loadEnvFile(path string) error {
	f, err := os.Open(path) //#nosec G304 -- operator supplied env file path
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

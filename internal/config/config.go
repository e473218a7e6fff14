// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// DefaultAdminToken is the token used when none is configured.
const DefaultAdminToken = "admin123"

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Store  StoreConfig
	Server ServerConfig
	Admin  AdminConfig
	Seed   SeedConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" envDefault:"development"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Driver   string `env:"STORE_DRIVER" envDefault:"sqlite"`
	DataPath string `env:"DATA_PATH"`
}

// SQLitePath is the database file inside DataPath.
func (s StoreConfig) SQLitePath() string {
	return filepath.Join(s.DataPath, "shelfkeeper.db")
}

// BadgerPath is the badger directory inside DataPath.
func (s StoreConfig) BadgerPath() string {
	return filepath.Join(s.DataPath, "badger")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT"  envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT"  envDefault:"60s"`
	CORSOrigins  []string      `env:"CORS_ORIGINS"         envDefault:"*" envSeparator:","`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxy   bool          `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// AdminConfig holds the admin token and the admin endpoint rate limit.
// TokenHash, an Argon2id PHC string, takes precedence over Token.
type AdminConfig struct {
	Token     string  `env:"ADMIN_TOKEN"      envDefault:"admin123"`
	TokenHash string  `env:"ADMIN_TOKEN_HASH"`
	RateLimit float64 `env:"ADMIN_RATE_LIMIT" envDefault:"5"`
	RateBurst int     `env:"ADMIN_RATE_BURST" envDefault:"10"`
}

// UsesDefaultToken reports whether the built-in admin token is in effect.
func (a AdminConfig) UsesDefaultToken() bool {
	return a.TokenHash == "" && a.Token == DefaultAdminToken
}

// SeedConfig controls demo data seeding at startup. Seeding only touches an
// empty catalog; a run that fails partway removes what it wrote.
type SeedConfig struct {
	DemoData bool `env:"SEED_DEMO_DATA" envDefault:"true"`
}

// LoadConfig loads configuration from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("shelfkeeper", flag.ContinueOnError)

	envName := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for persistent data")
	storeDriver := fs.String("store-driver", "", "Store driver (sqlite, badger, memory)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.Duration("read-timeout", 0, "HTTP read timeout (default: 15s)")
	writeTimeout := fs.Duration("write-timeout", 0, "HTTP write timeout (default: 15s)")
	idleTimeout := fs.Duration("idle-timeout", 0, "HTTP idle timeout (default: 60s)")

	adminToken := fs.String("admin-token", "", "Shared admin token")
	seedDemo := fs.String("seed-demo-data", "", "Seed demo catalog when empty (default: true)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	environ, err := loadEnvFile(*envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	// Real environment variables take precedence over the .env file.
	for k, v := range env.ToMap(os.Environ()) {
		environ[k] = v
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	overrideString(&cfg.App.Environment, *envName)
	overrideString(&cfg.Logger.Level, *logLevel)
	overrideString(&cfg.Store.DataPath, *dataPath)
	overrideString(&cfg.Store.Driver, *storeDriver)
	overrideString(&cfg.Server.Port, *serverPort)
	overrideString(&cfg.Admin.Token, *adminToken)
	if *readTimeout > 0 {
		cfg.Server.ReadTimeout = *readTimeout
	}
	if *writeTimeout > 0 {
		cfg.Server.WriteTimeout = *writeTimeout
	}
	if *idleTimeout > 0 {
		cfg.Server.IdleTimeout = *idleTimeout
	}
	if *seedDemo != "" {
		cfg.Seed.DemoData = parseBool(*seedDemo)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverBadger:
		if c.Store.DataPath == "" {
			return errors.New("data path cannot be empty for a persistent store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid store driver: %s (must be sqlite, badger, or memory)", c.Store.Driver)
	}

	if c.Server.Port == "" {
		return errors.New("SERVER_PORT is required")
	}

	if c.Admin.Token == "" && c.Admin.TokenHash == "" {
		return errors.New("ADMIN_TOKEN or ADMIN_TOKEN_HASH is required")
	}
	if c.Admin.RateLimit <= 0 {
		return fmt.Errorf("invalid admin rate limit: %v (must be positive)", c.Admin.RateLimit)
	}
	if c.Admin.RateBurst < 1 {
		return fmt.Errorf("invalid admin rate burst: %d (must be at least 1)", c.Admin.RateBurst)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data path to ~/Shelfkeeper/data. The memory
// driver never touches disk, so its path is left alone.
func (c *Config) expandDataPath() error {
	if c.Store.Driver == DriverMemory {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Shelfkeeper", "data")

	expanded, err := expandPath(c.Store.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Store.DataPath = expanded
	return nil
}

func overrideString(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

// parseBool accepts "true", "1", "yes" (case-insensitive) as true; anything else is false.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}

// loadEnvFile reads KEY=value pairs from a .env file (one per line, # for
// comments). The returned map is never nil.
func loadEnvFile(path string) (map[string]string, error) {
	values := make(map[string]string)

	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return values, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return values, fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		values[key] = value
	}

	return values, scanner.Err()
}

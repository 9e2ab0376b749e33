// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI provider settings
	AIProvider     string // "openai", "mistral"
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	MistralKey     string
	MistralModel   string
	MistralBaseURL string

	// Pexels stock photo API — multiple keys rotated round-robin.
	PexelsKeys []string

	// S3-compatible object storage for AI-generated images.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Demo WordPress destination. Used as the last-resort publish target
	// only when DemoMode is enabled and neither stored settings nor the
	// request supply credentials.
	DemoMode          bool
	DemoWordPressURL  string
	DemoWordPressUser string
	DemoWordPressPass string

	// GitHub mirroring (optional).
	GithubToken  string
	GithubOwner  string
	GithubRepo   string
	GithubBranch string

	// Source backup: comma-separated file paths mirrored periodically.
	BackupPaths []string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "blogforge"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "blogforge"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider:     envOrDefault("AI_PROVIDER", "openai"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		MistralKey:     os.Getenv("MISTRAL_API_KEY"),
		MistralModel:   envOrDefault("MISTRAL_MODEL", "mistral-small-latest"),
		MistralBaseURL: os.Getenv("MISTRAL_BASE_URL"),

		PexelsKeys: splitList(os.Getenv("PEXELS_API_KEYS")),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "eu-central"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "blogforge-media"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		DemoMode:          os.Getenv("WORDPRESS_DEMO_MODE") == "true",
		DemoWordPressURL:  os.Getenv("WORDPRESS_DEMO_URL"),
		DemoWordPressUser: os.Getenv("WORDPRESS_DEMO_USERNAME"),
		DemoWordPressPass: os.Getenv("WORDPRESS_DEMO_APP_PASSWORD"),

		GithubToken:  os.Getenv("GITHUB_TOKEN"),
		GithubOwner:  os.Getenv("GITHUB_OWNER"),
		GithubRepo:   os.Getenv("GITHUB_REPO"),
		GithubBranch: envOrDefault("GITHUB_BRANCH", "main"),

		BackupPaths: splitList(os.Getenv("BACKUP_PATHS")),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.DemoMode {
			return nil, fmt.Errorf("WORDPRESS_DEMO_MODE must not be enabled in production")
		}
	}

	if cfg.DemoMode && (cfg.DemoWordPressURL == "" || cfg.DemoWordPressUser == "" || cfg.DemoWordPressPass == "") {
		return nil, fmt.Errorf("demo mode requires WORDPRESS_DEMO_URL, WORDPRESS_DEMO_USERNAME and WORDPRESS_DEMO_APP_PASSWORD")
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// GithubConfigured reports whether the GitHub mirror can be used.
func (c *Config) GithubConfigured() bool {
	return c.GithubToken != "" && c.GithubOwner != "" && c.GithubRepo != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList splits a comma-separated environment value into trimmed items.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

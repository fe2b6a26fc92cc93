package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreSupabase = "supabase"
	StoreMemory   = "memory"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Auth emails
	AuthRedirectURL string

	// Database (migrations only)
	DatabaseURL string

	// Data store selection
	DataStore string
	SeedFile  string

	// Limits
	SignedURLTTL      time.Duration
	RemoteTimeout     time.Duration
	AuthRatePerMinute int

	// Server
	BaseURL     string
	Port        string
	Environment string
	LogLevel    string
}

// Load reads an optional .env file in the working directory and the process
// environment. Environment variables win.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		SupabaseURL:            v.GetString("SUPABASE_URL"),
		SupabasePublishableKey: v.GetString("SUPABASE_PUBLISHABLE_KEY"),
		SupabaseJWTSecret:      v.GetString("SUPABASE_JWT_SECRET"),
		SupabaseStorageBucket:  v.GetString("SUPABASE_STORAGE_BUCKET"),

		AuthRedirectURL: v.GetString("AUTH_REDIRECT_URL"),

		DatabaseURL: v.GetString("DATABASE_URL"),

		DataStore: v.GetString("DATA_STORE"),
		SeedFile:  v.GetString("SEED_FILE"),

		SignedURLTTL:      time.Duration(v.GetInt("SIGNED_URL_TTL_SECONDS")) * time.Second,
		RemoteTimeout:     time.Duration(v.GetInt("REMOTE_TIMEOUT_SECONDS")) * time.Second,
		AuthRatePerMinute: v.GetInt("AUTH_RATE_PER_MINUTE"),

		BaseURL:     v.GetString("BASE_URL"),
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SUPABASE_STORAGE_BUCKET", "project-files")
	v.SetDefault("DATA_STORE", StoreSupabase)
	v.SetDefault("SIGNED_URL_TTL_SECONDS", 3600)
	v.SetDefault("REMOTE_TIMEOUT_SECONDS", 15)
	v.SetDefault("AUTH_RATE_PER_MINUTE", 30)
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
}

// PublicAPIURL is the externally reachable /api/v1 root, used for links the
// in-memory store signs.
func (c *Config) PublicAPIURL() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "http://localhost:" + c.Port
	}
	return base + "/api/v1"
}

func (c *Config) Validate() error {
	switch c.DataStore {
	case StoreSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.SupabasePublishableKey == "" {
			return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("DATA_STORE must be %q or %q, got %q", StoreSupabase, StoreMemory, c.DataStore)
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.SignedURLTTL <= 0 {
		return fmt.Errorf("SIGNED_URL_TTL_SECONDS must be positive")
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT_SECONDS must be positive")
	}
	if c.AuthRatePerMinute <= 0 {
		return fmt.Errorf("AUTH_RATE_PER_MINUTE must be positive")
	}
	return nil
}

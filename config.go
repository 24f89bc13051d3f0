package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server ServerConfig
	App    AppConfig
	Launch LaunchConfig
	Cache  CacheConfig
	Rate   RateConfig
	SMTP   SMTPConfig
}

type ServerConfig struct {
	Port        string
	StaticDir   string
	ImagesDir   string
	CORSOrigins []string
}

type AppConfig struct {
	Environment string
	Version     string
	DBPath      string
}

type LaunchConfig struct {
	EcosystemBin      string
	EcosystemArgs     []string
	CodeProcessorBin  string
	CodeProcessorArgs []string
	Cooldown          time.Duration
}

type CacheConfig struct {
	MaxEntries int
	TTL        time.Duration
}

type RateConfig struct {
	Limit  int
	Window time.Duration
}

type SMTPConfig struct {
	Host    string
	Port    string
	User    string
	Pass    string
	ToEmail string
}

func loadConfig() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			StaticDir:   getEnv("STATIC_DIR", "./static"),
			ImagesDir:   getEnv("IMAGES_DIR", "./images"),
			CORSOrigins: splitEnv("CORS_ORIGINS", "*"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			DBPath:      getEnv("DB_PATH", "./portfolio.db"),
		},
		Launch: LaunchConfig{
			EcosystemBin:      getEnv("ECOSYSTEM_BIN", "./demos/ecosystem-simulator"),
			EcosystemArgs:     splitEnv("ECOSYSTEM_ARGS", ""),
			CodeProcessorBin:  getEnv("CODE_PROCESSOR_BIN", "python3"),
			CodeProcessorArgs: splitEnv("CODE_PROCESSOR_ARGS", "./demos/code_processor/main.py"),
			Cooldown:          getEnvAsDuration("LAUNCH_COOLDOWN", 3*time.Second),
		},
		Cache: CacheConfig{
			MaxEntries: getEnvAsInt("CACHE_MAX_ENTRIES", 64),
			TTL:        getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		Rate: RateConfig{
			Limit:  getEnvAsInt("RATE_LIMIT", 60),
			Window: getEnvAsDuration("RATE_WINDOW", time.Minute),
		},
		SMTP: SMTPConfig{
			Host:    getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:    getEnv("SMTP_PORT", "587"),
			User:    os.Getenv("SMTP_USER"),
			Pass:    os.Getenv("SMTP_PASS"),
			ToEmail: os.Getenv("TO_EMAIL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.App.Environment != "development" && c.App.Environment != "production" {
		return fmt.Errorf("APP_ENV must be development or production, got %q", c.App.Environment)
	}

	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be positive")
	}

	if c.Rate.Limit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive")
	}

	if c.Launch.EcosystemBin == "" || c.Launch.CodeProcessorBin == "" {
		return fmt.Errorf("launch executables must be configured")
	}

	return nil
}

func (c *Config) isProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logrus.Warnf("Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logrus.Warnf("Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

// splitEnv reads a whitespace-separated list from the environment.
func splitEnv(key, defaultValue string) []string {
	return strings.Fields(getEnv(key, defaultValue))
}

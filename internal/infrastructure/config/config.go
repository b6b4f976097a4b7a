// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml), with ${VAR} expansion
//  2. Environment variables (fallback), optionally seeded from a .env file
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	floor := cfg.Matching.ConfidenceFloor
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults used when neither the YAML file nor the environment set a value
const (
	DefaultDatabasePath    = "reconciler.db"
	DefaultAPIPort         = 8085
	DefaultConfidenceFloor = 40.0
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Parsing       ParsingConfig       `yaml:"parsing"`
	Matching      MatchingConfig      `yaml:"matching"`
	API           APIConfig           `yaml:"api"`
	OCR           OCRConfig           `yaml:"ocr"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ParsingConfig holds format parser settings
type ParsingConfig struct {
	// ProcessingYear is the year two-part dates resolve against. 0 means the
	// current calendar year.
	ProcessingYear    int    `yaml:"processing_year"`
	CategoryRulesPath string `yaml:"category_rules_path"`
}

// MatchingConfig holds matching engine settings
type MatchingConfig struct {
	ConfidenceFloor float64 `yaml:"confidence_floor"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// OCRConfig holds OCR engine settings
type OCRConfig struct {
	Azure AzureConfig `yaml:"azure"`
}

// AzureConfig holds Azure Computer Vision credentials
type AzureConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Enhance  bool   `yaml:"enhance"` // grayscale/contrast pre-pass before upload
}

// Enabled reports whether enough is configured to call the service
func (a AzureConfig) Enabled() bool {
	return a.Endpoint != "" && a.APIKey != ""
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // maven (default), json, text
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${AZURE_VISION_KEY})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILER_DB_PATH", DefaultDatabasePath),
		},
		Parsing: ParsingConfig{
			ProcessingYear:    getEnvInt("RECONCILER_PROCESSING_YEAR", 0),
			CategoryRulesPath: os.Getenv("RECONCILER_CATEGORY_RULES"),
		},
		Matching: MatchingConfig{
			ConfidenceFloor: getEnvFloat("RECONCILER_CONFIDENCE_FLOOR", DefaultConfidenceFloor),
		},
		API: APIConfig{
			Port:           getEnvInt("RECONCILER_API_PORT", DefaultAPIPort),
			AllowedOrigins: splitList(os.Getenv("RECONCILER_ALLOWED_ORIGINS")),
		},
		OCR: OCRConfig{
			Azure: AzureConfig{
				Endpoint: os.Getenv("AZURE_VISION_ENDPOINT"),
				APIKey:   os.Getenv("AZURE_VISION_KEY"),
				Enhance:  getEnv("AZURE_VISION_ENHANCE", "false") == "true",
			},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "maven"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to
// environment variables. A .env file in the working directory is loaded
// first when present; variables already set are not overridden.
func LoadOrEnvWithPath(path string) *Config {
	_ = godotenv.Load()

	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = DefaultDatabasePath
	}
	if c.Matching.ConfidenceFloor <= 0 {
		c.Matching.ConfidenceFloor = DefaultConfidenceFloor
	}
	if c.API.Port == 0 {
		c.API.Port = DefaultAPIPort
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "maven"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%g", &result); err == nil {
			return result
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

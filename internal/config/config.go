package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort        = 5000
	defaultEnv         = "development"
	defaultOpenAIModel = "gpt-3.5-turbo"
	defaultMaxTokens   = 500
	defaultTemperature = 0.7
)

// Environment variable fallbacks for settings absent from the YAML file.
const (
	EnvMongoURI     = "MONGO_CONNECTION_STRING"
	EnvDatabaseName = "DATABASE_NAME"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// AppConfig holds runtime startup configuration loaded from YAML and the
// process environment. Constructed once at startup and held for the process
// lifetime.
type AppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"` // "development" | "production"
	AllowedOrigins []string           `yaml:"allowed_origins"`
	Mongo          MongoRuntimeConfig `yaml:"mongo"`
	OpenAI         OpenAIConfig       `yaml:"openai"`
	RedisURL       string             `yaml:"redis_url"`
}

type MongoRuntimeConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	Endpoint    string  `yaml:"endpoint"` // optional OpenAI-compatible base URL
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type rawAppConfig struct {
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"`
	NodeEnv        string   `yaml:"node_env"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Mongo          struct {
		URI      string `yaml:"uri"`
		URL      string `yaml:"url"`
		Database string `yaml:"database"`
		Name     string `yaml:"name"`
	} `yaml:"mongo"`
	MongoURI     string `yaml:"mongo_uri"`
	DatabaseName string `yaml:"database_name"`
	OpenAI       struct {
		APIKey      string   `yaml:"api_key"`
		Endpoint    string   `yaml:"endpoint"`
		Model       string   `yaml:"model"`
		MaxTokens   int      `yaml:"max_tokens"`
		Temperature *float64 `yaml:"temperature"`
	} `yaml:"openai"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	RedisURL     string `yaml:"redis_url"`
}

// Load reads the YAML config at path, fills unset fields from the
// environment, and validates required settings. A missing file at the
// default path is not an error so an env-only deployment keeps working; an
// explicitly requested file must exist.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != "" && path != DefaultConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if decodeErr := decoder.Decode(&raw); decodeErr != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, decodeErr)
		}
		applyRawAppConfig(&cfg, raw)
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// fall through to env-only configuration
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnv(&cfg)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	if cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("mongo uri is required (set mongo.uri or %s)", EnvMongoURI)
	}
	if cfg.Mongo.Database == "" {
		return nil, fmt.Errorf("mongo database is required (set mongo.database or %s)", EnvDatabaseName)
	}
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required (set openai.api_key or %s)", EnvOpenAIAPIKey)
	}
	if cfg.OpenAI.MaxTokens <= 0 {
		return nil, fmt.Errorf("invalid openai.max_tokens %d, expected > 0", cfg.OpenAI.MaxTokens)
	}
	if cfg.OpenAI.Temperature < 0 || cfg.OpenAI.Temperature > 2 {
		return nil, fmt.Errorf("invalid openai.temperature %v, expected 0-2", cfg.OpenAI.Temperature)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		OpenAI: OpenAIConfig{
			Model:       defaultOpenAIModel,
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}

	if v := strings.TrimSpace(raw.Mongo.URI); v != "" {
		cfg.Mongo.URI = v
	}
	if v := strings.TrimSpace(raw.Mongo.URL); v != "" {
		cfg.Mongo.URI = v
	}
	if v := strings.TrimSpace(raw.MongoURI); v != "" {
		cfg.Mongo.URI = v
	}
	if v := strings.TrimSpace(raw.Mongo.Database); v != "" {
		cfg.Mongo.Database = v
	}
	if v := strings.TrimSpace(raw.Mongo.Name); v != "" {
		cfg.Mongo.Database = v
	}
	if v := strings.TrimSpace(raw.DatabaseName); v != "" {
		cfg.Mongo.Database = v
	}

	if v := strings.TrimSpace(raw.OpenAI.APIKey); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := strings.TrimSpace(raw.OpenAIAPIKey); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := strings.TrimSpace(raw.OpenAI.Endpoint); v != "" {
		cfg.OpenAI.Endpoint = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(raw.OpenAI.Model); v != "" {
		cfg.OpenAI.Model = v
	}
	if raw.OpenAI.MaxTokens != 0 {
		cfg.OpenAI.MaxTokens = raw.OpenAI.MaxTokens
	}
	if raw.OpenAI.Temperature != nil {
		cfg.OpenAI.Temperature = *raw.OpenAI.Temperature
	}

	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.RedisURL = v
	}

	cfg.Env = normalizeEnv(cfg.Env)
}

func applyEnv(cfg *AppConfig) {
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = strings.TrimSpace(os.Getenv(EnvMongoURI))
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = strings.TrimSpace(os.Getenv(EnvDatabaseName))
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = strings.TrimSpace(os.Getenv(EnvOpenAIAPIKey))
	}
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

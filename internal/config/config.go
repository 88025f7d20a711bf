// Package config loads configuration from environment variables with an
// optional YAML overlay file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// Embedding
	EmbedProvider  Provider `yaml:"embed_provider"`
	EmbedModel     string   `yaml:"embed_model"`
	EmbedDimension int      `yaml:"embed_dimension"`

	// LLM
	LLMProvider Provider `yaml:"llm_provider"`
	LLMModel    string   `yaml:"llm_model"`

	// Provider credentials / endpoints
	OllamaHost      string `yaml:"ollama_host"`
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	AWSRegion       string `yaml:"aws_region"`

	// Pipeline tuning. TTL and topK bounds are configuration, not constants.
	CacheBackend       string        `yaml:"cache_backend"` // memory, surreal, none
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	TopK               int           `yaml:"top_k"`
	TopKMax            int           `yaml:"top_k_max"`
	RetrievalRetries   int           `yaml:"retrieval_retries"`
	RetryBackoff       time.Duration `yaml:"retry_backoff"`
	ContextTokenBudget int           `yaml:"context_token_budget"`
	EmbedTimeout       time.Duration `yaml:"embed_timeout"`
	SearchTimeout      time.Duration `yaml:"search_timeout"`
	GenerateTimeout    time.Duration `yaml:"generate_timeout"`
	MediaTimeout       time.Duration `yaml:"media_timeout"`

	// Media CDN
	MediaBaseURL string        `yaml:"media_base_url"`
	MediaToken   string        `yaml:"-"`
	MediaURLTTL  time.Duration `yaml:"media_url_ttl"`

	// Server
	ServerPort string `yaml:"server_port"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables, then applies the YAML
// file named by DOJO_CONFIG (if set). Credentials always come from the
// environment.
func Load() (Config, error) {
	cfg := Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "dojosearch"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "search"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		EmbedProvider:  Provider(getEnv("DOJO_EMBED_PROVIDER", string(ProviderOllama))),
		EmbedModel:     getEnv("DOJO_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("DOJO_EMBED_DIMENSION", 384),

		LLMProvider: Provider(getEnv("DOJO_LLM_PROVIDER", string(ProviderOllama))),
		LLMModel:    getEnv("DOJO_LLM_MODEL", "llama3.2"),

		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),

		CacheBackend:       getEnv("DOJO_CACHE_BACKEND", "memory"),
		CacheTTL:           getEnvDuration("DOJO_CACHE_TTL", time.Hour),
		TopK:               getEnvInt("DOJO_TOP_K", 5),
		TopKMax:            getEnvInt("DOJO_TOP_K_MAX", 20),
		RetrievalRetries:   getEnvInt("DOJO_RETRIEVAL_RETRIES", 2),
		RetryBackoff:       getEnvDuration("DOJO_RETRY_BACKOFF", 200*time.Millisecond),
		ContextTokenBudget: getEnvInt("DOJO_CONTEXT_TOKEN_BUDGET", 3000),
		EmbedTimeout:       getEnvDuration("DOJO_EMBED_TIMEOUT", 10*time.Second),
		SearchTimeout:      getEnvDuration("DOJO_SEARCH_TIMEOUT", 10*time.Second),
		GenerateTimeout:    getEnvDuration("DOJO_GENERATE_TIMEOUT", 60*time.Second),
		MediaTimeout:       getEnvDuration("DOJO_MEDIA_TIMEOUT", 5*time.Second),

		MediaBaseURL: getEnv("DOJO_MEDIA_BASE_URL", ""),
		MediaToken:   os.Getenv("DOJO_MEDIA_TOKEN"),
		MediaURLTTL:  getEnvDuration("DOJO_MEDIA_URL_TTL", time.Hour),

		ServerPort: getEnv("DOJO_SERVER_PORT", "8585"),

		LogFile:  getEnv("DOJO_LOG_FILE", "/tmp/dojosearch.log"),
		LogLevel: parseLogLevel(getEnv("DOJO_LOG_LEVEL", "INFO")),
	}

	if path := os.Getenv("DOJO_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyFile overlays values from a YAML file. Only keys present in the file
// are touched.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be >= 1, got %d", c.TopK)
	}
	if c.TopKMax < c.TopK {
		return fmt.Errorf("top_k_max (%d) must be >= top_k (%d)", c.TopKMax, c.TopK)
	}
	if c.RetrievalRetries < 0 {
		return fmt.Errorf("retrieval_retries must be >= 0, got %d", c.RetrievalRetries)
	}
	switch c.CacheBackend {
	case "memory", "surreal", "none":
	default:
		return fmt.Errorf("unknown cache backend: %s", c.CacheBackend)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

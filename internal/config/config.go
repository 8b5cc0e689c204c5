package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
)

type Config struct {
	HTTPPort    string `yaml:"http_port"`
	DatabaseURL string `yaml:"database_url"` // Empty disables analysis history
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // "console" or "json"

	Classifier ClassifierConfig `yaml:"classifier"`

	RedisURL string        `yaml:"redis_url"` // Empty disables the classification cache
	CacheTTL time.Duration `yaml:"cache_ttl"`

	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Palette overrides the label colours; DefaultColor applies to the rest.
	Palette      map[string]string `yaml:"palette"`
	DefaultColor string            `yaml:"default_color"`
}

type ClassifierConfig struct {
	Provider     string        `yaml:"provider"`
	HFAPIToken   string        `yaml:"hf_api_token"`
	HFModel      string        `yaml:"hf_model"`
	HFEndpoint   string        `yaml:"hf_endpoint"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	GeminiModel  string        `yaml:"gemini_model"`
	Timeout      time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		HTTPPort:    "8080",
		DatabaseURL: "chatmood.db",
		LogLevel:    "info",
		LogFormat:   "console",
		Classifier: ClassifierConfig{
			Provider:    ProviderHuggingFace,
			HFModel:     "SamLowe/roberta-base-go_emotions",
			HFEndpoint:  "https://api-inference.huggingface.co",
			GeminiModel: "gemini-1.5-flash-latest",
			Timeout:     30 * time.Second,
		},
		CacheTTL:       24 * time.Hour,
		MaxUploadBytes: 20 << 20,
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file
// named by CONFIG_FILE (if any), then environment variables. A .env file in
// the working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if it exists

	cfg := DefaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-provided config path
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.Classifier.Provider = getEnv("CLASSIFIER_PROVIDER", c.Classifier.Provider)
	c.Classifier.HFAPIToken = getEnv("HF_API_TOKEN", c.Classifier.HFAPIToken)
	c.Classifier.HFModel = getEnv("HF_MODEL", c.Classifier.HFModel)
	c.Classifier.HFEndpoint = getEnv("HF_ENDPOINT", c.Classifier.HFEndpoint)
	c.Classifier.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.Classifier.GeminiAPIKey)
	c.Classifier.GeminiModel = getEnv("GEMINI_MODEL", c.Classifier.GeminiModel)
	c.Classifier.Timeout = getEnvAsDuration("CLASSIFIER_TIMEOUT", c.Classifier.Timeout)

	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.CacheTTL = getEnvAsDuration("CACHE_TTL", c.CacheTTL)
	c.MaxUploadBytes = getEnvAsInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.DefaultColor = getEnv("DEFAULT_COLOR", c.DefaultColor)
}

// Validate checks the settings that would otherwise fail at first use.
// Colours are validated where the palette is built.
func (c *Config) Validate() error {
	c.Classifier.Provider = strings.ToLower(strings.TrimSpace(c.Classifier.Provider))
	switch c.Classifier.Provider {
	case ProviderHuggingFace:
		if c.Classifier.HFModel == "" {
			return errors.New("classifier.hf_model is required for the huggingface provider")
		}
	case ProviderGemini:
		if c.Classifier.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("classifier.provider: unknown provider %q (want %s or %s)", c.Classifier.Provider, ProviderHuggingFace, ProviderGemini)
	}

	if c.Classifier.Timeout <= 0 {
		return errors.New("classifier.timeout must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be positive")
	}
	if c.RedisURL != "" && c.CacheTTL <= 0 {
		return errors.New("cache_ttl must be positive when redis_url is set")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format: unknown format %q (want console or json)", c.LogFormat)
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

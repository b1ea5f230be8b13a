// Package config provides configuration loading and validation for the CLI
// and server. Files may be JSON or YAML; environment variables override
// file values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-intake/internal/llm"
	"github.com/jonathan/resume-intake/internal/logging"
	"github.com/jonathan/resume-intake/internal/store"
	"github.com/jonathan/resume-intake/internal/types"
)

// Config represents the application configuration.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	UserID   string                        `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Mappings []types.SourceDocumentMapping `json:"mappings,omitempty" yaml:"mappings,omitempty" validate:"dive"`
	Store    store.Config                  `json:"store" yaml:"store"`
	LLM      LLMConfig                     `json:"llm" yaml:"llm"`
	Logging  logging.Config                `json:"logging" yaml:"logging"`
	Server   ServerConfig                  `json:"server" yaml:"server"`
	Verbose  bool                          `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// LLMConfig selects and tunes the completion provider
type LLMConfig struct {
	Provider       string  `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=gemini openai"`
	APIKey         string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL        string  `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	LiteModel      string  `json:"lite_model,omitempty" yaml:"lite_model,omitempty"`
	StandardModel  string  `json:"standard_model,omitempty" yaml:"standard_model,omitempty"`
	AdvancedModel  string  `json:"advanced_model,omitempty" yaml:"advanced_model,omitempty"`
	Temperature    float32 `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"gte=0,lte=2"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"gte=0"`
	// QPM caps requests per minute. 0 keeps the provider default and a
	// negative value turns client-side limiting off.
	QPM            int     `json:"qpm,omitempty" yaml:"qpm,omitempty"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// DefaultMappings are the source documents a user can provide
func DefaultMappings() []types.SourceDocumentMapping {
	return []types.SourceDocumentMapping{
		{SourceID: "resume-pdf", TargetID: "resume-pdf-extracted", DisplayName: "Resume (PDF)"},
		{SourceID: "resume-docx", TargetID: "resume-docx-extracted", DisplayName: "Resume (DOCX)"},
		{SourceID: "resume-txt", TargetID: "resume-txt-extracted", DisplayName: "Resume (TXT)"},
		{SourceID: "freeform", TargetID: "freeform-extracted", DisplayName: "Freeform notes"},
	}
}

// Defaults returns the configuration used when nothing else is given
func Defaults() Config {
	return Config{
		UserID:   store.DefaultUserID,
		Mappings: DefaultMappings(),
		Store:    store.Config{Driver: store.DriverMemory},
		LLM:      LLMConfig{Provider: string(llm.ProviderGemini)},
		Logging:  logging.Config{Level: "info", Format: "pretty"},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by
// extension (.yaml/.yml are YAML, anything else JSON).
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

var validate = validator.New()

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	sources := make(map[string]bool, len(c.Mappings))
	targets := make(map[string]bool, len(c.Mappings))
	for _, m := range c.Mappings {
		if sources[m.SourceID] {
			return fmt.Errorf("config error: duplicate source id %q", m.SourceID)
		}
		if targets[m.TargetID] {
			return fmt.Errorf("config error: duplicate target id %q", m.TargetID)
		}
		sources[m.SourceID] = true
		targets[m.TargetID] = true
	}

	switch c.Store.Driver {
	case store.DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config error: 'store.database_url' is required for the postgres driver")
		}
	case store.DriverRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("config error: 'store.redis.addr' is required for the redis driver")
		}
	case store.DriverMinIO:
		if c.Store.MinIO.Endpoint == "" {
			return fmt.Errorf("config error: 'store.minio.endpoint' is required for the minio driver")
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Bools cannot distinguish unset from false, so they are not merged.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.UserID == "" {
		result.UserID = defaults.UserID
	}
	if len(result.Mappings) == 0 {
		result.Mappings = defaults.Mappings
	}

	if result.Store.Driver == "" {
		result.Store.Driver = defaults.Store.Driver
	}
	if result.Store.DatabaseURL == "" {
		result.Store.DatabaseURL = defaults.Store.DatabaseURL
	}
	if result.Store.Table == "" {
		result.Store.Table = defaults.Store.Table
	}
	if result.Store.Redis == (store.RedisConfig{}) {
		result.Store.Redis = defaults.Store.Redis
	}
	if result.Store.MinIO == (store.MinIOConfig{}) {
		result.Store.MinIO = defaults.Store.MinIO
	}

	l, d := &result.LLM, defaults.LLM
	if l.Provider == "" {
		l.Provider = d.Provider
	}
	if l.APIKey == "" {
		l.APIKey = d.APIKey
	}
	if l.BaseURL == "" {
		l.BaseURL = d.BaseURL
	}
	if l.LiteModel == "" {
		l.LiteModel = d.LiteModel
	}
	if l.StandardModel == "" {
		l.StandardModel = d.StandardModel
	}
	if l.AdvancedModel == "" {
		l.AdvancedModel = d.AdvancedModel
	}
	if l.Temperature == 0 {
		l.Temperature = d.Temperature
	}
	if l.TimeoutSeconds == 0 {
		l.TimeoutSeconds = d.TimeoutSeconds
	}
	if l.QPM == 0 {
		l.QPM = d.QPM
	}

	if result.Logging.Level == "" {
		result.Logging.Level = defaults.Logging.Level
	}
	if result.Logging.Format == "" {
		result.Logging.Format = defaults.Logging.Format
	}
	if result.Logging.TimeFormat == "" {
		result.Logging.TimeFormat = defaults.Logging.TimeFormat
	}

	if result.Server.Addr == "" {
		result.Server.Addr = defaults.Server.Addr
	}

	return result
}

// ApplyEnv overrides fields from environment variables that are set.
// getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.UserID, "USER_ID")
	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")
	set(&c.Store.Driver, "STORE_DRIVER")
	set(&c.Store.DatabaseURL, "DATABASE_URL")
	set(&c.Store.Redis.Addr, "REDIS_ADDR")
	set(&c.Store.Redis.Password, "REDIS_PASSWORD")
	set(&c.Store.MinIO.Endpoint, "MINIO_ENDPOINT")
	set(&c.Store.MinIO.AccessKeyID, "MINIO_ACCESS_KEY")
	set(&c.Store.MinIO.SecretAccessKey, "MINIO_SECRET_KEY")
	set(&c.Store.MinIO.Bucket, "MINIO_BUCKET")
	set(&c.Logging.Level, "LOG_LEVEL")
	set(&c.Logging.Format, "LOG_FORMAT")
	set(&c.Server.Addr, "SERVER_ADDR")
}

// ApplyAPIKeyEnv reads the API key from the variable matching the provider
// (OPENAI_API_KEY or GEMINI_API_KEY). Call it once the provider is final.
func (c *Config) ApplyAPIKeyEnv(getenv func(string) string) {
	key := "GEMINI_API_KEY"
	if c.LLM.Provider == string(llm.ProviderOpenAI) {
		key = "OPENAI_API_KEY"
	}
	if v := getenv(key); v != "" {
		c.LLM.APIKey = v
	}
}

// ToLLM builds the llm package configuration, starting from the provider's
// defaults and overriding whatever is set here.
func (l LLMConfig) ToLLM() *llm.Config {
	cfg := llm.DefaultGeminiConfig()
	if l.Provider == string(llm.ProviderOpenAI) {
		cfg = llm.DefaultOpenAIConfig()
	}

	for tier, model := range map[llm.ModelTier]string{
		llm.TierLite:     l.LiteModel,
		llm.TierStandard: l.StandardModel,
		llm.TierAdvanced: l.AdvancedModel,
	} {
		if model != "" {
			cfg = cfg.WithModel(tier, model)
		}
	}
	if l.BaseURL != "" {
		cfg.BaseURL = l.BaseURL
	}
	if l.Temperature > 0 {
		cfg.Temperature = l.Temperature
	}
	if l.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(l.TimeoutSeconds) * time.Second
	}
	switch {
	case l.QPM > 0:
		cfg.QPM = l.QPM
	case l.QPM < 0:
		cfg.QPM = 0
	}
	return cfg
}

// Mapping looks up a configured mapping by source ID
func (c *Config) Mapping(sourceID string) (types.SourceDocumentMapping, bool) {
	for _, m := range c.Mappings {
		if m.SourceID == sourceID {
			return m, true
		}
	}
	return types.SourceDocumentMapping{}, false
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-7-sonnet-latest"
)

// Config is the resolved runtime configuration. Precedence, lowest first:
// Defaults, YAML file, AGT_* environment, command-line flags.
type Config struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int64  `yaml:"max_tokens"`
	// APIKey is only read from the environment.
	APIKey string `yaml:"-"`

	TokenFile string `yaml:"token_file"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	CompletionTimeout time.Duration `yaml:"completion_timeout"`
	ToolTimeout       time.Duration `yaml:"tool_timeout"`
	MaxRounds         int           `yaml:"max_rounds"`
	Retry             Retry         `yaml:"retry"`

	ObserveJSON  bool   `yaml:"observe_json"`
	ArtifactsDir string `yaml:"artifacts_dir"`
	MetricsAddr  string `yaml:"metrics_addr"`
	TraceFile    string `yaml:"trace_file"`
	Transcript   string `yaml:"transcript"`
}

type Retry struct {
	MaxTries uint `yaml:"max_tries"`
}

func Defaults() Config {
	return Config{
		Provider:          ProviderOpenAI,
		TokenFile:         "token.json",
		LogLevel:          "info",
		LogFormat:         "text",
		CompletionTimeout: 2 * time.Minute,
		ToolTimeout:       30 * time.Second,
		MaxRounds:         16,
		Retry:             Retry{MaxTries: 1},
		ArtifactsDir:      ".agent",
	}
}

// Load resolves defaults, the YAML file at path (skipped when empty) and the
// environment. The model defaults per provider when left unset.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		// An empty file decodes to io.EOF and leaves the defaults.
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.Finalize()
	return cfg, nil
}

// Finalize fills values that depend on other fields. Call it again after
// applying flags.
func (c *Config) Finalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Model == "" {
		c.Model = DefaultModel(c.Provider)
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv(apiKeyEnv(c.Provider))
	}
}

// SetProvider switches provider. A model or API key that was only filled in
// as the old provider's default is cleared so Finalize picks the new one.
func (c *Config) SetProvider(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == c.Provider {
		return
	}
	if c.Model == DefaultModel(c.Provider) {
		c.Model = ""
	}
	if c.APIKey != "" && c.APIKey == os.Getenv(apiKeyEnv(c.Provider)) {
		c.APIKey = ""
	}
	c.Provider = name
}

// DefaultModel is the model used for provider when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return defaultAnthropicModel
	}
	return defaultOpenAIModel
}

func apiKeyEnv(provider string) string {
	if provider == ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
		return nil
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str("AGT_PROVIDER", &c.Provider)
	str("AGT_MODEL", &c.Model)
	str("AGT_BASE_URL", &c.BaseURL)
	str("AGT_API_KEY", &c.APIKey)
	str("AGT_TOKEN_FILE", &c.TokenFile)
	str("AGT_LOG_LEVEL", &c.LogLevel)
	str("AGT_LOG_FORMAT", &c.LogFormat)
	str("AGT_ARTIFACTS_DIR", &c.ArtifactsDir)
	str("AGT_METRICS_ADDR", &c.MetricsAddr)
	str("AGT_TRACE_FILE", &c.TraceFile)
	str("AGT_TRANSCRIPT", &c.Transcript)
	if v, ok := lookup("AGT_OBSERVE_JSON"); ok && v != "" {
		c.ObserveJSON = v == "1" || strings.EqualFold(v, "true")
	}

	var maxTokens, tries int
	errs := []error{
		dur("AGT_COMPLETION_TIMEOUT", &c.CompletionTimeout),
		dur("AGT_TOOL_TIMEOUT", &c.ToolTimeout),
		integer("AGT_MAX_ROUNDS", &c.MaxRounds),
		integer("AGT_MAX_TOKENS", &maxTokens),
		integer("AGT_RETRY_MAX_TRIES", &tries),
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if maxTokens > 0 {
		c.MaxTokens = int64(maxTokens)
	}
	if tries > 0 {
		c.Retry.MaxTries = uint(tries)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderOpenAI, ProviderAnthropic))
	}
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if c.CompletionTimeout < 0 {
		errs = append(errs, errors.New("completion_timeout must not be negative"))
	}
	if c.ToolTimeout < 0 {
		errs = append(errs, errors.New("tool_timeout must not be negative"))
	}
	if c.MaxRounds < 0 {
		errs = append(errs, errors.New("max_rounds must not be negative"))
	}
	if c.MaxTokens < 0 {
		errs = append(errs, errors.New("max_tokens must not be negative"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

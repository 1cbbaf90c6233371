package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-swarm/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AGT_PROVIDER", "AGT_MODEL", "AGT_BASE_URL", "AGT_API_KEY", "AGT_TOKEN_FILE",
		"AGT_LOG_LEVEL", "AGT_LOG_FORMAT", "AGT_ARTIFACTS_DIR", "AGT_METRICS_ADDR",
		"AGT_TRACE_FILE", "AGT_TRANSCRIPT", "AGT_OBSERVE_JSON", "AGT_COMPLETION_TIMEOUT",
		"AGT_TOOL_TIMEOUT", "AGT_MAX_ROUNDS", "AGT_MAX_TOKENS", "AGT_RETRY_MAX_TRIES",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "swarm.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "token.json", cfg.TokenFile)
	assert.Equal(t, 16, cfg.MaxRounds)
	assert.Equal(t, uint(1), cfg.Retry.MaxTries)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, `
provider: anthropic
tool_timeout: 5s
max_rounds: 4
retry:
  max_tries: 3
metrics_addr: ":9090"
`)
	t.Setenv("AGT_MAX_ROUNDS", "8")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := config.Load(p)
	require.NoError(t, err)

	assert.Equal(t, config.ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-3-7-sonnet-latest", cfg.Model, "model follows provider")
	assert.Equal(t, 5*time.Second, cfg.ToolTimeout)
	assert.Equal(t, 8, cfg.MaxRounds, "env overrides file")
	assert.Equal(t, uint(3), cfg.Retry.MaxTries)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "sk-ant", cfg.APIKey)
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().ToolTimeout, cfg.ToolTimeout)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "providr: openai\n"))
	assert.Error(t, err, "unknown keys are rejected")

	t.Setenv("AGT_TOOL_TIMEOUT", "soon")
	_, err = config.Load("")
	assert.ErrorContains(t, err, "AGT_TOOL_TIMEOUT")
}

func TestLoad_ObserveFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGT_OBSERVE_JSON", "1")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.True(t, cfg.ObserveJSON)
}

func TestValidate(t *testing.T) {
	cfg := config.Defaults()
	cfg.Finalize()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Provider = "llama"
	bad.ToolTimeout = -time.Second
	bad.LogFormat = "xml"
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
	assert.Contains(t, err.Error(), "tool_timeout")
	assert.Contains(t, err.Error(), "log_format")

	bad = cfg
	bad.Model = " "
	assert.ErrorContains(t, bad.Validate(), "model")
}

func TestSetProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "sk-openai", cfg.APIKey)

	cfg.SetProvider("Anthropic")
	cfg.Finalize()
	assert.Equal(t, config.ProviderAnthropic, cfg.Provider)
	assert.Equal(t, config.DefaultModel(config.ProviderAnthropic), cfg.Model)
	assert.Equal(t, "sk-ant", cfg.APIKey)
}

func TestSetProvider_KeepsExplicitModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGT_MODEL", "claude-sonnet-4-0")
	t.Setenv("AGT_API_KEY", "explicit")

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.SetProvider(config.ProviderAnthropic)
	cfg.Finalize()
	assert.Equal(t, "claude-sonnet-4-0", cfg.Model)
	assert.Equal(t, "explicit", cfg.APIKey)
}

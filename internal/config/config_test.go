package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "STUDYBUDDY_AI_API_KEY", "STUDYBUDDY_AI_PROVIDER"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Storage.Primary)
	assert.Equal(t, 4000, cfg.Storage.PrimaryLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.Storage.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Storage.PrefTTL)
	assert.Equal(t, 10*time.Second, cfg.AI.FetchTimeout)
	assert.Equal(t, 10000, cfg.AI.URLTextLimit)
	assert.Equal(t, "https://api.allorigins.win/raw?url=", cfg.AI.Relay)
	assert.Equal(t, 30*time.Second, cfg.Autosave)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearKeyEnv(t)
	path := writeConfig(t, `
db: /tmp/sb.db
log:
  level: debug
storage:
  primary: redis
  primary_limit: 2048
  session_ttl: 24h
redis:
  addr: localhost:6379
ai:
  provider: openai
  model: gpt-4o
  fallback_models:
    - custom-exp=custom-preview
autosave: 1m
`)
	t.Setenv("STUDYBUDDY_LOG_LEVEL", "warn")
	t.Setenv("STUDYBUDDY_AI_API_KEY", "sk-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "/tmp/sb.db", cfg.DB)
	assert.Equal(t, "warn", cfg.Log.Level, "env overrides file")
	assert.Equal(t, "redis", cfg.Storage.Primary)
	assert.Equal(t, 2048, cfg.Storage.PrimaryLimit)
	assert.Equal(t, 24*time.Hour, cfg.Storage.SessionTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Autosave)

	sc := cfg.StoreConfig("/tmp/sb.db")
	assert.Equal(t, "redis", sc.Primary)
	assert.Equal(t, "localhost:6379", sc.Redis.Addr)
	assert.Equal(t, "studybuddy:", sc.Redis.Prefix)

	lc, err := cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, "openai", lc.Provider)
	assert.Equal(t, "sk-from-env", lc.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", lc.OpenAI.Model)
	assert.Equal(t, "custom-preview", lc.Fallbacks["custom-exp"])
	assert.Equal(t, "gemini-2.5-pro-preview-03-25", lc.Fallbacks["gemini-2.5-pro-exp-03-25"])
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLLMConfig_DiscoversProviderFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg := &Config{}
	lc, err := cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", lc.Provider)
	assert.Equal(t, "sk-ant", lc.APIKey())
}

func TestLLMConfig_ExplicitProviderUsesItsOwnKey(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem")
	t.Setenv("OPENROUTER_API_KEY", "or")

	cfg := &Config{AI: AIConfig{Provider: "openrouter"}}
	lc, err := cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, "or", lc.APIKey())
}

func TestLLMConfig_DefaultsToGeminiWithoutKeys(t *testing.T) {
	clearKeyEnv(t)

	lc, err := (&Config{}).LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, "gemini", lc.Provider)
	assert.Error(t, lc.Validate())
}

func TestLLMConfig_InvalidFallback(t *testing.T) {
	clearKeyEnv(t)
	cfg := &Config{AI: AIConfig{FallbackModels: []string{"no-separator"}}}
	_, err := cfg.LLMConfig()
	assert.Error(t, err)
}

func TestLogFile(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	assert.Equal(t, "/state/studybuddy/studybuddy.log", (&Config{}).LogFile())
	assert.Equal(t, "/x.log", (&Config{Log: LogConfig{File: "/x.log"}}).LogFile())
}

func TestDBPath(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{DB: filepath.Join(dir, "nested", "sb.db")}
	p, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, cfg.DB, p)
	_, err = os.Stat(filepath.Join(dir, "nested"))
	assert.NoError(t, err)
}

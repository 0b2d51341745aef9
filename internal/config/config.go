package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/studybuddy/internal/llm"
	"github.com/abhisek/studybuddy/internal/logger"
	"github.com/abhisek/studybuddy/internal/store"
)

const envPrefix = "STUDYBUDDY"

type Config struct {
	DB       string        `mapstructure:"db"`
	Log      LogConfig     `mapstructure:"log"`
	Storage  StorageConfig `mapstructure:"storage"`
	Redis    RedisConfig   `mapstructure:"redis"`
	AI       AIConfig      `mapstructure:"ai"`
	Autosave time.Duration `mapstructure:"autosave"`

	// Set by Load, not read from configuration.
	ConfigFile    string `mapstructure:"-"`
	EnvFileLoaded bool   `mapstructure:"-"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type StorageConfig struct {
	Primary      string        `mapstructure:"primary"`
	PrimaryLimit int           `mapstructure:"primary_limit"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	PrefTTL      time.Duration `mapstructure:"pref_ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	APIKey       string        `mapstructure:"api_key"`
	Relay        string        `mapstructure:"relay"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	URLTextLimit int           `mapstructure:"url_text_limit"`

	// FallbackModels holds "experimental=replacement" pairs.
	FallbackModels []string `mapstructure:"fallback_models"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("storage.primary", "sqlite")
	v.SetDefault("storage.primary_limit", store.DefaultPrimaryLimit)
	v.SetDefault("storage.session_ttl", store.DefaultSessionTTL)
	v.SetDefault("storage.pref_ttl", store.DefaultPrefTTL)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "studybuddy:")
	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.relay", "https://api.allorigins.win/raw?url=")
	v.SetDefault("ai.fetch_timeout", 10*time.Second)
	v.SetDefault("ai.url_text_limit", 10000)
	v.SetDefault("ai.fallback_models", []string{})
	v.SetDefault("autosave", 30*time.Second)
}

// Load reads configuration from defaults, an optional YAML file, a .env
// file in the working directory and STUDYBUDDY_* environment variables,
// in increasing priority. An empty path searches the user config dir.
func Load(path string) (*Config, error) {
	envLoaded := godotenv.Load() == nil

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("redis.addr", envPrefix+"_REDIS_ADDR", "REDIS_ADDR")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.EnvFileLoaded = envLoaded
	return &cfg, nil
}

// DBPath returns the configured database path, or the default location.
func (c *Config) DBPath() (string, error) {
	if c.DB != "" {
		return c.DB, store.EnsureDir(c.DB)
	}
	return store.DefaultDBPath()
}

// LogFile returns the configured log file, or the default under the
// user state dir.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "studybuddy", "studybuddy.log")
}

func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.Log.Level, File: c.LogFile()}
}

// StoreConfig maps the storage keys onto store.Config.
func (c *Config) StoreConfig(dbPath string) store.Config {
	return store.Config{
		DBPath:       dbPath,
		Primary:      c.Storage.Primary,
		PrimaryLimit: c.Storage.PrimaryLimit,
		SessionTTL:   c.Storage.SessionTTL,
		PrefTTL:      c.Storage.PrefTTL,
		Redis: store.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		},
	}
}

// LLMConfig builds the provider configuration. Without an explicit
// provider, the first standard API key env var found selects one.
func (c *Config) LLMConfig() (llm.Config, error) {
	cfg := llm.DefaultConfig()

	provider, key := c.AI.Provider, c.AI.APIKey
	switch {
	case provider != "":
		if key == "" {
			key = llm.EnvKey(provider)
		}
	case key != "":
		provider = cfg.Provider
	default:
		if p, k, ok := llm.DiscoverKey(); ok {
			provider, key = p, k
		} else {
			provider = cfg.Provider
		}
	}
	cfg.Provider = provider
	cfg = cfg.WithCredentials(key, c.AI.Model)

	fallbacks, err := parseFallbacks(c.AI.FallbackModels)
	if err != nil {
		return cfg, err
	}
	merged := make(map[string]string, len(cfg.Fallbacks)+len(fallbacks))
	for k, v := range cfg.Fallbacks {
		merged[k] = v
	}
	for k, v := range fallbacks {
		merged[k] = v
	}
	cfg.Fallbacks = merged
	return cfg, nil
}

func parseFallbacks(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		from, to, ok := strings.Cut(p, "=")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid fallback model %q: want experimental=replacement", p)
		}
		out[from] = to
	}
	return out, nil
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "studybuddy"), nil
}

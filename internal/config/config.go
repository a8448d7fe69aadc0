// Package config loads codepet settings from flags, CODEPET_* environment
// variables, an optional .env file and config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codepet/codepet/internal/llm"
	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/server"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

// EnvPrefix prefixes every environment override, e.g. CODEPET_STORAGE_DB_PATH.
const EnvPrefix = "CODEPET"

type Config struct {
	App     AppConfig     `mapstructure:"app" yaml:"app"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Remote  RemoteConfig  `mapstructure:"remote" yaml:"remote"`
	Server  server.Config `mapstructure:"server" yaml:"server"`
	LLM     llm.Config    `mapstructure:"llm" yaml:"llm"`
}

type AppConfig struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Timezone defines calendar days for streaks. Empty means local time.
	Timezone string `mapstructure:"timezone" yaml:"timezone"`

	// UpdateRepo is the GitHub owner/name releases are fetched from.
	UpdateRepo string `mapstructure:"update_repo" yaml:"update_repo"`
}

type StorageConfig struct {
	// DBPath overrides the default database location.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

type CatalogConfig struct {
	// Path points at a YAML catalog replacing the built-in one.
	Path string `mapstructure:"path" yaml:"path"`
}

// RemoteConfig points the CLI at a codepet API instead of the local store.
type RemoteConfig struct {
	URL       string        `mapstructure:"url" yaml:"url"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst     int           `mapstructure:"burst" yaml:"burst"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		App: AppConfig{
			LogLevel:   "info",
			LogFormat:  string(logger.FormatConsole),
			UpdateRepo: "codepet/codepet",
		},
		Remote: RemoteConfig{
			RateLimit: 5,
			Burst:     10,
			Timeout:   15 * time.Second,
		},
		Server: server.DefaultConfig(),
		LLM:    llm.DefaultConfig(),
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("app.log_level", d.App.LogLevel)
	v.SetDefault("app.log_format", d.App.LogFormat)
	v.SetDefault("app.timezone", d.App.Timezone)
	v.SetDefault("app.update_repo", d.App.UpdateRepo)

	v.SetDefault("storage.db_path", "")
	v.SetDefault("catalog.path", "")

	v.SetDefault("remote.url", "")
	v.SetDefault("remote.rate_limit", d.Remote.RateLimit)
	v.SetDefault("remote.burst", d.Remote.Burst)
	v.SetDefault("remote.timeout", d.Remote.Timeout)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.rate_burst", d.Server.RateBurst)
	v.SetDefault("server.trust_proxy", d.Server.TrustProxy)
	v.SetDefault("server.decay_at", d.Server.DecayAt)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("llm.provider", d.LLM.Provider)
	for name, b := range map[string]llm.BackendConfig{
		"anthropic":  d.LLM.Anthropic,
		"openai":     d.LLM.OpenAI,
		"gemini":     d.LLM.Gemini,
		"openrouter": d.LLM.OpenRouter,
	} {
		v.SetDefault("llm."+name+".api_key", b.APIKey)
		v.SetDefault("llm."+name+".model", b.Model)
		v.SetDefault("llm."+name+".base_url", b.BaseURL)
	}
	v.SetDefault("llm.retry.max_attempts", d.LLM.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.LLM.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.LLM.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.LLM.Retry.Multiplier)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
}

// Dir returns $XDG_CONFIG_HOME/codepet, falling back to ~/.config/codepet.
func Dir() (string, error) {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "codepet"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home dir: %w", err)
	}
	return filepath.Join(home, ".config", "codepet"), nil
}

// DefaultPath is the config.yaml that Save writes when no path is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadEnv reads a dotenv file into the process environment. Variables
// already set win, and a missing file is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Load reads the config file at path, or searches the config dir and the
// working directory for config.yaml when path is empty. Environment
// variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	log := logger.Component("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
		log.Debug().Msg("no config file, using defaults")
	} else {
		log.Debug().Str("path", v.ConfigFileUsed()).Msg("config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Storage.DBPath = expandHome(cfg.Storage.DBPath)
	cfg.Catalog.Path = expandHome(cfg.Catalog.Path)
	return &cfg, nil
}

// Save writes cfg as YAML, creating the directory if needed. The file may
// hold API keys so it is only readable by the owner.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Location resolves App.Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: app.timezone: %w", err)
	}
	return loc, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

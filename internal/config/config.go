package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Service ServiceConfig
	Log     LogConfig
	Metrics MetricsConfig
	UI      UIConfig
}

// ServiceConfig describes the remote registry service.
type ServiceConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Path      string        `mapstructure:"path"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// LogConfig holds log destination and verbosity.
type LogConfig struct {
	File  string
	Level string
}

// MetricsConfig holds the optional Prometheus listener.
type MetricsConfig struct {
	Addr string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	AltScreen bool `mapstructure:"alt_screen"`
}

// Load reads configuration from file and env. Env var overrides use prefix CNPJLOOKUP_.
// An explicit path takes precedence over CNPJLOOKUP_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("service.base_url", "https://buscacnpj.onrender.com")
	v.SetDefault("service.path", "/cnpj/{id}")
	v.SetDefault("service.timeout", "10s")
	v.SetDefault("service.user_agent", "cnpjlookup/1")
	v.SetDefault("log.file", defaultLogFile())
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("ui.alt_screen", true)

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("CNPJLOOKUP_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "cnpjlookup"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CNPJLOOKUP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// a missing default config is fine; a missing explicit one is not
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: service.base_url %q is not an http(s) url", c.Service.BaseURL)
	}
	if !strings.Contains(c.Service.Path, "{id}") {
		return fmt.Errorf("config: service.path %q must contain {id}", c.Service.Path)
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("config: service.timeout must be positive, got %s", c.Service.Timeout)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "cnpjlookup", "cnpjlookup.log")
}

// Save writes cfg as TOML to path, creating the config directory if needed.
// An empty path means $HOME/.config/cnpjlookup/config.toml.
func Save(cfg Config, path string) (string, error) {
	if path == "" {
		path = os.Getenv("CNPJLOOKUP_CONFIG")
	}
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "cnpjlookup", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("service.base_url", cfg.Service.BaseURL)
	v.Set("service.path", cfg.Service.Path)
	v.Set("service.timeout", cfg.Service.Timeout.String())
	v.Set("service.user_agent", cfg.Service.UserAgent)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.level", cfg.Log.Level)
	v.Set("metrics.addr", cfg.Metrics.Addr)
	v.Set("ui.alt_screen", cfg.UI.AltScreen)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

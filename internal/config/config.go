// Package config loads engine settings from file, environment and flags via viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "MINDSENSE"
	configName = "mindsense"
	configType = "yaml"
)

// Backend selects the kv implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// #region config
type StorageConfig struct {
	Backend   Backend
	Path      string
	RedisURL  string
	Namespace string
}

type AnalyticsConfig struct {
	// Stream is the Redis stream events are forwarded to. Empty disables forwarding.
	Stream   string
	Debounce time.Duration
}

type Config struct {
	Storage        StorageConfig
	CatalogPath    string
	Analytics      AnalyticsConfig
	LogMode        string
	AccountID      string
	BannerDismiss  time.Duration
	ConfigFileUsed string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			Path:      "mindsense.db",
			Namespace: "mindsense.v1",
		},
		Analytics:     AnalyticsConfig{Debounce: time.Second},
		LogMode:       "dev",
		AccountID:     "demo",
		BannerDismiss: 4 * time.Second,
	}
}
// #endregion config

// #region load
// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("storage.backend", string(d.Storage.Backend))
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.redis_url", "")
	v.SetDefault("storage.namespace", d.Storage.Namespace)
	v.SetDefault("catalog.path", "")
	v.SetDefault("analytics.stream", "")
	v.SetDefault("analytics.debounce", d.Analytics.Debounce)
	v.SetDefault("log.mode", d.LogMode)
	v.SetDefault("account.id", d.AccountID)
	v.SetDefault("banner.dismiss_after", d.BannerDismiss)
}

// Load reads an optional mindsense.yaml from the working directory (or the file
// already set on v), overlays MINDSENSE_* environment variables and validates.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() == "" {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Storage: StorageConfig{
			Backend:   Backend(strings.ToLower(v.GetString("storage.backend"))),
			Path:      v.GetString("storage.path"),
			RedisURL:  v.GetString("storage.redis_url"),
			Namespace: v.GetString("storage.namespace"),
		},
		CatalogPath: v.GetString("catalog.path"),
		Analytics: AnalyticsConfig{
			Stream:   v.GetString("analytics.stream"),
			Debounce: v.GetDuration("analytics.debounce"),
		},
		LogMode:        v.GetString("log.mode"),
		AccountID:      v.GetString("account.id"),
		BannerDismiss:  v.GetDuration("banner.dismiss_after"),
		ConfigFileUsed: v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
// #endregion load

// #region validate
// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is empty")
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Storage.Namespace == "" {
		return errors.New("storage.namespace is empty")
	}
	if c.Analytics.Stream != "" && c.Storage.RedisURL == "" {
		return errors.New("analytics.stream requires storage.redis_url")
	}
	if c.Analytics.Debounce < 0 {
		return errors.New("analytics.debounce must not be negative")
	}
	if c.BannerDismiss <= 0 {
		return errors.New("banner.dismiss_after must be positive")
	}
	if strings.TrimSpace(c.AccountID) == "" {
		return errors.New("account.id is empty")
	}
	return nil
}
// #endregion validate

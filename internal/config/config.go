// Package config loads the gateway's configuration from a base file, an
// optional environment overlay file, and environment variables, in that
// order of increasing precedence.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config is the fully resolved, typed configuration for the gateway.
type Config struct {
	Port        uint16            `mapstructure:"port"`
	Application Application       `mapstructure:"application"`
	Processor   Processor         `mapstructure:"processor"`
	Storage     Storage           `mapstructure:"storage"`
	Cache       Cache             `mapstructure:"cache"`
	CustomTags  map[string]string `mapstructure:"custom_tags"`
}

type Application struct {
	Host       string `mapstructure:"host"`
	HMACSecret string `mapstructure:"hmac_secret"`
}

type Processor struct {
	Concurrency     uint32   `mapstructure:"concurrency"`
	DisabledFilters []string `mapstructure:"disabled_filters"`
	MaxFilterOps    uint32   `mapstructure:"max_filter_ops"`
}

type Storage struct {
	BaseDir   string       `mapstructure:"base_dir"`
	PathPrefix string      `mapstructure:"path_prefix"`
	SafeChars string       `mapstructure:"safe_chars"`
	Client    StorageClient `mapstructure:"client"`
}

// StorageClient selects the object store backend. Kind is one of
// "filesystem", "s3", "gcs"; only the fields relevant to that kind are read.
type StorageClient struct {
	Kind      string `mapstructure:"kind"`
	BaseDir   string `mapstructure:"base_dir"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Credentials string `mapstructure:"credentials"`
}

// Cache selects the response cache backend. Kind is "redis" or "filesystem".
type Cache struct {
	Kind    string `mapstructure:"kind"`
	URI     string `mapstructure:"uri"`
	BaseDir string `mapstructure:"base_dir"`
}

// Load resolves configuration from config/base.{yaml,...}, an optional
// config/{env}.{yaml,...} overlay, and APP_-prefixed environment variables,
// with env taking the highest precedence. env is typically "local" or
// "production"; an empty env skips the overlay file.
func Load(configDir, env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("base")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read base config: %w", err)
		}
	}

	if env != "" {
		overlay := viper.New()
		overlay.SetConfigName(env)
		overlay.SetConfigType("yaml")
		overlay.AddConfigPath(configDir)
		if err := overlay.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read %s config: %w", env, err)
			}
		} else if err := v.MergeConfigMap(overlay.AllSettings()); err != nil {
			return nil, fmt.Errorf("merge %s config: %w", env, err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Processor.Concurrency == 0 {
		cfg.Processor.Concurrency = uint32(runtime.NumCPU())
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("application.host", "127.0.0.1")
	v.SetDefault("storage.client.kind", "filesystem")
	v.SetDefault("storage.base_dir", "./data/audio")
	v.SetDefault("cache.kind", "filesystem")
	v.SetDefault("cache.base_dir", "./data/cache")
}

func (c *Config) validate() error {
	if c.Application.HMACSecret == "" {
		return fmt.Errorf("application.hmac_secret must be set")
	}
	switch c.Storage.Client.Kind {
	case "filesystem", "s3", "gcs":
	default:
		return fmt.Errorf("storage.client.kind %q is not one of filesystem, s3, gcs", c.Storage.Client.Kind)
	}
	switch c.Cache.Kind {
	case "filesystem", "redis":
	default:
		return fmt.Errorf("cache.kind %q is not one of filesystem, redis", c.Cache.Kind)
	}
	return nil
}

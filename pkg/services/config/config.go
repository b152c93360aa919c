// Package config loads the application settings from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Store struct {
	Path         string        `mapstructure:"path"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

type Zones struct {
	// Epoch selects the naming scheme fact exports were keyed under,
	// "legacy" or "current".
	Epoch string `mapstructure:"epoch"`
	// AliasFile optionally extends the built-in zone alias tables.
	AliasFile string `mapstructure:"alias_file"`
}

type Cache struct {
	DefaultTTL time.Duration            `mapstructure:"default_ttl"`
	TTLs       map[string]time.Duration `mapstructure:"ttls"`
}

type App struct {
	Server Server `mapstructure:"server"`
	Store  Store  `mapstructure:"store"`
	Zones  Zones  `mapstructure:"zones"`
	Cache  Cache  `mapstructure:"cache"`
}

// Load reads the config file at path, or the default visit-atlas.yaml
// lookup when path is empty. VISIT_ATLAS_* environment variables
// override file values either way.
func Load(path string) (*App, error) {
	v := viper.New()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("store.path", "visit-atlas.db")
	v.SetDefault("store.query_timeout", 15*time.Second)
	v.SetDefault("zones.epoch", "current")
	v.SetDefault("cache.default_ttl", 6*time.Hour)

	v.SetEnvPrefix("VISIT_ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("visit-atlas")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

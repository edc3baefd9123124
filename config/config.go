package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. AREENA_APPKEY
const EnvPrefix = "AREENA"

// Load loads the configuration from file and environment. Without an
// explicit path a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadLocal is Load for commands that never reach the API, such as cache
// maintenance. Credentials may be absent.
func LoadLocal(configPath string) (*Config, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}
	if err := validateLocal(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func read(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys without defaults are only seen by Unmarshal when bound
	_ = v.BindEnv("appid")
	_ = v.BindEnv("appkey")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".areena"))
		}
		v.AddConfigPath("/etc/areena/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.dir", ".cache")
	v.SetDefault("cache.backend", "files")

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.request_delay", 200*time.Millisecond)
	v.SetDefault("http.page_size", 100)

	v.SetDefault("ttl.catalog", 24*time.Hour)
	v.SetDefault("ttl.listing", 4*time.Hour)

	v.SetDefault("catalog.empty_result", "error")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.AppID == "" {
		return fmt.Errorf("appid is required")
	}
	if cfg.AppKey == "" {
		return fmt.Errorf("appkey is required")
	}
	return validateLocal(cfg)
}

// validateLocal checks everything except the API credentials
func validateLocal(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}
	validBackends := map[string]bool{
		"files": true,
		"bolt":  true,
	}
	if !validBackends[cfg.Cache.Backend] {
		return fmt.Errorf("invalid cache backend: %s", cfg.Cache.Backend)
	}

	if cfg.HTTP.PageSize <= 0 {
		return fmt.Errorf("http.page_size must be positive, got %d", cfg.HTTP.PageSize)
	}
	if cfg.HTTP.Timeout < 0 || cfg.HTTP.RequestDelay < 0 {
		return fmt.Errorf("http durations must not be negative")
	}
	if cfg.TTL.Catalog < 0 || cfg.TTL.Listing < 0 {
		return fmt.Errorf("ttl durations must not be negative")
	}

	validPolicies := map[string]bool{
		"error": true,
		"empty": true,
	}
	if !validPolicies[cfg.Catalog.EmptyResult] {
		return fmt.Errorf("invalid catalog.empty_result: %s (must be 'error' or 'empty')", cfg.Catalog.EmptyResult)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

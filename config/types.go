package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	AppID   string        `mapstructure:"appid"`
	AppKey  string        `mapstructure:"appkey"`
	Cache   CacheConfig   `mapstructure:"cache"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	TTL     TTLConfig     `mapstructure:"ttl"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CacheConfig selects where fetched pages are kept
type CacheConfig struct {
	Dir     string `mapstructure:"dir"`
	Backend string `mapstructure:"backend"`
}

// HTTPConfig controls live requests
type HTTPConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
	PageSize     int           `mapstructure:"page_size"`
}

// TTLConfig holds cache lifetimes. Catalog covers categories, services and
// schedules; Listing covers every other endpoint.
type TTLConfig struct {
	Catalog time.Duration `mapstructure:"catalog"`
	Listing time.Duration `mapstructure:"listing"`
}

// CatalogConfig tunes client behavior
type CatalogConfig struct {
	EmptyResult string `mapstructure:"empty_result"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Color      bool   `mapstructure:"color"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

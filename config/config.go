package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Output  OutputConfig  `mapstructure:"output"`
	Posters PostersConfig `mapstructure:"posters"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CatalogConfig holds external catalog API configuration.
type CatalogConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	ImageBaseURL   string `mapstructure:"image_base_url"`
	Token          string `mapstructure:"token"`
	Region         string `mapstructure:"region"`
	TargetCount    int    `mapstructure:"target_count"`
	MaxPages       int    `mapstructure:"max_pages"`
	RequestDelayMS int    `mapstructure:"request_delay_ms"`
	Workers        int    `mapstructure:"workers"`
}

// OutputConfig holds snapshot output configuration.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// PostersConfig holds poster cache configuration.
type PostersConfig struct {
	Dir        string `mapstructure:"dir"`
	MaxPosters int    `mapstructure:"max_posters"`
}

// ServerConfig holds the on-demand lookup server configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig holds logging configuration. When File is empty, log
// output stays on stderr.
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:        "https://api.themoviedb.org/3",
			ImageBaseURL:   "https://image.tmdb.org/t/p/w500",
			Region:         "US",
			TargetCount:    60,
			MaxPages:       10,
			RequestDelayMS: 250,
			Workers:        1,
		},
		Output:  OutputConfig{Dir: "data"},
		Posters: PostersConfig{Dir: "data/posters", MaxPosters: 300},
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Load reads configuration from the given file (optional) and the
// environment. Environment variables use the WATCHREEL_ prefix with
// underscores, e.g. WATCHREEL_CATALOG_TOKEN.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("watchreel")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WATCHREEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing config file is fine when no explicit path was given.
		if path != "" || !errors.As(err, &notFound) {
			if path == "" {
				// Default lookup failed for another reason (parse error).
				return nil, fmt.Errorf("read config: %w", err)
			}
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Catalog.Workers < 1 {
		cfg.Catalog.Workers = 1
	}
	if cfg.Posters.MaxPosters < 1 {
		return nil, fmt.Errorf("posters.max_posters must be positive, got %d", cfg.Posters.MaxPosters)
	}
	return cfg, nil
}

// setDefaults registers defaults so env-only overrides work without a file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("catalog.base_url", cfg.Catalog.BaseURL)
	v.SetDefault("catalog.image_base_url", cfg.Catalog.ImageBaseURL)
	v.SetDefault("catalog.token", cfg.Catalog.Token)
	v.SetDefault("catalog.region", cfg.Catalog.Region)
	v.SetDefault("catalog.target_count", cfg.Catalog.TargetCount)
	v.SetDefault("catalog.max_pages", cfg.Catalog.MaxPages)
	v.SetDefault("catalog.request_delay_ms", cfg.Catalog.RequestDelayMS)
	v.SetDefault("catalog.workers", cfg.Catalog.Workers)
	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("posters.dir", cfg.Posters.Dir)
	v.SetDefault("posters.max_posters", cfg.Posters.MaxPosters)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
}

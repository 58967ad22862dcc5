package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                 string        `mapstructure:"PORT"`
	Env                  string        `mapstructure:"ENV"`
	DatabaseURL          string        `mapstructure:"DATABASE_URL"`
	DBMaxConns           int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns           int32         `mapstructure:"DB_MIN_CONNS"`
	CursorSecret         string        `mapstructure:"CURSOR_SECRET"`
	QueryTimeout         time.Duration `mapstructure:"QUERY_TIMEOUT"`
	RequestTimeout       time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	IndexRefreshInterval time.Duration `mapstructure:"INDEX_REFRESH_INTERVAL"`
	IndexDebounce        time.Duration `mapstructure:"INDEX_DEBOUNCE"`
	CacheTTL             time.Duration `mapstructure:"CACHE_TTL"`
	CacheSize            int           `mapstructure:"CACHE_SIZE"`
	CORSOrigins          []string      `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("QUERY_TIMEOUT", "10s")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("INDEX_REFRESH_INTERVAL", "5m")
	v.SetDefault("INDEX_DEBOUNCE", "10s")
	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("CACHE_SIZE", 512)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CURSOR_SECRET")
	v.BindEnv("QUERY_TIMEOUT")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("INDEX_REFRESH_INTERVAL")
	v.BindEnv("INDEX_DEBOUNCE")
	v.BindEnv("CACHE_TTL")
	v.BindEnv("CACHE_SIZE")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production the
// cursor signing secret must be set explicitly so pagination cursors issued
// before a restart remain valid and tamper-evident.
func (c *Config) Validate() error {
	if c.IsProduction() && c.CursorSecret == "" {
		return fmt.Errorf("CURSOR_SECRET is required in production")
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive, got %s", c.QueryTimeout)
	}
	if c.IndexDebounce > c.IndexRefreshInterval {
		return fmt.Errorf("INDEX_DEBOUNCE (%s) must not exceed INDEX_REFRESH_INTERVAL (%s)",
			c.IndexDebounce, c.IndexRefreshInterval)
	}
	return nil
}

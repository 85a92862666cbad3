package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/JonnyWalker81/healthjournal/backend/internal/analytics"
	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// RedisConfig configures the report cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LoggingConfig selects the log level, format and backend
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Backend string `mapstructure:"backend"`
}

// CORSConfig lists the origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig bounds expensive insight requests per user
type RateLimitConfig struct {
	InsightsPerMinute int `mapstructure:"insights_per_minute"`
}

// AnalyticsConfig holds the engine thresholds
type AnalyticsConfig struct {
	WindowDays        int                `mapstructure:"window_days"`
	MinSampleSize     int                `mapstructure:"min_sample_size"`
	TrendThreshold    float64            `mapstructure:"trend_threshold"`
	SignificanceLevel float64            `mapstructure:"significance_level"`
	StrengthBands     []float64          `mapstructure:"strength_bands"`
	MaxInsights       int                `mapstructure:"max_insights"`
	RecentWindowDays  int                `mapstructure:"recent_window_days"`
	SmoothingPeriod   int                `mapstructure:"smoothing_period"`
	Workers           int                `mapstructure:"workers"`
	Weights           map[string]float64 `mapstructure:"weights"`
}

// Load reads configuration from environment variables, an optional .env file
// and an optional config.yaml
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("HEALTHJOURNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to non-prefixed environment variables the hosting platform sets
	_ = v.BindEnv("server.port", "HEALTHJOURNAL_SERVER_PORT", "PORT")
	_ = v.BindEnv("supabase.url", "HEALTHJOURNAL_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("supabase.service_key", "HEALTHJOURNAL_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")
	_ = v.BindEnv("redis.addr", "HEALTHJOURNAL_REDIS_ADDR", "REDIS_ADDR")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// It's okay if config file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	def := analytics.DefaultConfig()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 6*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.backend", "slog")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.insights_per_minute", 10)

	v.SetDefault("analytics.window_days", 90)
	v.SetDefault("analytics.min_sample_size", def.MinimumSampleSize)
	v.SetDefault("analytics.trend_threshold", def.TrendThreshold)
	v.SetDefault("analytics.significance_level", def.SignificanceLevel)
	v.SetDefault("analytics.strength_bands", def.StrengthBands[:])
	v.SetDefault("analytics.max_insights", def.MaxInsights)
	v.SetDefault("analytics.recent_window_days", def.RecentWindowDays)
	v.SetDefault("analytics.smoothing_period", def.SmoothingPeriod)
	v.SetDefault("analytics.workers", runtime.NumCPU())
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Supabase.ServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.RateLimit.InsightsPerMinute < 0 {
		return fmt.Errorf("rate_limit.insights_per_minute must not be negative")
	}
	if c.Analytics.WindowDays < 1 {
		return fmt.Errorf("analytics.window_days must be at least 1, got %d", c.Analytics.WindowDays)
	}
	if _, err := c.Analytics.EngineConfig(); err != nil {
		return fmt.Errorf("invalid analytics config: %w", err)
	}
	return nil
}

// EngineConfig builds the analytics.Config the engine consumes, starting from
// analytics.DefaultConfig and overriding what is set here
func (a AnalyticsConfig) EngineConfig() (analytics.Config, error) {
	cfg := analytics.DefaultConfig()

	if a.MinSampleSize != 0 {
		cfg.MinimumSampleSize = a.MinSampleSize
	}
	if a.TrendThreshold != 0 {
		cfg.TrendThreshold = a.TrendThreshold
	}
	if a.SignificanceLevel != 0 {
		cfg.SignificanceLevel = a.SignificanceLevel
	}
	if len(a.StrengthBands) > 0 {
		if len(a.StrengthBands) != len(cfg.StrengthBands) {
			return cfg, fmt.Errorf("strength_bands needs %d values, got %d", len(cfg.StrengthBands), len(a.StrengthBands))
		}
		copy(cfg.StrengthBands[:], a.StrengthBands)
	}
	if a.MaxInsights > 0 {
		cfg.MaxInsights = a.MaxInsights
	}
	if a.RecentWindowDays != 0 {
		cfg.RecentWindowDays = a.RecentWindowDays
	}
	if a.SmoothingPeriod > 0 {
		cfg.SmoothingPeriod = a.SmoothingPeriod
	}
	if a.Workers > 0 {
		cfg.Workers = a.Workers
	}

	for name, weight := range a.Weights {
		kind := models.MetricKind(strings.ToLower(name))
		if !models.IsValidMetricKind(string(kind)) {
			return cfg, fmt.Errorf("weight for unknown metric %q", name)
		}
		cfg.Weights[kind] = weight
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Package config provides configuration management for travelrisk services
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Service identification
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
	Port        int    `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`

	// Knowledge base override; empty selects the embedded knowledge base
	KnowledgeBasePath string `mapstructure:"knowledge_base_path"`

	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`

	// Feature flags
	EnableMetrics bool `mapstructure:"enable_metrics"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	Tracing TracingConfig `mapstructure:"tracing"`
}

// TracingConfig holds OpenTelemetry export settings
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`    // OTLP gRPC endpoint
	SampleRate float64 `mapstructure:"sample_rate"` // 0.0 to 1.0
}

// Load reads configuration from file and environment variables
func Load(serviceName string) (*Config, error) {
	return load(serviceName, ".", "./configs", "/etc/travelrisk")
}

func load(serviceName string, configPaths ...string) (*Config, error) {
	v := viper.New()

	setDefaults(v, serviceName)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TRAVELRISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.ServiceName = serviceName

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, serviceName string) {
	v.SetDefault("service_name", serviceName)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 8090)

	v.SetDefault("knowledge_base_path", "")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("enable_metrics", true)
	v.SetDefault("shutdown_timeout", "30s")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_rate", 1.0)
}

func bindEnvVars(v *viper.Viper) {
	envMappings := map[string]string{
		"environment":         "APP_ENV",
		"log_level":           "LOG_LEVEL",
		"port":                "PORT",
		"knowledge_base_path": "KNOWLEDGE_BASE_PATH",
	}

	for key, env := range envMappings {
		// Keep the prefixed name bound too; BindEnv replaces earlier bindings.
		v.BindEnv(key, "TRAVELRISK_"+strings.ToUpper(key), env)
	}
}

func validate(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	return nil
}

// GetCORSOrigins returns CORS allowed origins as a slice
func (c *Config) GetCORSOrigins() []string {
	if c.CORSAllowedOrigins == "*" {
		return []string{"*"}
	}
	origins := strings.Split(c.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

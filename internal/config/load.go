package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load,
// e.g. TENXCARDS_DATABASE_URL.
const EnvPrefix = "TENXCARDS"

// Option customizes Load.
type Option func(*loadOptions)

type loadOptions struct {
	configPaths []string
	dotenvFiles []string
}

// WithConfigPaths sets the directories searched for config.yaml.
func WithConfigPaths(paths ...string) Option {
	return func(o *loadOptions) { o.configPaths = paths }
}

// WithDotenv sets the .env files loaded before the environment is read.
// Missing files are ignored; variables already set are never overridden.
func WithDotenv(files ...string) Option {
	return func(o *loadOptions) { o.dotenvFiles = files }
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(opts ...Option) (*Config, error) {
	o := loadOptions{configPaths: []string{"."}, dotenvFiles: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}

	for _, f := range o.dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range o.configPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every key. AutomaticEnv only resolves
// keys viper already knows about, so required keys get an empty default too.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:4321"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Minute)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("auth.provider", "local")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.reset_token_lifetime", time.Hour)
	v.SetDefault("auth.reset_url", "http://localhost:4321/reset-password")
	v.SetDefault("auth.gotrue_url", "")
	v.SetDefault("auth.gotrue_api_key", "")

	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.openrouter_api_key", "")
	v.SetDefault("llm.openrouter_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.card_language", "English")
	v.SetDefault("llm.breaker_failures", 5)
	v.SetDefault("llm.breaker_timeout", 30*time.Second)

	v.SetDefault("generation.default_card_count", 10)
	v.SetDefault("generation.worker_count", 2)
	v.SetDefault("generation.queue_size", 100)
	v.SetDefault("generation.delay", time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("tracing.service_name", "10xcards-api")
}

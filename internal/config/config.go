package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"     validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
//
// JWTSecret signs local tokens. With the gotrue provider it must be the
// hosted provider's JWT secret so that access tokens can be verified locally.
type AuthConfig struct {
	Provider                    string        `mapstructure:"provider"                       validate:"required,oneof=local gotrue"`
	JWTSecret                   string        `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int           `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0,lt=1440"`
	RefreshTokenLifetimeMinutes int           `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int           `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
	ResetTokenLifetime          time.Duration `mapstructure:"reset_token_lifetime"           validate:"gt=0"`
	ResetURL                    string        `mapstructure:"reset_url"                      validate:"omitempty,url"`
	GoTrueURL                   string        `mapstructure:"gotrue_url"                     validate:"required_if=Provider gotrue,omitempty,url"`
	GoTrueAPIKey                string        `mapstructure:"gotrue_api_key"                 validate:"required_if=Provider gotrue"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider         string        `mapstructure:"provider"           validate:"required,oneof=openrouter gemini"`
	OpenRouterAPIKey string        `mapstructure:"openrouter_api_key" validate:"required_if=Provider openrouter"`
	OpenRouterURL    string        `mapstructure:"openrouter_url"     validate:"required,url"`
	GeminiAPIKey     string        `mapstructure:"gemini_api_key"     validate:"required_if=Provider gemini"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"            validate:"gt=0"`
	CardLanguage     string        `mapstructure:"card_language"      validate:"required"`
	BreakerFailures  uint32        `mapstructure:"breaker_failures"   validate:"gt=0"`
	BreakerTimeout   time.Duration `mapstructure:"breaker_timeout"    validate:"gt=0"`
}

// GenerationConfig controls the accumulation loop and the background
// generation workers.
type GenerationConfig struct {
	DefaultCardCount int           `mapstructure:"default_card_count" validate:"gte=1,lte=30"`
	WorkerCount      int           `mapstructure:"worker_count"       validate:"gte=1"`
	QueueSize        int           `mapstructure:"queue_size"         validate:"gte=1"`
	Delay            time.Duration `mapstructure:"delay"              validate:"gte=0"`
}

// RedisConfig configures the token denylist. An empty Addr selects the
// in-memory denylist.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
	ServiceName string  `mapstructure:"service_name" validate:"required"`
}

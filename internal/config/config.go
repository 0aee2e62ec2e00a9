// Package config loads the service configuration from the environment and an
// optional YAML or .env file.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string     `yaml:"env" env:"ENV" env-default:"local" validate:"oneof=local dev prod"`
	LogLevel  string     `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn warning error"`
	LogPretty bool       `yaml:"log_pretty" env:"LOG_PRETTY" env-default:"false"`
	HTTP      HTTPServer `yaml:"http_server"`
	Provider  Provider   `yaml:"provider"`
	Cache     Cache      `yaml:"cache"`
	Image     Image      `yaml:"image"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDR" env-default:":8080" validate:"required"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s" validate:"gt=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"60s" validate:"gt=0"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s" validate:"gt=0"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env:"HTTP_MAX_UPLOAD_BYTES" env-default:"10485760" validate:"gt=0"`
}

type Provider struct {
	APIKey      string        `yaml:"api_key" env:"SERPER_KEY" env-required:"true" validate:"required"`
	Endpoint    string        `yaml:"endpoint" env:"SERPER_URL" env-default:"https://google.serper.dev/shopping" validate:"required,url"`
	Timeout     time.Duration `yaml:"timeout" env:"PROVIDER_TIMEOUT" env-default:"30s" validate:"gt=0"`
	MaxAttempts int           `yaml:"max_attempts" env:"PROVIDER_MAX_ATTEMPTS" env-default:"1" validate:"min=1,max=5"`
}

type Cache struct {
	// RedisURL is optional; empty disables caching
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"1h" validate:"gt=0"`
	Coalesce bool          `yaml:"coalesce" env:"COALESCE_SEARCHES" env-default:"false"`
}

type Image struct {
	StubQuery string        `yaml:"stub_query" env:"IMAGE_STUB_QUERY" env-default:"iPhone 15" validate:"required"`
	StubDelay time.Duration `yaml:"stub_delay" env:"IMAGE_STUB_DELAY" env-default:"1s" validate:"gte=0"`
}

// Load reads the configuration. With an empty path only the environment is
// used; otherwise the file (YAML or .env) is read first and the environment
// overrides it.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: read %s: %w", op, path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}

	return &cfg, nil
}

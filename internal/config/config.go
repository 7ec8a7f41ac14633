package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the full service configuration
type Config struct {
	Env          string `yaml:"env" env:"APP_ENV" env-default:"development"`
	HTTPServer   `yaml:"http_server"`
	Storage      `yaml:"storage"`
	Webhook      `yaml:"webhook"`
	Currency     `yaml:"currency"`
	RateProvider `yaml:"rate_provider"`
	LogConfig    `yaml:"log_config"`
	Kafka        `yaml:"kafka"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:""`
	Port            string        `yaml:"port" env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type Storage struct {
	Path string `yaml:"path" env:"DATA_DIR" env-default:"./data"`
}

type Webhook struct {
	// VerificationToken authenticates webhook deliveries. Left empty, every delivery fails as a configuration error.
	VerificationToken string `yaml:"verification_token" env:"KOFI_VERIFICATION_TOKEN"`
}

type Currency struct {
	Reference      string   `yaml:"reference" env:"REFERENCE_CURRENCY" env-default:"CHF"`
	Display        []string `yaml:"display" env:"DISPLAY_CURRENCIES" env-separator:"," env-default:"JPY,EUR"`
	DefaultDisplay string   `yaml:"default_display" env:"DEFAULT_DISPLAY_CURRENCY" env-default:"JPY"`
}

type RateProvider struct {
	BaseURL   string        `yaml:"base_url" env:"RATE_PROVIDER_URL" env-default:"https://api.exchangerate.host"`
	AccessKey string        `yaml:"access_key" env:"RATE_PROVIDER_ACCESS_KEY"`
	Timeout   time.Duration `yaml:"timeout" env:"RATE_PROVIDER_TIMEOUT" env-default:"10s"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"RATE_CACHE_TTL" env-default:"12h"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"donation-events"`
}

// Address returns the listen address of the HTTP server
func (s HTTPServer) Address() string {
	return s.Host + ":" + s.Port
}

// Load reads the configuration. An optional .env file is loaded first; when
// CONFIG_PATH points to a YAML file it is read, and environment variables
// override it either way.
func Load() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

// MustLoad is Load that exits the process on failure
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// normalize upper-cases currency codes and drops blank display entries
func (c *Config) normalize() {
	c.Currency.Reference = strings.ToUpper(strings.TrimSpace(c.Currency.Reference))
	c.Currency.DefaultDisplay = strings.ToUpper(strings.TrimSpace(c.Currency.DefaultDisplay))

	display := make([]string, 0, len(c.Currency.Display))
	for _, code := range c.Currency.Display {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			display = append(display, code)
		}
	}
	c.Currency.Display = display
}

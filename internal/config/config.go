package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token" env:"TELEGRAM_BOT_TOKEN,overwrite"`
	Mode     string  `yaml:"mode"`    // polling only
	Workers  int     `yaml:"workers"` // polling workers
	AdminIDs []int64 `yaml:"admin_ids" env:"ADMIN_IDS,overwrite"`
}

// BackendConfig points at the CMS REST API.
type BackendConfig struct {
	BaseURL  string        `yaml:"base_url" env:"STRAPI_URL,overwrite"`
	APIToken string        `yaml:"api_token" env:"STRAPI_API_TOKEN,overwrite"`
	Timeout  time.Duration `yaml:"timeout" env:"STRAPI_TIMEOUT,overwrite"`
	// MediaBaseURL prefixes relative upload URLs; defaults to BaseURL.
	MediaBaseURL string `yaml:"media_base_url" env:"STRAPI_MEDIA_URL,overwrite"`
}

type WebhookConfig struct {
	Port           int           `yaml:"port" env:"PORT,overwrite"`
	Path           string        `yaml:"path"`
	Secret         string        `yaml:"secret" env:"WEBHOOK_SECRET,overwrite"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ProductModels  []string      `yaml:"product_models"`
	FanoutWorkers  int           `yaml:"fanout_workers"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL,overwrite"` // trace|debug|info|warn|error
	Format   string `yaml:"format" env:"LOG_FORMAT,overwrite"` // json|console
	Sampling bool   `yaml:"sampling"`
}

type RegistryConfig struct {
	Driver string        `yaml:"driver" env:"REGISTRY_DRIVER,overwrite"` // memory|redis
	TTL    time.Duration `yaml:"ttl"`
}

type RedisConfig struct {
	URL      string `yaml:"url" env:"REDIS_URL,overwrite"`
	Password string `yaml:"password" env:"REDIS_PASSWORD,overwrite"`
	DB       int    `yaml:"db"`
}

type DatabaseConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL,overwrite"`
}

type UIConfig struct {
	UsersPageLimit int    `yaml:"users_page_limit"`
	StatsSample    int    `yaml:"stats_sample"`
	PendingLimit   int    `yaml:"pending_limit"`
	MaxTextLength  int    `yaml:"max_text_length"`
	Currency       string `yaml:"currency"`
}

type RateLimitConfig struct {
	CallbacksPerMinute int `yaml:"callbacks_per_minute"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Backend   BackendConfig   `yaml:"backend"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Log       LogConfig       `yaml:"log"`
	Registry  RegistryConfig  `yaml:"registry"`
	Redis     RedisConfig     `yaml:"redis"`
	Database  DatabaseConfig  `yaml:"database"`
	UI        UIConfig        `yaml:"ui"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (a missing file is fine), then .env,
// then process environment overrides, and finally applies defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()
	return load(path, dev, envconfig.OsLookuper())
}

func load(path string, dev bool, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// env-only deployment
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}

	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 30 * time.Second
	}
	if cfg.Backend.MediaBaseURL == "" {
		cfg.Backend.MediaBaseURL = cfg.Backend.BaseURL
	}
	cfg.Backend.MediaBaseURL = strings.TrimRight(cfg.Backend.MediaBaseURL, "/")
	if cfg.Webhook.Port == 0 {
		cfg.Webhook.Port = 8080
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = "/webhook/strapi"
	}
	if cfg.Webhook.RequestTimeout <= 0 {
		cfg.Webhook.RequestTimeout = 10 * time.Second
	}
	if len(cfg.Webhook.ProductModels) == 0 {
		cfg.Webhook.ProductModels = []string{"product", "api::product.product"}
	}
	if cfg.Webhook.FanoutWorkers <= 0 {
		cfg.Webhook.FanoutWorkers = 4
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Registry.Driver == "" {
		cfg.Registry.Driver = "memory"
	}
	if cfg.Registry.TTL <= 0 {
		cfg.Registry.TTL = 7 * 24 * time.Hour
	}
	if cfg.UI.UsersPageLimit <= 0 {
		cfg.UI.UsersPageLimit = 20
	}
	if cfg.UI.StatsSample <= 0 {
		cfg.UI.StatsSample = 100
	}
	if cfg.UI.PendingLimit <= 0 {
		cfg.UI.PendingLimit = 10
	}
	if cfg.UI.MaxTextLength <= 0 {
		cfg.UI.MaxTextLength = 4000
	}
	if cfg.UI.Currency == "" {
		cfg.UI.Currency = "TJS"
	}
	if cfg.RateLimit.CallbacksPerMinute <= 0 {
		cfg.RateLimit.CallbacksPerMinute = 30
	}
}

func (c *Config) validate() error {
	if c.Bot.Token == "" && !c.Runtime.Dev {
		return errors.New("bot.token is required")
	}
	if len(c.Bot.AdminIDs) == 0 {
		return errors.New("bot.admin_ids must list at least one operator")
	}
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	if c.Backend.APIToken == "" {
		return errors.New("backend.api_token is required")
	}
	switch c.Registry.Driver {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when registry.driver is redis")
		}
	default:
		return fmt.Errorf("unknown registry.driver %q", c.Registry.Driver)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config application configuration, loaded from a YAML file with
// environment variable overrides for secrets.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string        `yaml:"secret"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"jwt"`

	Stripe struct {
		SecretKey     string `yaml:"secret_key"`
		WebhookSecret string `yaml:"webhook_secret"`
		SuccessURL    string `yaml:"success_url"`
		CancelURL     string `yaml:"cancel_url"`
	} `yaml:"stripe"`

	Identity struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"identity"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`

	Sweeper struct {
		Schedule       string `yaml:"schedule"`         // cron spec, default @daily
		StaleAfterDays int    `yaml:"stale_after_days"` // default 7
	} `yaml:"sweeper"`
}

// Load reads configuration from the given YAML file and applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.Env = "development"
	cfg.JWT.TTL = 24 * time.Hour
	cfg.Stripe.SuccessURL = "http://localhost:3000/boost/success"
	cfg.Stripe.CancelURL = "http://localhost:3000/boost/cancelled"
	cfg.Sweeper.Schedule = "@daily"
	cfg.Sweeper.StaleAfterDays = 7

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file is fine: env vars carry everything.
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// DSN builds the MySQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}

func applyEnvOverrides(cfg *Config) {
	override(&cfg.Server.Port, "PORT")
	override(&cfg.Server.Env, "APP_ENV")
	override(&cfg.Database.Host, "DB_HOST")
	override(&cfg.Database.Port, "DB_PORT")
	override(&cfg.Database.User, "DB_USER")
	override(&cfg.Database.Password, "DB_PASSWORD")
	override(&cfg.Database.Name, "DB_NAME")
	override(&cfg.Redis.Addr, "REDIS_ADDR")
	override(&cfg.Redis.Password, "REDIS_PASSWORD")
	override(&cfg.JWT.Secret, "JWT_SECRET")
	override(&cfg.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	override(&cfg.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
	override(&cfg.Stripe.SuccessURL, "STRIPE_SUCCESS_URL")
	override(&cfg.Stripe.CancelURL, "STRIPE_CANCEL_URL")
	override(&cfg.Identity.BaseURL, "IDENTITY_BASE_URL")
	override(&cfg.Identity.APIKey, "IDENTITY_API_KEY")
	override(&cfg.SMTP.Host, "SMTP_HOST")
	override(&cfg.SMTP.Username, "SMTP_USERNAME")
	override(&cfg.SMTP.Password, "SMTP_PASSWORD")
	override(&cfg.SMTP.From, "SMTP_FROM")
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

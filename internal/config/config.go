package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`

	Database      DatabaseConfig `yaml:"database"`
	JWTSecret     string         `yaml:"-"`
	AdminSetupKey string         `yaml:"-"`

	Paystack   PaystackConfig   `yaml:"paystack"`
	Cloudinary CloudinaryConfig `yaml:"-"`
	Email      EmailConfig      `yaml:"email"`
	Redis      RedisConfig      `yaml:"redis"`
	AMQPURL    string           `yaml:"amqp_url"`

	Platform PlatformConfig `yaml:"platform"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
	Name     string `yaml:"name"`
	Port     string `yaml:"port"`
}

type PaystackConfig struct {
	SecretKey string        `yaml:"-"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type EmailConfig struct {
	ResendAPIKey string `yaml:"-"`
	From         string `yaml:"from"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
}

// PlatformConfig holds the money and concurrency knobs of the contract engine.
// Amounts are minor currency units.
type PlatformConfig struct {
	CommissionBPS        int64         `yaml:"commission_bps"`
	MinEscrowAmount      int64         `yaml:"min_escrow_amount"`
	DefaultCurrency      string        `yaml:"default_currency"`
	EscrowHoldDays       int           `yaml:"escrow_hold_days"`
	ReconcileAfter       time.Duration `yaml:"reconcile_after"`
	ContractWriteRetries int           `yaml:"contract_write_retries"`
	LockTTL              time.Duration `yaml:"lock_ttl"`
}

func Defaults() Config {
	return Config{
		Port: "8080",
		Env:  "development",
		Paystack: PaystackConfig{
			BaseURL: "https://api.paystack.co",
			Timeout: 30 * time.Second,
		},
		Email: EmailConfig{From: "onboarding@resend.dev"},
		Platform: PlatformConfig{
			CommissionBPS:        1000,
			MinEscrowAmount:      100,
			DefaultCurrency:      "USD",
			EscrowHoldDays:       14,
			ReconcileAfter:       15 * time.Minute,
			ContractWriteRetries: 3,
			LockTTL:              30 * time.Second,
		},
	}
}

// Load reads .env (if present), then an optional YAML file, then environment
// variables, each layer overriding the previous one.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "config.yaml"
	}
	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	str(&cfg.Port, "PORT")
	str(&cfg.Env, "APP_ENV")

	str(&cfg.Database.URL, "DATABASE_URL")
	str(&cfg.Database.Host, "DB_HOST")
	str(&cfg.Database.User, "DB_USER")
	str(&cfg.Database.Password, "DB_PASSWORD")
	str(&cfg.Database.Name, "DB_NAME")
	str(&cfg.Database.Port, "DB_PORT")

	str(&cfg.JWTSecret, "JWT_SECRET")
	str(&cfg.AdminSetupKey, "ADMIN_SETUP_KEY")

	str(&cfg.Paystack.SecretKey, "PAYSTACK_SECRET_KEY")
	str(&cfg.Paystack.BaseURL, "PAYSTACK_BASE_URL")
	dur(&cfg.Paystack.Timeout, "PROCESSOR_TIMEOUT")

	str(&cfg.Cloudinary.CloudName, "CLOUDINARY_CLOUD_NAME")
	str(&cfg.Cloudinary.APIKey, "CLOUDINARY_API_KEY")
	str(&cfg.Cloudinary.APISecret, "CLOUDINARY_API_SECRET")

	str(&cfg.Email.ResendAPIKey, "RESEND_API_KEY")
	str(&cfg.Email.From, "FROM_EMAIL")

	str(&cfg.Redis.Addr, "REDIS_ADDR")
	str(&cfg.Redis.Password, "REDIS_PASSWORD")
	integer(&cfg.Redis.DB, "REDIS_DB")
	str(&cfg.AMQPURL, "AMQP_URL")

	int64v(&cfg.Platform.CommissionBPS, "PLATFORM_COMMISSION_BPS")
	int64v(&cfg.Platform.MinEscrowAmount, "MIN_ESCROW_AMOUNT")
	str(&cfg.Platform.DefaultCurrency, "DEFAULT_CURRENCY")
	integer(&cfg.Platform.EscrowHoldDays, "ESCROW_HOLD_DAYS")
	dur(&cfg.Platform.ReconcileAfter, "RECONCILE_AFTER")
	integer(&cfg.Platform.ContractWriteRetries, "CONTRACT_WRITE_RETRIES")
	dur(&cfg.Platform.LockTTL, "LOCK_TTL")
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Platform.CommissionBPS < 0 || c.Platform.CommissionBPS > 10000 {
		return fmt.Errorf("commission must be between 0 and 10000 basis points, got %d", c.Platform.CommissionBPS)
	}
	if c.Platform.MinEscrowAmount < 0 {
		return fmt.Errorf("minimum escrow amount cannot be negative, got %d", c.Platform.MinEscrowAmount)
	}
	if c.Platform.ContractWriteRetries < 1 {
		return fmt.Errorf("contract write retries must be at least 1, got %d", c.Platform.ContractWriteRetries)
	}
	return nil
}

// DSN builds the Postgres connection string, preferring DATABASE_URL.
func (d DatabaseConfig) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" || d.User == "" || d.Password == "" || d.Name == "" || d.Port == "" {
		return "", fmt.Errorf("database configuration not provided: either set DATABASE_URL or all of DB_HOST, DB_USER, DB_PASSWORD, DB_NAME, and DB_PORT")
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port,
	), nil
}

func str(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func integer(dst *int, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func int64v(dst *int64, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = i
		}
	}
}

func dur(dst *time.Duration, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

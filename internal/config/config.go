package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // partner directory cache TTL
}

type HTTPConfig struct {
	Port int `yaml:"port"`
	// ValidateRateLimit caps QR validation calls per partner per minute;
	// scanners can produce bursts of garbage reads.
	ValidateRateLimit int `yaml:"validate_rate_limit"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// VoucherConfig controls code generation. The default shape is
// BABSY-XXXX-XXXX-XXXX-XXXX.
type VoucherConfig struct {
	CodePrefix        string `yaml:"code_prefix"`
	CodeSegments      int    `yaml:"code_segments"`
	CodeSegmentLength int    `yaml:"code_segment_length"`
	MaxCodeAttempts   int    `yaml:"max_code_attempts"`
}

type SchedulerConfig struct {
	ExpiryReminderInterval time.Duration `yaml:"expiry_reminder_interval"`
	ExpiryReminderWindow   time.Duration `yaml:"expiry_reminder_window"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Voucher   VoucherConfig   `yaml:"voucher"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path and applies defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.ValidateRateLimit <= 0 {
		cfg.HTTP.ValidateRateLimit = 30
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Voucher.CodePrefix == "" {
		cfg.Voucher.CodePrefix = "BABSY"
	}
	if cfg.Voucher.CodeSegments <= 0 {
		cfg.Voucher.CodeSegments = 4
	}
	if cfg.Voucher.CodeSegmentLength <= 0 {
		cfg.Voucher.CodeSegmentLength = 4
	}
	if cfg.Voucher.MaxCodeAttempts <= 0 {
		cfg.Voucher.MaxCodeAttempts = 10
	}
	if cfg.Scheduler.ExpiryReminderInterval <= 0 {
		cfg.Scheduler.ExpiryReminderInterval = time.Hour
	}
	if cfg.Scheduler.ExpiryReminderWindow <= 0 {
		cfg.Scheduler.ExpiryReminderWindow = 3 * 24 * time.Hour
	}
	return &cfg, nil
}

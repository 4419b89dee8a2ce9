package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from FAMDO_* variables.
type Config struct {
	Port            string        `env:"FAMDO_PORT" envDefault:"8080"`
	LogLevel        string        `env:"FAMDO_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"FAMDO_LOG_FORMAT" envDefault:"text"`
	DBPath          string        `env:"FAMDO_DB_PATH" envDefault:"famdo.db"`
	DatabaseURL     string        `env:"FAMDO_DATABASE_URL"`
	StorageKey      string        `env:"FAMDO_STORAGE_KEY" envDefault:"famdo_data"`
	FamilyName      string        `env:"FAMDO_FAMILY_NAME"`
	RefreshInterval time.Duration `env:"FAMDO_REFRESH_INTERVAL" envDefault:"1m"`
	CommandRate     float64       `env:"FAMDO_COMMAND_RATE" envDefault:"10"`
	CommandBurst    int           `env:"FAMDO_COMMAND_BURST" envDefault:"20"`
	Backup          Backup
}

// Backup configures encrypted uploads to S3-compatible storage.
type Backup struct {
	Endpoint      string `env:"FAMDO_BACKUP_S3_ENDPOINT"`
	Bucket        string `env:"FAMDO_BACKUP_S3_BUCKET"`
	Region        string `env:"FAMDO_BACKUP_S3_REGION" envDefault:"us-east-1"`
	AccessKey     string `env:"FAMDO_BACKUP_S3_ACCESS_KEY"`
	SecretKey     string `env:"FAMDO_BACKUP_S3_SECRET_KEY"`
	Passphrase    string `env:"FAMDO_BACKUP_PASSPHRASE"`
	ScheduleHour  int    `env:"FAMDO_BACKUP_HOUR" envDefault:"-1"`
	RetentionDays int    `env:"FAMDO_BACKUP_RETENTION_DAYS" envDefault:"30"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment without touching .env.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("FAMDO_PORT must not be empty"))
	}
	if c.StorageKey == "" {
		errs = append(errs, errors.New("FAMDO_STORAGE_KEY must not be empty"))
	}
	if c.RefreshInterval < time.Second {
		errs = append(errs, fmt.Errorf("FAMDO_REFRESH_INTERVAL %s is below 1s", c.RefreshInterval))
	}
	if c.CommandRate < 0 || c.CommandBurst < 0 {
		errs = append(errs, errors.New("command rate limits must not be negative"))
	}
	if c.Backup.ScheduleHour > 23 {
		errs = append(errs, fmt.Errorf("FAMDO_BACKUP_HOUR %d is out of range", c.Backup.ScheduleHour))
	}
	return errors.Join(errs...)
}

// UsePostgres reports whether the Postgres backend is selected.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// TelegramConfig holds bot configuration
type TelegramConfig struct {
	BotToken string  `mapstructure:"bot_token"`
	AdminIDs []int64 `mapstructure:"admin_ids"`
}

// DatabaseConfig selects the SQL driver and data source.
// Supported drivers are sqlite3, postgres and pgx.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PlannerConfig holds weekly plan settings
type PlannerConfig struct {
	PersistPlans bool `mapstructure:"persist_plans"`
}

// SchedulerConfig holds settings of the background jobs
type SchedulerConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	WeeklyDay             string `mapstructure:"weekly_day"`
	WeeklyTime            string `mapstructure:"weekly_time"`
	NotificationStartHour int    `mapstructure:"notification_start_hour"`
	NotificationEndHour   int    `mapstructure:"notification_end_hour"`
	Timezone              string `mapstructure:"timezone"`
}

// Location returns the configured time zone, UTC when none is set
func (c SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	return location, nil
}

// Load reads configuration from .env files and environment variables.
// Keys map to variables by upper-casing and replacing dots, so
// telegram.bot_token is read from TELEGRAM_BOT_TOKEN.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles exports variables from the given files without overriding the
// environment. Missing files are ignored.
func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading env file %s: %w", f, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.admin_ids", []int64{})

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "data/studyplanner.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("planner.persist_plans", true)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.weekly_day", "monday")
	v.SetDefault("scheduler.weekly_time", "07:00")
	v.SetDefault("scheduler.notification_start_hour", 8)
	v.SetDefault("scheduler.notification_end_hour", 22)
	v.SetDefault("scheduler.timezone", "UTC")
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Scheduler.NotificationStartHour < 0 || c.Scheduler.NotificationEndHour > 23 ||
		c.Scheduler.NotificationStartHour > c.Scheduler.NotificationEndHour {
		return fmt.Errorf("invalid notification window %d-%d",
			c.Scheduler.NotificationStartHour, c.Scheduler.NotificationEndHour)
	}
	return nil
}

// IsAdmin reports whether the Telegram user is configured as an administrator
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// Package config loads, validates, and exposes the bot client configuration.
// Values come from defaults, an optional YAML file, and MONEO_* environment
// variables, and are read once at startup. The resulting Config is treated as
// read-only for the lifetime of the process.
package config

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration wraps every load or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config is the process-wide bot client configuration.
//
// Fields are exported for viper and validator. A *Config returned by Load is shared
// by every component and must not be modified; copies go through Redacted.
type Config struct {
	BotToken                string `mapstructure:"bot_token"                  validate:"required"`
	MasterConversationID    int64  `mapstructure:"master_conversation_id"`
	FunctionKey             string `mapstructure:"function_key"`
	MoneoAPIKey             string `mapstructure:"moneo_api_key"`
	CallbackToken           string `mapstructure:"callback_token"             validate:"omitempty,max=256"`
	TaskAPIBase             string `mapstructure:"task_api_base"              validate:"required,url"`
	IsDetailedErrorsEnabled bool   `mapstructure:"is_detailed_errors_enabled"`
	ChatAdapter             string `mapstructure:"chat_adapter"               validate:"required,oneof=telegram"`

	Logger    LoggerConfig    `mapstructure:"logger"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// HTTPConfig configures the adapter's HTTP surface.
type HTTPConfig struct {
	Address         string        `mapstructure:"address"          validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
}

// WebhookConfig describes where Telegram should deliver updates once the adapter is started.
type WebhookConfig struct {
	URL                string `mapstructure:"url"                  validate:"omitempty,url"`
	DropPendingUpdates bool   `mapstructure:"drop_pending_updates"`
}

// DeliveryConfig controls retries and the circuit breaker around outbound Telegram calls.
type DeliveryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"     validate:"min=1,max=10"`
	InitialInterval time.Duration `mapstructure:"initial_interval" validate:"min=0"`
	MaxInterval     time.Duration `mapstructure:"max_interval"     validate:"gtefield=InitialInterval"`
	BreakerFailures int           `mapstructure:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"  validate:"min=1s"`
}

// DatabaseConfig points at the SQLite conversation journal.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// JournalConfig controls how long journal entries are kept.
type JournalConfig struct {
	Retention time.Duration `mapstructure:"retention" validate:"min=1h"`
}

// SchedulerConfig lists scheduled maintenance tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task and sets its cron schedule (six fields, seconds first).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// Validate checks the configuration and fails fast on missing required settings.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// Redacted returns a copy with secrets masked, suitable for logging.
func (c Config) Redacted() Config {
	c.BotToken = mask(c.BotToken)
	c.FunctionKey = mask(c.FunctionKey)
	c.MoneoAPIKey = mask(c.MoneoAPIKey)
	c.CallbackToken = mask(c.CallbackToken)
	c.Scheduler.Tasks = maps.Clone(c.Scheduler.Tasks)
	return c
}

// DetailedErrors reports whether error replies may include internal details.
func (c *Config) DetailedErrors() bool {
	return c.IsDetailedErrorsEnabled
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

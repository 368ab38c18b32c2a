package config

import "time"

// Default values for configuration
const (
	DefaultChatAdapter = "telegram"

	// Log defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	// HTTP defaults
	DefaultHTTPAddress         = ":8080"
	DefaultHTTPReadTimeout     = 15 * time.Second
	DefaultHTTPShutdownTimeout = 10 * time.Second

	// Delivery defaults
	DefaultDeliveryMaxAttempts     = 3
	DefaultDeliveryInitialInterval = 500 * time.Millisecond
	DefaultDeliveryMaxInterval     = 5 * time.Second
	DefaultDeliveryBreakerFailures = 5
	DefaultDeliveryBreakerTimeout  = 30 * time.Second

	// Storage defaults
	DefaultDBPath           = "moneo.db"
	DefaultJournalRetention = 30 * 24 * time.Hour

	// Scheduler defaults
	JournalMaintenanceTask             = "journal_maintenance"
	DefaultJournalMaintenanceSchedule  = "0 0 3 * * *"
	DefaultJournalMaintenanceIsEnabled = true
)

var defaults = map[string]any{
	"bot_token":                  "",
	"master_conversation_id":     0,
	"function_key":               "",
	"moneo_api_key":              "",
	"callback_token":             "",
	"task_api_base":              "",
	"is_detailed_errors_enabled": false,
	"chat_adapter":               DefaultChatAdapter,

	"logger.level": DefaultLogLevel,
	"logger.json":  DefaultLogJSON,

	"http.address":          DefaultHTTPAddress,
	"http.read_timeout":     DefaultHTTPReadTimeout,
	"http.shutdown_timeout": DefaultHTTPShutdownTimeout,

	"webhook.url":                  "",
	"webhook.drop_pending_updates": false,

	"delivery.max_attempts":     DefaultDeliveryMaxAttempts,
	"delivery.initial_interval": DefaultDeliveryInitialInterval,
	"delivery.max_interval":     DefaultDeliveryMaxInterval,
	"delivery.breaker_failures": DefaultDeliveryBreakerFailures,
	"delivery.breaker_timeout":  DefaultDeliveryBreakerTimeout,

	"database.path":     DefaultDBPath,
	"journal.retention": DefaultJournalRetention,

	"scheduler.tasks." + JournalMaintenanceTask + ".enabled":  DefaultJournalMaintenanceIsEnabled,
	"scheduler.tasks." + JournalMaintenanceTask + ".schedule": DefaultJournalMaintenanceSchedule,
}

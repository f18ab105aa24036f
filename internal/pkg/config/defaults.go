package config

import "time"

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxUploadSizeMB = 50
	DefaultCleanupInterval = 1 * time.Hour

	// Processing defaults
	DefaultTaskTimeout = 600 * time.Second
	DefaultTaskTTL     = 24 * time.Hour
	DefaultCacheTTL    = 60 * time.Minute
	DefaultPoolSize    = 4
	DefaultSampleSize  = 10000

	// Parsing defaults
	DefaultTimezone = "UTC"

	// Client defaults
	DefaultServerURL    = "http://localhost:8080"
	DefaultPollInterval = 2 * time.Second
	DefaultHTTPTimeout  = 30 * time.Second

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// DefaultConfigFile — файл конфигурации, который читается, если путь не задан.
	DefaultConfigFile = "config.yml"
	// EnvPrefix — префикс переменных окружения, переопределяющих конфигурацию.
	EnvPrefix = "CHATPARSE_"
)

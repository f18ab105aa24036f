// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"whatsapp-chat-parser/internal/domain"
	"whatsapp-chat-parser/internal/resources"
)

// Server содержит конфигурацию сервера
type Server struct {
	Host            string        `json:"host" yaml:"host"`
	Port            int           `json:"port" yaml:"port"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxUploadSizeMB int           `json:"max_upload_size_mb" yaml:"max_upload_size_mb"`
}

// Processing содержит конфигурацию обработки
type Processing struct {
	TaskTimeout time.Duration `json:"task_timeout" yaml:"task_timeout"` // 0 - без ограничений
	TaskTTL     time.Duration `json:"task_ttl" yaml:"task_ttl"`
	CacheTTL    time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	PoolSize    int           `json:"pool_size" yaml:"pool_size"`
	SampleSize  int           `json:"sample_size" yaml:"sample_size"`
}

// Parsing содержит опции разбора по умолчанию
type Parsing struct {
	Platform                string  `json:"platform" yaml:"platform"`
	Language                string  `json:"language" yaml:"language"`
	SmileyStrategy          string  `json:"smiley_strategy" yaml:"smiley_strategy"`
	URLMode                 string  `json:"url_mode" yaml:"url_mode"`
	AnonMode                string  `json:"anon_mode" yaml:"anon_mode"`
	Order                   string  `json:"order" yaml:"order"`
	NewlinePlaceholder      string  `json:"newline_placeholder" yaml:"newline_placeholder"`
	MediaOmittedPlaceholder string  `json:"media_omitted_placeholder" yaml:"media_omitted_placeholder"`
	ConsentText             *string `json:"consent_text,omitempty" yaml:"consent_text,omitempty"`
	AnonymizeMentions       bool    `json:"anonymize_mentions" yaml:"anonymize_mentions"`
	Timezone                string  `json:"timezone" yaml:"timezone"`
}

// Resources содержит пути к пользовательским таблицам; пустой путь — встроенные данные
type Resources struct {
	IndicatorsFile string `json:"indicators_file" yaml:"indicators_file"`
	EmojiFile      string `json:"emoji_file" yaml:"emoji_file"`
	SmiliesFile    string `json:"smilies_file" yaml:"smilies_file"`
}

// Client содержит конфигурацию HTTP-клиента
type Client struct {
	ServerURL    string        `json:"server_url" yaml:"server_url"`
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	HTTPTimeout  time.Duration `json:"http_timeout" yaml:"http_timeout"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level            string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format           string `json:"format" yaml:"format"` // text, json
	MaskPhoneNumbers bool   `json:"mask_phone_numbers" yaml:"mask_phone_numbers"`
}

// Config содержит конфигурацию приложения
type Config struct {
	Server     Server     `json:"server" yaml:"server"`
	Processing Processing `json:"processing" yaml:"processing"`
	Parsing    Parsing    `json:"parsing" yaml:"parsing"`
	Resources  Resources  `json:"resources" yaml:"resources"`
	Client     Client     `json:"client" yaml:"client"`
	Logging    Logging    `json:"logging" yaml:"logging"`
}

// defaultConfig возвращает конфигурацию со значениями по умолчанию.
func defaultConfig() *Config {
	opts := domain.DefaultOptions()
	return &Config{
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxUploadSizeMB: DefaultMaxUploadSizeMB,
		},
		Processing: Processing{
			TaskTimeout: DefaultTaskTimeout,
			TaskTTL:     DefaultTaskTTL,
			CacheTTL:    DefaultCacheTTL,
			PoolSize:    DefaultPoolSize,
			SampleSize:  DefaultSampleSize,
		},
		Parsing: Parsing{
			Platform:                string(opts.Platform),
			Language:                string(opts.Language),
			SmileyStrategy:          string(opts.SmileyStrategy),
			URLMode:                 string(opts.URLMode),
			AnonMode:                string(opts.AnonMode),
			Order:                   string(opts.Order),
			NewlinePlaceholder:      opts.NewlinePlaceholder,
			MediaOmittedPlaceholder: opts.MediaOmittedPlaceholder,
			AnonymizeMentions:       opts.AnonymizeMentions,
			Timezone:                DefaultTimezone,
		},
		Client: Client{
			ServerURL:    DefaultServerURL,
			PollInterval: DefaultPollInterval,
			HTTPTimeout:  DefaultHTTPTimeout,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем YAML-файл
// (по умолчанию config.yml, отсутствие файла не ошибка), затем переменные
// окружения CHATPARSE_*, в том числе из .env файла.
func LoadConfig(path string) (*Config, error) {
	// Отсутствие .env файла не ошибка
	_ = godotenv.Load()

	if path == "" {
		path = DefaultConfigFile
	}

	cfg := defaultConfig()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
	}
	return cfg, nil
}

// loadFromYAML дополняет cfg значениями из YAML-файла.
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}
	return nil
}

// loadFromEnv переопределяет значения cfg переменными окружения с префиксом CHATPARSE_.
func loadFromEnv(cfg *Config) error {
	strs := map[string]*string{
		"SERVER_HOST":     &cfg.Server.Host,
		"PLATFORM":        &cfg.Parsing.Platform,
		"LANGUAGE":        &cfg.Parsing.Language,
		"SMILEY_STRATEGY": &cfg.Parsing.SmileyStrategy,
		"URL_MODE":        &cfg.Parsing.URLMode,
		"ANON_MODE":       &cfg.Parsing.AnonMode,
		"ORDER":           &cfg.Parsing.Order,
		"TIMEZONE":        &cfg.Parsing.Timezone,
		"INDICATORS":      &cfg.Resources.IndicatorsFile,
		"EMOJI":           &cfg.Resources.EmojiFile,
		"SMILIES":         &cfg.Resources.SmiliesFile,
		"SERVER_URL":      &cfg.Client.ServerURL,
		"LOG_LEVEL":       &cfg.Logging.Level,
		"LOG_FORMAT":      &cfg.Logging.Format,
	}
	for key, dst := range strs {
		if v, ok := lookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SERVER_PORT":        &cfg.Server.Port,
		"MAX_UPLOAD_SIZE_MB": &cfg.Server.MaxUploadSizeMB,
		"POOL_SIZE":          &cfg.Processing.PoolSize,
		"SAMPLE_SIZE":        &cfg.Processing.SampleSize,
	}
	for key, dst := range ints {
		if v, ok := lookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("недопустимый %s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &cfg.Server.ShutdownTimeout,
		"TASK_TIMEOUT":     &cfg.Processing.TaskTimeout,
		"TASK_TTL":         &cfg.Processing.TaskTTL,
		"CACHE_TTL":        &cfg.Processing.CacheTTL,
	}
	for key, dst := range durations {
		if v, ok := lookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("недопустимый %s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	if v, ok := lookupEnv("MASK_PHONE_NUMBERS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("недопустимый %sMASK_PHONE_NUMBERS: %w", EnvPrefix, err)
		}
		cfg.Logging.MaskPhoneNumbers = b
	}
	if v, ok := lookupEnv("CONSENT_TEXT"); ok {
		cfg.Parsing.ConsentText = &v
	}
	return nil
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaxUploadBytes возвращает максимальный размер загружаемого файла в байтах.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadSizeMB) << 20
}

// ParseOptions преобразует секцию parsing в опции разбора.
func (c *Config) ParseOptions() (domain.Options, error) {
	p := c.Parsing
	platform, err := domain.ParsePlatform(p.Platform)
	if err != nil {
		return domain.Options{}, err
	}
	language, err := domain.ParseLanguage(p.Language)
	if err != nil {
		return domain.Options{}, err
	}

	tz := p.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return domain.Options{}, fmt.Errorf("parsing.timezone: %w", err)
	}

	opts := domain.Options{
		Platform:                platform,
		Language:                language,
		SmileyStrategy:          domain.SmileyStrategy(p.SmileyStrategy),
		URLMode:                 domain.URLMode(p.URLMode),
		AnonMode:                domain.AnonMode(p.AnonMode),
		Order:                   domain.Order(p.Order),
		NewlinePlaceholder:      p.NewlinePlaceholder,
		MediaOmittedPlaceholder: p.MediaOmittedPlaceholder,
		ConsentText:             p.ConsentText,
		AnonymizeMentions:       p.AnonymizeMentions,
		Location:                loc,
	}.WithDefaults()

	if err := opts.Validate(); err != nil {
		return domain.Options{}, err
	}
	return opts, nil
}

// ResourcePaths возвращает пути к пользовательским таблицам ресурсов.
func (c *Config) ResourcePaths() resources.Paths {
	return resources.Paths{
		IndicatorsFile: c.Resources.IndicatorsFile,
		EmojiFile:      c.Resources.EmojiFile,
		SmiliesFile:    c.Resources.SmiliesFile,
	}
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должно быть положительным")
	}

	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("server.max_upload_size_mb должно быть положительным")
	}

	if c.Processing.TaskTimeout < 0 {
		return fmt.Errorf("processing.task_timeout должно быть неотрицательным (0 для отсутствия ограничений)")
	}

	if c.Processing.TaskTTL <= 0 {
		return fmt.Errorf("processing.task_ttl должно быть положительным")
	}

	if c.Processing.CacheTTL <= 0 {
		return fmt.Errorf("processing.cache_ttl должно быть положительным")
	}

	if c.Processing.PoolSize <= 0 {
		return fmt.Errorf("processing.pool_size должно быть положительным")
	}

	if c.Processing.SampleSize <= 0 {
		return fmt.Errorf("processing.sample_size должно быть положительным")
	}

	if _, err := c.ParseOptions(); err != nil {
		return fmt.Errorf("секция parsing содержит ошибку: %w", err)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	return nil
}

// lookupEnv возвращает непустое значение переменной окружения с префиксом CHATPARSE_.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

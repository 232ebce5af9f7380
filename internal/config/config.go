// Пакет config — загрузка и валидация конфигурации DMS Admin Gateway
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// DefaultAPIBaseURL — базовый URL внешнего API документов по умолчанию.
const DefaultAPIBaseURL = "https://apis.allsoft.co/api/documentManagement"

// Допустимые backend'ы хранилища credential.
const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

// Config содержит все параметры конфигурации gateway.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Таймаут graceful shutdown
	ShutdownTimeout time.Duration

	// --- Внешний API документов ---

	// Базовый URL API (без trailing slash)
	APIBaseURL string
	// Таймаут запросов к API
	APITimeout time.Duration
	// Путь к CA-сертификату для TLS (пусто — системный пул)
	APICACertPath string
	// Таймаут прямого скачивания по абсолютным URL
	DirectTimeout time.Duration

	// --- Сессии ---

	// Ключ шифрования cookie (пусто — случайный на время жизни процесса)
	SessionKey string
	// Secure flag у cookie
	SessionSecure bool
	// Backend хранилища credential: cookie или redis
	SessionBackend string
	// Время жизни credential в хранилище
	SessionTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// --- Кэши ---

	// Количество сессий, для которых хранится ResultSet
	StateCacheSize int
	// Время жизни ResultSet без обращений
	StateTTL time.Duration
	// Максимум одновременно открытых preview
	PreviewCacheSize int
	// Время жизни preview-ссылки
	PreviewTTL time.Duration
	TagCacheSize     int
	TagCacheTTL      time.Duration

	// Максимальный размер загружаемого файла (байт)
	UploadMaxBytes int64

	// --- Экспорт архивов в S3 (опционально) ---

	ArchiveS3Bucket string
	ArchiveS3Prefix string
	S3Endpoint      string
	S3Region        string
	// Статические ключи S3 (пусто — цепочка AWS по умолчанию)
	S3AccessKey string
	S3SecretKey string
	// Время жизни presigned-ссылки на архив
	ArchiveURLTTL time.Duration

	// --- topologymetrics ---

	DephealthEnabled       bool
	DephealthGroup         string
	DephealthCheckInterval time.Duration
	DephealthHealthPath    string
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если значения некорректны.
//
//nolint:funlen,cyclop // линейный разбор переменных
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	cfg.Port, err = getEnvInt("DMS_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("DMS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("DMS_PORT: порт %d вне диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("DMS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("DMS_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("DMS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DMS_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	if cfg.HTTPReadTimeout, err = getEnvDuration("DMS_HTTP_READ_TIMEOUT", 30*time.Second); err != nil {
		return nil, fmt.Errorf("DMS_HTTP_READ_TIMEOUT: %w", err)
	}
	// Архив всех результатов собирается до начала ответа
	if cfg.HTTPWriteTimeout, err = getEnvDuration("DMS_HTTP_WRITE_TIMEOUT", 120*time.Second); err != nil {
		return nil, fmt.Errorf("DMS_HTTP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.HTTPIdleTimeout, err = getEnvDuration("DMS_HTTP_IDLE_TIMEOUT", 120*time.Second); err != nil {
		return nil, fmt.Errorf("DMS_HTTP_IDLE_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("DMS_SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, fmt.Errorf("DMS_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Внешний API ---

	cfg.APIBaseURL = strings.TrimRight(getEnvDefault("DMS_API_BASE_URL", DefaultAPIBaseURL), "/")
	if parsed, perr := url.Parse(cfg.APIBaseURL); perr != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("DMS_API_BASE_URL: некорректный URL %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout, err = getEnvDurationPositive("DMS_API_TIMEOUT", 15*time.Second); err != nil {
		return nil, fmt.Errorf("DMS_API_TIMEOUT: %w", err)
	}
	cfg.APICACertPath = os.Getenv("DMS_API_CA_CERT_PATH")
	if cfg.DirectTimeout, err = getEnvDurationPositive("DMS_DIRECT_TIMEOUT", 60*time.Second); err != nil {
		return nil, fmt.Errorf("DMS_DIRECT_TIMEOUT: %w", err)
	}

	// --- Сессии ---

	cfg.SessionKey = os.Getenv("DMS_SESSION_KEY")
	if cfg.SessionSecure, err = getEnvBool("DMS_SESSION_SECURE", false); err != nil {
		return nil, fmt.Errorf("DMS_SESSION_SECURE: %w", err)
	}
	cfg.SessionBackend = strings.ToLower(getEnvDefault("DMS_SESSION_BACKEND", SessionBackendCookie))
	if cfg.SessionBackend != SessionBackendCookie && cfg.SessionBackend != SessionBackendRedis {
		return nil, fmt.Errorf("DMS_SESSION_BACKEND: недопустимое значение %q, допустимые: cookie, redis", cfg.SessionBackend)
	}
	if cfg.SessionTTL, err = getEnvDurationPositive("DMS_SESSION_TTL", 24*time.Hour); err != nil {
		return nil, fmt.Errorf("DMS_SESSION_TTL: %w", err)
	}
	cfg.RedisAddr = getEnvDefault("DMS_REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("DMS_REDIS_PASSWORD")
	if cfg.RedisDB, err = getEnvInt("DMS_REDIS_DB", 0); err != nil {
		return nil, fmt.Errorf("DMS_REDIS_DB: %w", err)
	}

	// --- Кэши ---

	if cfg.StateCacheSize, err = getEnvIntPositive("DMS_STATE_CACHE_SIZE", 1000); err != nil {
		return nil, fmt.Errorf("DMS_STATE_CACHE_SIZE: %w", err)
	}
	if cfg.StateTTL, err = getEnvDurationPositive("DMS_STATE_TTL", 30*time.Minute); err != nil {
		return nil, fmt.Errorf("DMS_STATE_TTL: %w", err)
	}
	if cfg.PreviewCacheSize, err = getEnvIntPositive("DMS_PREVIEW_CACHE_SIZE", 256); err != nil {
		return nil, fmt.Errorf("DMS_PREVIEW_CACHE_SIZE: %w", err)
	}
	if cfg.PreviewTTL, err = getEnvDurationPositive("DMS_PREVIEW_TTL", 5*time.Minute); err != nil {
		return nil, fmt.Errorf("DMS_PREVIEW_TTL: %w", err)
	}
	if cfg.TagCacheSize, err = getEnvIntPositive("DMS_TAG_CACHE_SIZE", 100); err != nil {
		return nil, fmt.Errorf("DMS_TAG_CACHE_SIZE: %w", err)
	}
	if cfg.TagCacheTTL, err = getEnvDurationPositive("DMS_TAG_CACHE_TTL", 2*time.Minute); err != nil {
		return nil, fmt.Errorf("DMS_TAG_CACHE_TTL: %w", err)
	}

	maxBytes, err := getEnvInt("DMS_UPLOAD_MAX_BYTES", 10*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("DMS_UPLOAD_MAX_BYTES: %w", err)
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("DMS_UPLOAD_MAX_BYTES: значение должно быть > 0")
	}
	cfg.UploadMaxBytes = int64(maxBytes)

	// --- S3 ---

	cfg.ArchiveS3Bucket = os.Getenv("DMS_ARCHIVE_S3_BUCKET")
	cfg.ArchiveS3Prefix = getEnvDefault("DMS_ARCHIVE_S3_PREFIX", "archives/")
	cfg.S3Endpoint = os.Getenv("DMS_S3_ENDPOINT")
	cfg.S3Region = getEnvDefault("DMS_S3_REGION", "us-east-1")
	cfg.S3AccessKey = os.Getenv("DMS_S3_ACCESS_KEY")
	cfg.S3SecretKey = os.Getenv("DMS_S3_SECRET_KEY")
	if (cfg.S3AccessKey == "") != (cfg.S3SecretKey == "") {
		return nil, fmt.Errorf("DMS_S3_ACCESS_KEY и DMS_S3_SECRET_KEY задаются вместе")
	}
	if cfg.ArchiveURLTTL, err = getEnvDurationPositive("DMS_ARCHIVE_URL_TTL", 15*time.Minute); err != nil {
		return nil, fmt.Errorf("DMS_ARCHIVE_URL_TTL: %w", err)
	}

	// --- topologymetrics ---

	if cfg.DephealthEnabled, err = getEnvBool("DMS_DEPHEALTH_ENABLED", true); err != nil {
		return nil, fmt.Errorf("DMS_DEPHEALTH_ENABLED: %w", err)
	}
	cfg.DephealthGroup = getEnvDefault("DMS_DEPHEALTH_GROUP", "dms")
	if cfg.DephealthCheckInterval, err = getEnvDurationPositive("DMS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second); err != nil {
		return nil, fmt.Errorf("DMS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.DephealthHealthPath = getEnvDefault("DMS_DEPHEALTH_HEALTH_PATH", "/")

	return cfg, nil
}

// ArchiveExportEnabled — настроен ли экспорт архивов в S3.
func (c *Config) ArchiveExportEnabled() bool {
	return c.ArchiveS3Bucket != ""
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvIntPositive — как getEnvInt, но значение должно быть > 0.
func getEnvIntPositive(key string, defaultVal int) (int, error) {
	n, err := getEnvInt(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvDurationPositive — как getEnvDuration, но значение должно быть > 0.
func getEnvDurationPositive(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

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

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "clientforge.yaml"

// DefaultEnvFile is the dotenv file loaded before reading the environment.
const DefaultEnvFile = ".env"

// Load returns a Config using the hierarchy: defaults < YAML < .env < ENV.
// Both files are optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < .env < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	if err := loadDotEnv(DefaultEnvFile); err != nil {
		return nil, fmt.Errorf("config dotenv: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadDotEnv populates the process environment from a dotenv file.
// Variables that are already set win over the file.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "CLIENTFORGE_PORT")
	setString(&cfg.Server.CORSOrigin, "CLIENTFORGE_CORS_ORIGIN")
	setString(&cfg.Server.PublicURL, "CLIENTFORGE_PUBLIC_URL")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "CLIENTFORGE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "CLIENTFORGE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "CLIENTFORGE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "CLIENTFORGE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "CLIENTFORGE_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Logging.Level, "CLIENTFORGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "CLIENTFORGE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "CLIENTFORGE_LOG_ASYNC")
	setInt(&cfg.Breaker.MaxFailures, "CLIENTFORGE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "CLIENTFORGE_BREAKER_TIMEOUT")
	setFloat64(&cfg.Rate.RequestsPerSecond, "CLIENTFORGE_RATE_RPS")
	setInt(&cfg.Rate.Burst, "CLIENTFORGE_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "CLIENTFORGE_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "CLIENTFORGE_RATE_MAX_IDLE_TIME")

	// Auth
	setBool(&cfg.Auth.Enabled, "CLIENTFORGE_AUTH_ENABLED")
	setString(&cfg.Auth.JWTSecret, "CLIENTFORGE_JWT_SECRET")
	setString(&cfg.Auth.Issuer, "CLIENTFORGE_JWT_ISSUER")

	// AI
	setBool(&cfg.AI.Enabled, "CLIENTFORGE_AI_ENABLED")
	setString(&cfg.AI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.AI.Model, "CLIENTFORGE_AI_MODEL")
	setInt64(&cfg.AI.MaxOutputTokens, "CLIENTFORGE_AI_MAX_OUTPUT_TOKENS")
	setInt(&cfg.AI.MaxConcurrent, "CLIENTFORGE_AI_MAX_CONCURRENT")
	setDuration(&cfg.AI.Timeout, "CLIENTFORGE_AI_TIMEOUT")

	// Calendar
	setString(&cfg.Calendar.BaseURL, "CLIENTFORGE_CALENDAR_URL")
	setString(&cfg.Calendar.APIKey, "CLIENTFORGE_CALENDAR_API_KEY")
	setString(&cfg.Calendar.BookingPageURL, "CLIENTFORGE_CALENDAR_BOOKING_PAGE")
	setString(&cfg.Calendar.WebhookSecret, "CLIENTFORGE_CALENDAR_WEBHOOK_SECRET")
	setDuration(&cfg.Calendar.Timeout, "CLIENTFORGE_CALENDAR_TIMEOUT")

	// Cache
	setInt64(&cfg.Cache.L1MaxSizeMB, "CLIENTFORGE_CACHE_L1_SIZE_MB")
	setString(&cfg.Cache.L2Backend, "CLIENTFORGE_CACHE_L2_BACKEND")
	setString(&cfg.Cache.L2Bucket, "CLIENTFORGE_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.L2TTL, "CLIENTFORGE_CACHE_L2_TTL")
	setDuration(&cfg.Cache.BookingsTTL, "CLIENTFORGE_CACHE_BOOKINGS_TTL")
	setString(&cfg.Cache.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Cache.RedisPassword, "REDIS_PASSWORD")
	setInt(&cfg.Cache.RedisDB, "REDIS_DB")

	// Idempotency
	setString(&cfg.Idempotency.Bucket, "CLIENTFORGE_IDEMPOTENCY_BUCKET")
	setDuration(&cfg.Idempotency.TTL, "CLIENTFORGE_IDEMPOTENCY_TTL")

	setString(&cfg.Vault.Secret, "CLIENTFORGE_VAULT_SECRET")
	setStringSlice(&cfg.Vault.PreviousSecrets, "CLIENTFORGE_VAULT_PREVIOUS_SECRETS")

	// OTEL
	setBool(&cfg.OTEL.Enabled, "CLIENTFORGE_OTEL_ENABLED")
	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.OTEL.ServiceName, "OTEL_SERVICE_NAME")
	setBool(&cfg.OTEL.Insecure, "CLIENTFORGE_OTEL_INSECURE")
	setFloat64(&cfg.OTEL.SampleRate, "CLIENTFORGE_OTEL_SAMPLE_RATE")

	setBool(&cfg.MCP.Enabled, "CLIENTFORGE_MCP_ENABLED")
	setString(&cfg.MCP.Addr, "CLIENTFORGE_MCP_ADDR")

	// Wizard
	setInt(&cfg.Wizard.ProgressStep, "CLIENTFORGE_WIZARD_PROGRESS_STEP")
	setDuration(&cfg.Wizard.ProgressInterval, "CLIENTFORGE_WIZARD_PROGRESS_INTERVAL")
	setDuration(&cfg.Wizard.BookingsCheckDelay, "CLIENTFORGE_WIZARD_BOOKINGS_DELAY")
	setDuration(&cfg.Wizard.WindowPollInterval, "CLIENTFORGE_WIZARD_POLL_INTERVAL")
	setDuration(&cfg.Wizard.WindowSettleDelay, "CLIENTFORGE_WIZARD_SETTLE_DELAY")
	setDuration(&cfg.Wizard.WindowPollCeiling, "CLIENTFORGE_WIZARD_POLL_CEILING")
	setDuration(&cfg.Wizard.RequestTimeout, "CLIENTFORGE_WIZARD_REQUEST_TIMEOUT")
	setString(&cfg.Wizard.APIBaseURL, "CLIENTFORGE_API_URL")
	setString(&cfg.Wizard.CalendarURL, "CLIENTFORGE_WIZARD_CALENDAR_URL")
	setBool(&cfg.Wizard.ShowUpcomingBookings, "CLIENTFORGE_WIZARD_SHOW_BOOKINGS")

	// Alerts
	setString(&cfg.Alerts.SlackWebhookURL, "CLIENTFORGE_SLACK_WEBHOOK_URL")
	setString(&cfg.Alerts.DiscordWebhookURL, "CLIENTFORGE_DISCORD_WEBHOOK_URL")
	setString(&cfg.Alerts.SMTPHost, "CLIENTFORGE_SMTP_HOST")
	setInt(&cfg.Alerts.SMTPPort, "CLIENTFORGE_SMTP_PORT")
	setString(&cfg.Alerts.SMTPFrom, "CLIENTFORGE_SMTP_FROM")
	setString(&cfg.Alerts.SMTPPassword, "CLIENTFORGE_SMTP_PASSWORD")
	setStringSlice(&cfg.Alerts.EmailTo, "CLIENTFORGE_ALERT_EMAILS")
	setDuration(&cfg.Alerts.Timeout, "CLIENTFORGE_ALERT_TIMEOUT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when auth is enabled")
	}
	switch cfg.Cache.L2Backend {
	case "nats", "redis":
	default:
		return fmt.Errorf("cache.l2_backend must be nats or redis, got %q", cfg.Cache.L2Backend)
	}
	if cfg.Wizard.ProgressStep < 1 || cfg.Wizard.ProgressStep > 90 {
		return errors.New("wizard.progress_step must be between 1 and 90")
	}
	if cfg.Wizard.WindowPollCeiling < cfg.Wizard.WindowPollInterval {
		return errors.New("wizard.window_poll_ceiling must be >= wizard.window_poll_interval")
	}
	if len(cfg.Alerts.EmailTo) > 0 && (cfg.Alerts.SMTPHost == "" || cfg.Alerts.SMTPFrom == "") {
		return errors.New("alerts.smtp_host and alerts.smtp_from are required for email alerts")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setStringSlice splits a comma-separated value, dropping blanks.
func setStringSlice(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

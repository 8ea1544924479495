package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Postgres.MaxConns != 15 {
		t.Errorf("expected max_conns 15, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("expected breaker timeout 30s, got %v", cfg.Breaker.Timeout)
	}
	if cfg.Wizard.ProgressStep != 10 {
		t.Errorf("expected progress step 10, got %d", cfg.Wizard.ProgressStep)
	}
	if cfg.Cache.L2Backend != "nats" {
		t.Errorf("expected nats L2 backend, got %s", cfg.Cache.L2Backend)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
postgres:
  max_conns: 20
logging:
  level: "debug"
wizard:
  window_settle_delay: 5s
ai:
  model: "gpt-4.1"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.CORSOrigin != "http://example.com" {
		t.Errorf("expected cors http://example.com, got %s", cfg.Server.CORSOrigin)
	}
	if cfg.Postgres.MaxConns != 20 {
		t.Errorf("expected max_conns 20, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Wizard.WindowSettleDelay != 5*time.Second {
		t.Errorf("expected settle delay 5s, got %v", cfg.Wizard.WindowSettleDelay)
	}
	if cfg.AI.Model != "gpt-4.1" {
		t.Errorf("expected model gpt-4.1, got %s", cfg.AI.Model)
	}
	// Unchanged fields keep defaults
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("expected default NATS URL, got %s", cfg.NATS.URL)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(yamlPath, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("CLIENTFORGE_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://test:test@db:5432/test")
	t.Setenv("CLIENTFORGE_PG_MAX_CONNS", "25")
	t.Setenv("CLIENTFORGE_LOG_LEVEL", "warn")
	t.Setenv("CLIENTFORGE_BREAKER_TIMEOUT", "1m")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CLIENTFORGE_CACHE_L2_BACKEND", "redis")
	t.Setenv("CLIENTFORGE_WIZARD_POLL_CEILING", "2m")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Postgres.DSN != "postgres://test:test@db:5432/test" {
		t.Errorf("expected test DSN, got %s", cfg.Postgres.DSN)
	}
	if cfg.Postgres.MaxConns != 25 {
		t.Errorf("expected max_conns 25, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Breaker.Timeout != time.Minute {
		t.Errorf("expected breaker timeout 1m, got %v", cfg.Breaker.Timeout)
	}
	if cfg.AI.APIKey != "sk-test" {
		t.Errorf("expected api key sk-test, got %s", cfg.AI.APIKey)
	}
	if cfg.Cache.L2Backend != "redis" {
		t.Errorf("expected redis backend, got %s", cfg.Cache.L2Backend)
	}
	if cfg.Wizard.WindowPollCeiling != 2*time.Minute {
		t.Errorf("expected ceiling 2m, got %v", cfg.Wizard.WindowPollCeiling)
	}
}

func TestEnvInvalidValuesIgnored(t *testing.T) {
	cfg := Defaults()
	t.Setenv("CLIENTFORGE_PG_MAX_CONNS", "many")
	t.Setenv("CLIENTFORGE_BREAKER_TIMEOUT", "soon")
	loadEnv(&cfg)

	if cfg.Postgres.MaxConns != 15 {
		t.Errorf("expected default max_conns, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.Breaker.Timeout)
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{
			name:   "empty port",
			modify: func(c *Config) { c.Server.Port = "" },
			errMsg: "server.port is required",
		},
		{
			name:   "empty DSN",
			modify: func(c *Config) { c.Postgres.DSN = "" },
			errMsg: "postgres.dsn is required",
		},
		{
			name:   "empty NATS URL",
			modify: func(c *Config) { c.NATS.URL = "" },
			errMsg: "nats.url is required",
		},
		{
			name:   "zero max_conns",
			modify: func(c *Config) { c.Postgres.MaxConns = 0 },
			errMsg: "postgres.max_conns must be >= 1",
		},
		{
			name:   "zero breaker failures",
			modify: func(c *Config) { c.Breaker.MaxFailures = 0 },
			errMsg: "breaker.max_failures must be >= 1",
		},
		{
			name:   "zero rate burst",
			modify: func(c *Config) { c.Rate.Burst = 0 },
			errMsg: "rate.burst must be >= 1",
		},
		{
			name:   "auth without secret",
			modify: func(c *Config) { c.Auth.Enabled = true },
			errMsg: "auth.jwt_secret is required when auth is enabled",
		},
		{
			name:   "unknown cache backend",
			modify: func(c *Config) { c.Cache.L2Backend = "memcached" },
			errMsg: `cache.l2_backend must be nats or redis, got "memcached"`,
		},
		{
			name:   "progress step too large",
			modify: func(c *Config) { c.Wizard.ProgressStep = 95 },
			errMsg: "wizard.progress_step must be between 1 and 90",
		},
		{
			name:   "email alerts without smtp",
			modify: func(c *Config) { c.Alerts.EmailTo = []string{"team@example.com"} },
			errMsg: "alerts.smtp_host and alerts.smtp_from are required for email alerts",
		},
		{
			name:   "ceiling below interval",
			modify: func(c *Config) { c.Wizard.WindowPollCeiling = time.Millisecond },
			errMsg: "wizard.window_poll_ceiling must be >= wizard.window_poll_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := validate(&cfg)
			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.errMsg)
			}
			if err.Error() != tt.errMsg {
				t.Errorf("expected %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Defaults()
	if err := validate(&cfg); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadDotEnvMissing(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should not error, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "CLIENTFORGE_PORT=6060\nCLIENTFORGE_TEST_DOTENV_ONLY=from-file\n"
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CLIENTFORGE_PORT", "7070")
	t.Setenv("CLIENTFORGE_TEST_DOTENV_ONLY", "")
	if err := os.Unsetenv("CLIENTFORGE_TEST_DOTENV_ONLY"); err != nil {
		t.Fatal(err)
	}

	if err := loadDotEnv(envPath); err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("CLIENTFORGE_PORT"); got != "7070" {
		t.Errorf("environment should win over .env: got %q", got)
	}
	if got := os.Getenv("CLIENTFORGE_TEST_DOTENV_ONLY"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

func TestLoadFromFullHierarchy(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(yamlPath, []byte(`
server:
  port: "9090"
logging:
  level: "debug"
`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CLIENTFORGE_PORT", "7070")

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("env should override YAML: got port %q, want 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("YAML should override defaults: got level %q, want debug", cfg.Logging.Level)
	}
}

func TestEnvPreviousVaultSecrets(t *testing.T) {
	cfg := Defaults()
	t.Setenv("CLIENTFORGE_VAULT_PREVIOUS_SECRETS", "old-1, ,old-2")
	loadEnv(&cfg)

	if len(cfg.Vault.PreviousSecrets) != 2 || cfg.Vault.PreviousSecrets[1] != "old-2" {
		t.Errorf("unexpected previous secrets %v", cfg.Vault.PreviousSecrets)
	}
}

func TestEnvAlerts(t *testing.T) {
	cfg := Defaults()
	t.Setenv("CLIENTFORGE_SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")
	t.Setenv("CLIENTFORGE_SMTP_PORT", "2525")
	t.Setenv("CLIENTFORGE_ALERT_EMAILS", "team@example.com,sales@example.com")
	loadEnv(&cfg)

	if cfg.Alerts.SlackWebhookURL == "" {
		t.Error("expected slack webhook from env")
	}
	if cfg.Alerts.SMTPPort != 2525 {
		t.Errorf("expected smtp port 2525, got %d", cfg.Alerts.SMTPPort)
	}
	if len(cfg.Alerts.EmailTo) != 2 {
		t.Errorf("unexpected recipients %v", cfg.Alerts.EmailTo)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Strob0t/ClientForge/internal/adapter/calendar"
	"github.com/Strob0t/ClientForge/internal/adapter/discord"
	"github.com/Strob0t/ClientForge/internal/adapter/email"
	cfhttp "github.com/Strob0t/ClientForge/internal/adapter/http"
	"github.com/Strob0t/ClientForge/internal/adapter/mcp"
	cfnats "github.com/Strob0t/ClientForge/internal/adapter/nats"
	"github.com/Strob0t/ClientForge/internal/adapter/natskv"
	"github.com/Strob0t/ClientForge/internal/adapter/openai"
	cfotel "github.com/Strob0t/ClientForge/internal/adapter/otel"
	"github.com/Strob0t/ClientForge/internal/adapter/postgres"
	cfredis "github.com/Strob0t/ClientForge/internal/adapter/redis"
	"github.com/Strob0t/ClientForge/internal/adapter/ristretto"
	"github.com/Strob0t/ClientForge/internal/adapter/slack"
	"github.com/Strob0t/ClientForge/internal/adapter/tiered"
	"github.com/Strob0t/ClientForge/internal/adapter/ws"
	"github.com/Strob0t/ClientForge/internal/config"
	"github.com/Strob0t/ClientForge/internal/logger"
	"github.com/Strob0t/ClientForge/internal/middleware"
	"github.com/Strob0t/ClientForge/internal/port/cache"
	"github.com/Strob0t/ClientForge/internal/port/notifier"
	"github.com/Strob0t/ClientForge/internal/resilience"
	"github.com/Strob0t/ClientForge/internal/secrets"
	"github.com/Strob0t/ClientForge/internal/service"
)

const usage = `Usage: clientforge [command]

Commands:
  serve     Run the REST API (default)
  admin     Maintenance commands (migrations, timeline import)
  intake    Interactive "book a call" wizard in the terminal
`

func main() {
	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = run()
	case "admin":
		err = runAdmin(args)
	case "intake":
		err = runIntake(args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stderr, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
		"cache_l2", cfg.Cache.L2Backend,
		"auth_enabled", cfg.Auth.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---

	shutdownOTEL, err := cfotel.Init(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTEL(sctx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := cfotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// NATS
	queue, err := cfnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	idemKV, err := queue.KeyValue(ctx, cfg.Idempotency.Bucket, cfg.Idempotency.TTL)
	if err != nil {
		return fmt.Errorf("idempotency bucket: %w", err)
	}

	// Cache
	appCache, closeCache, err := buildCache(ctx, cfg, queue)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer closeCache()

	// Credential vault
	vault, err := buildVault(cfg)
	if err != nil {
		return fmt.Errorf("vault: %w", err)
	}

	// --- External providers ---

	var ai *openai.Summarizer
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		ai = openai.New(&cfg.AI, resilience.NewBreaker("openai", cfg.Breaker))
		ai.SetMetrics(metrics)
		slog.Info("ai summarizer enabled", "model", cfg.AI.Model)
	} else {
		slog.Info("ai summarizer disabled")
	}

	var cal *calendar.Client
	if cfg.Calendar.APIKey != "" {
		cal = calendar.NewClient(&cfg.Calendar)
		cal.SetBreaker(resilience.NewBreaker("calendar", cfg.Breaker))
	} else {
		slog.Info("calendar provider not configured")
	}

	// --- Services ---

	verifier := middleware.NewTokenVerifier(&cfg.Auth)
	var verifyWS ws.TokenVerifier
	if cfg.Auth.Enabled {
		verifyWS = verifier.VerifyString
	}
	hub := ws.NewHub(cfg.Server.CORSOrigin, verifyWS)
	store := postgres.NewStore(pool)

	bookingSvc := service.NewBookingService(store, queue, hub, appCache, &cfg.Cache)
	bookingSvc.SetMetrics(metrics)
	timelineSvc := service.NewTimelineService(store, queue, hub)
	timelineSvc.SetMetrics(metrics)
	if ai != nil {
		bookingSvc.SetSummarizer(ai)
		timelineSvc.SetSummarizer(ai)
	}
	if cal != nil {
		bookingSvc.SetCalendar(cal)
	}
	var sealer service.Sealer
	if vault != nil {
		sealer = vault
	}
	clientSvc := service.NewClientService(store, hub, sealer)

	alertSvc := service.NewAlertService(queue, cfg.Server.PublicURL, alertChannels(&cfg.Alerts)...)
	if alertSvc.Enabled() {
		stopAlerts, err := alertSvc.Start(ctx)
		if err != nil {
			return fmt.Errorf("alerts: %w", err)
		}
		defer stopAlerts()
		slog.Info("team alerts enabled")
	}

	// --- HTTP ---

	handlers := &cfhttp.Handlers{
		Bookings: bookingSvc,
		Clients:  clientSvc,
		Timeline: timelineSvc,
	}

	limiter := middleware.NewRateLimiter(cfg.Rate)
	go limiter.Run(ctx)

	r := chi.NewRouter()

	r.Use(cfhttp.SecurityHeaders)
	r.Use(cfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(cfhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cfotel.HTTPMiddleware(cfg.OTEL.ServiceName))

	r.Get("/health", cfhttp.Health(map[string]cfhttp.Pinger{
		"postgres": cfhttp.PingFunc(pool.Ping),
		"nats": cfhttp.PingFunc(func(context.Context) error {
			if !queue.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		}),
	}))
	r.Get("/ws", hub.HandleWS)

	cfhttp.MountRoutes(r, handlers, cfhttp.RouteConfig{
		RateLimit:     limiter.Handler,
		Idempotency:   middleware.Idempotency(idemKV),
		Auth:          middleware.Auth(verifier, cfg.Auth.Enabled),
		WebhookSecret: cfg.Calendar.WebhookSecret,
	})

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// --- MCP ---

	var mcpSrv *mcp.Server
	if cfg.MCP.Enabled {
		deps := mcp.ServerDeps{Clients: clientSvc, Timeline: timelineSvc}
		if cfg.Auth.Enabled {
			deps.Verify = verifier.VerifyString
		}
		mcpSrv = mcp.NewServer(mcp.ServerConfig{
			Addr:    cfg.MCP.Addr,
			Name:    "clientforge",
			Version: "1.0.0",
		}, deps)
		if err := mcpSrv.Start(); err != nil {
			return fmt.Errorf("mcp: %w", err)
		}
		slog.Info("mcp server started", "addr", mcpSrv.Addr())
	}

	if vault != nil {
		go reloadVaultOnHangup(ctx, vault)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if mcpSrv != nil {
		if err := mcpSrv.Stop(shutdownCtx); err != nil {
			slog.Warn("mcp shutdown", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := queue.Drain(); err != nil {
		slog.Warn("nats drain", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// buildCache assembles the in-process L1 and the configured shared L2.
func buildCache(ctx context.Context, cfg *config.Config, queue *cfnats.Queue) (cache.Cache, func(), error) {
	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB)
	if err != nil {
		return nil, nil, fmt.Errorf("l1: %w", err)
	}

	switch cfg.Cache.L2Backend {
	case "redis":
		rdb, err := cfredis.NewClient(ctx, cfg.Cache)
		if err != nil {
			l1.Close()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		l2 := cfredis.New(rdb)
		slog.Info("cache ready", "l1_mb", cfg.Cache.L1MaxSizeMB, "l2", "redis", "addr", cfg.Cache.RedisAddr)
		return tiered.New(l1, l2, cfg.Cache.L2TTL), func() {
			_ = l2.Close()
			l1.Close()
		}, nil
	default:
		kv, err := queue.KeyValue(ctx, cfg.Cache.L2Bucket, cfg.Cache.L2TTL)
		if err != nil {
			l1.Close()
			return nil, nil, fmt.Errorf("nats kv: %w", err)
		}
		slog.Info("cache ready", "l1_mb", cfg.Cache.L1MaxSizeMB, "l2", "nats", "bucket", cfg.Cache.L2Bucket)
		return tiered.New(l1, natskv.New(kv), cfg.Cache.L2TTL), l1.Close, nil
	}
}

// alertChannels returns a notifier for every channel with a destination.
func alertChannels(cfg *config.Alerts) []notifier.Notifier {
	var out []notifier.Notifier
	if cfg.SlackWebhookURL != "" {
		out = append(out, slack.NewNotifier(cfg.SlackWebhookURL, cfg.Timeout))
	}
	if cfg.DiscordWebhookURL != "" {
		out = append(out, discord.NewNotifier(cfg.DiscordWebhookURL, cfg.Timeout))
	}
	if len(cfg.EmailTo) > 0 {
		out = append(out, email.NewNotifier(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.SMTPFrom,
			Password: cfg.SMTPPassword,
			To:       cfg.EmailTo,
		}))
	}
	return out
}

// buildVault returns nil when no vault secret is configured; account
// endpoints then answer 503.
func buildVault(cfg *config.Config) (*secrets.Keyring, error) {
	if cfg.Vault.Secret == "" {
		slog.Warn("vault secret not set, admin account storage disabled")
		return nil, nil
	}
	return secrets.NewKeyring(secrets.FileLoader(config.DefaultConfigFile))
}

// reloadVaultOnHangup re-reads the vault secrets on SIGHUP so retired keys
// can be rotated in without a restart.
func reloadVaultOnHangup(ctx context.Context, vault *secrets.Keyring) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := vault.Reload(); err != nil {
				slog.Error("vault reload failed", "error", err)
				continue
			}
			slog.Info("vault keys reloaded", "keys", vault.KeyCount())
		}
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	cfnats "github.com/Strob0t/ClientForge/internal/adapter/nats"
	"github.com/Strob0t/ClientForge/internal/adapter/openai"
	"github.com/Strob0t/ClientForge/internal/adapter/postgres"
	"github.com/Strob0t/ClientForge/internal/adapter/ws"
	"github.com/Strob0t/ClientForge/internal/config"
	"github.com/Strob0t/ClientForge/internal/domain/client"
	"github.com/Strob0t/ClientForge/internal/domain/timeline"
	"github.com/Strob0t/ClientForge/internal/resilience"
	"github.com/Strob0t/ClientForge/internal/service"
)

// maxTimelineFile bounds the size of a timeline document read from disk.
const maxTimelineFile = 256 << 10

// runAdmin dispatches admin subcommands.
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp(os.Stderr)
		return nil
	}

	switch args[0] {
	case "migrate":
		return runAdminMigrate(args[1:])
	case "list-clients":
		return runAdminListClients(args[1:])
	case "parse-timeline":
		return runAdminParseTimeline(args[1:], os.Stdout)
	case "import-timeline":
		return runAdminImportTimeline(args[1:])
	default:
		printAdminHelp(os.Stderr)
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp(w io.Writer) {
	fmt.Fprint(w, `Usage: clientforge admin <command> [options]

Commands:
  migrate          Apply, roll back or show database migrations (up|down|version)
  list-clients     List clients, optionally filtered by status
  parse-timeline   Parse a timeline document and print the milestones
  import-timeline  Parse a timeline document and store it on a client
  help             Show this help message

Examples:
  clientforge admin migrate up
  clientforge admin migrate down --steps 2
  clientforge admin list-clients --status lead
  clientforge admin parse-timeline --file proposal.md
  clientforge admin import-timeline --client 4f6c... --file proposal.md --dry-run
`)
}

func runAdminMigrate(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: clientforge admin migrate up|down|version")
	}
	action := args[0]
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	steps := fs.Int("steps", 1, "number of migrations to roll back")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := context.Background()

	switch action {
	case "up":
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Migrations applied.")
	case "down":
		if *steps < 1 {
			return errors.New("--steps must be >= 1")
		}
		if err := postgres.RollbackMigrations(ctx, cfg.Postgres.DSN, *steps); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Rolled back %d migration(s).\n", *steps)
	case "version":
		v, err := postgres.MigrationVersion(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		fmt.Println(v)
	default:
		return fmt.Errorf("unknown migrate action: %s", action)
	}
	return nil
}

// adminDeps is the subset of the server wiring the admin commands need.
type adminDeps struct {
	clients  *service.ClientService
	timeline *service.TimelineService
}

func loadAdminDeps(ctx context.Context) (*adminDeps, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	queue, err := cfnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}

	store := postgres.NewStore(pool)
	hub := ws.NewHub(cfg.Server.CORSOrigin, nil)
	deps := &adminDeps{
		clients:  service.NewClientService(store, hub, nil),
		timeline: service.NewTimelineService(store, queue, hub),
	}
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		deps.timeline.SetSummarizer(openai.New(&cfg.AI, resilience.NewBreaker("openai", cfg.Breaker)))
	}
	cleanup := func() {
		_ = queue.Drain()
		pool.Close()
	}
	return deps, cleanup, nil
}

func runAdminListClients(args []string) error {
	fs := flag.NewFlagSet("list-clients", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	search := fs.String("search", "", "match name, email or company")
	limit := fs.Int("limit", 50, "maximum number of rows")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	deps, cleanup, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	clients, err := deps.clients.List(ctx, client.ListFilter{
		Status: client.Status(*status),
		Search: *search,
		Limit:  *limit,
	})
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}
	return printClients(os.Stdout, clients)
}

func printClients(out io.Writer, clients []client.Client) error {
	if len(clients) == 0 {
		_, err := fmt.Fprintln(out, "No clients found.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOMPANY\tSTATUS")
	for i := range clients {
		c := &clients[i]
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n",
			c.ID, c.FirstName, c.LastName, c.Email, c.CompanyName, c.Status)
	}
	return w.Flush()
}

func runAdminParseTimeline(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("parse-timeline", flag.ContinueOnError)
	file := fs.String("file", "", "timeline document, - for stdin (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text, err := readTimelineFile(*file)
	if err != nil {
		return err
	}
	return printParseResult(out, timeline.Parse(text))
}

func runAdminImportTimeline(args []string) error {
	fs := flag.NewFlagSet("import-timeline", flag.ContinueOnError)
	clientID := fs.String("client", "", "client ID (required)")
	file := fs.String("file", "", "timeline document, - for stdin (required)")
	useAI := fs.Bool("ai", false, "parse with the AI summarizer")
	dryRun := fs.Bool("dry-run", false, "parse and report without storing events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *clientID == "" {
		return errors.New("--client is required")
	}
	text, err := readTimelineFile(*file)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	deps, cleanup, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := deps.timeline.ImportText(ctx, *clientID, timeline.ImportRequest{
		Text:   text,
		UseAI:  *useAI,
		DryRun: *dryRun,
	})
	if res != nil {
		if perr := printImportResult(os.Stdout, res, *dryRun); perr != nil {
			return perr
		}
	}
	if err != nil {
		return fmt.Errorf("import timeline: %w", err)
	}
	return nil
}

func readTimelineFile(path string) (string, error) {
	if path == "" {
		return "", errors.New("--file is required")
	}
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open timeline: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, maxTimelineFile+1))
	if err != nil {
		return "", fmt.Errorf("read timeline: %w", err)
	}
	if len(data) > maxTimelineFile {
		return "", fmt.Errorf("timeline document exceeds %d bytes", maxTimelineFile)
	}
	return string(data), nil
}

func printParseResult(out io.Writer, res timeline.ParseResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tTITLE\tSTART\tEND\tPAYMENT")
	for i := range res.Milestones {
		m := &res.Milestones[i]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			orDash(m.MilestoneNumber), m.Title, formatDate(m.StartDate), formatDate(m.EndDate), orDash(m.Payment))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, e := range res.Errors {
		_, _ = fmt.Fprintf(out, "warning: %s\n", e)
	}
	return nil
}

func printImportResult(out io.Writer, res *timeline.ImportResult, dryRun bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TYPE\tTITLE\tDATE")
	for i := range res.Events {
		ev := &res.Events[i]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", ev.EventType, ev.Title, ev.EventDate.Format("2006-01-02"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	_, _ = fmt.Fprintf(out, "%s %d event(s), skipped %d.\n", verb, len(res.Events), res.Skipped)
	for _, warn := range res.Warnings {
		_, _ = fmt.Fprintf(out, "warning: %s\n", warn)
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

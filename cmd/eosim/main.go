// eosim generates realistic internal monitoring alerts aligned with
// live external disruption events and delivers them to BigPanda, where
// correlation between the two can be demonstrated end to end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"eosim/internal/bigpanda"
	"eosim/internal/config"
	"eosim/internal/event"
	"eosim/internal/feed"
	"eosim/internal/format"
	"eosim/internal/generator"
	"eosim/internal/history"
	"eosim/internal/ledger"
	"eosim/internal/ui"
)

var version = "dev"

// eventDisplayLimit caps the interactive event table.
const eventDisplayLimit = 40

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "history":
			runHistory(os.Args[2:])
			return
		case "status":
			runStatus(os.Args[2:])
			return
		case "version":
			fmt.Println("eosim", version)
			return
		}
	}

	// Default: run the interactive demo.
	runDemo(os.Args[1:])
}

func runDemo(args []string) {
	fs := flag.NewFlagSet("eosim", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	envPath := fs.String("env", "", "path to .env file with credentials")
	resolveAll := fs.Bool("resolve-all", false, "resolve all active sent alerts and exit")
	setupOIM := fs.Bool("setup-oim", false, "configure the BigPanda OIM integration and exit")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Parse(args)

	if *showVersion {
		fmt.Println("eosim", version)
		os.Exit(0)
	}

	loadEnv(*envPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()

	setupLogging(cfg.Log.Level)

	fmt.Print(ui.Banner(cfg.OpenAI.Model, cfg.BigPanda.AlertsURL))

	creds := config.CredentialsFromEnv()
	if missing := creds.Missing(); len(missing) > 0 {
		printConfigHelp(missing, *envPath)
		os.Exit(1)
	}
	fmt.Println("✓ Configuration loaded successfully")

	a := newApp(cfg, creds)
	if err := a.run(*resolveAll, *setupOIM); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// loadEnv loads credentials from a .env file next to the binary, or from
// an explicit --env path. A missing default file is fine; the variables
// may already be exported.
func loadEnv(path string) {
	explicit := path != ""
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && explicit {
		fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", path, err)
	}
}

type app struct {
	cfg     *config.Config
	prompt  *ui.Prompter
	feed    *feed.Client
	gen     generator.Generator
	sender  bigpanda.Sender
	oim     *bigpanda.Configurator
	ledger  *ledger.Ledger
	history *history.DB
}

func newApp(cfg *config.Config, creds config.Credentials) *app {
	return &app{
		cfg:    cfg,
		prompt: ui.NewPrompter(os.Stdin, os.Stdout),
		feed:   feed.New(cfg.Feed.URL, cfg.Feed.Limit, cfg.Feed.Timeout.Duration),
		gen:    generator.NewOpenAIClient(creds.OpenAIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout.Duration),
		sender: bigpanda.NewClient(cfg.BigPanda.AlertsURL, creds.OrgToken, creds.AppKey, cfg.BigPanda.SendTimeout.Duration),
		oim:    bigpanda.NewConfigurator(cfg.BigPanda.OIMConfigURL, creds.OrgToken, creds.AppKey, cfg.BigPanda.ConfigureTimeout.Duration),
		ledger: ledger.Open(cfg.Ledger.Path),
	}
}

func (a *app) run(resolveAll, setupOIM bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SIGINT can land while a prompt blocks on stdin, so exit directly
	// rather than waiting for the read to return.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\nInterrupted. Goodbye!")
		os.Exit(0)
	}()

	a.openHistory()
	if a.history != nil {
		defer a.history.Close()
	}

	if resolveAll {
		fmt.Println("\nQuick Resolve Mode")
		a.resolveFlow(ctx, true)
		return nil
	}
	if setupOIM {
		a.setupOIMFlow(ctx)
		return nil
	}

	for {
		fmt.Print(ui.Menu(len(a.ledger.Active()), a.ledger.Len()))
		choice, err := a.prompt.Choose("Choose an option", []string{"1", "2", "3", "4", "5"}, "1")
		if err != nil {
			return nil
		}

		switch choice {
		case "1":
			a.generateAndSendFlow(ctx)
		case "2":
			a.resolveFlow(ctx, false)
		case "3":
			a.viewAlerts()
		case "4":
			a.setupOIMFlow(ctx)
		case "5":
			fmt.Println("\nGoodbye!")
			return nil
		}
	}
}

// openHistory attaches the delivery history database. Everything here is
// best-effort: the demo works fine without it.
func (a *app) openHistory() {
	path, err := historyPath(a.cfg)
	if err != nil {
		slog.Warn("delivery history unavailable", "error", err)
		return
	}

	db, err := history.Open(path)
	if err != nil {
		slog.Warn("delivery history unavailable", "error", err)
		return
	}
	a.history = db

	if retention := a.cfg.History.Retention.Duration; retention > 0 {
		purged, err := db.Purge(retention)
		if err != nil {
			slog.Warn("failed to purge old attempts", "error", err)
		} else if purged > 0 {
			slog.Debug("purged old attempts", "count", purged, "retention", retention)
		}
	}
}

// --- generate & send flow ---

func (a *app) generateAndSendFlow(ctx context.Context) {
	events, err := a.fetchEvents(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching events: %v\n", err)
		return
	}
	if len(events) == 0 {
		fmt.Println("No active events found. Try again later.")
		return
	}

	sums := event.Summarize(events)
	fmt.Print(ui.TypeSummaryTable(sums))

	types := a.selectTypes(sums)
	fmt.Printf("\nFiltering by: %s\n", strings.Join(types, ", "))

	filtered := event.FilterByTypes(events, types)
	if len(filtered) == 0 {
		fmt.Println("No events found for the selected types.")
		return
	}
	event.SortForDisplay(filtered)
	fmt.Print(ui.EventTable(filtered, eventDisplayLimit))

	ev, ok := a.pickEvent(filtered)
	if !ok {
		fmt.Println("No event selected.")
		return
	}
	fmt.Print(ui.EventDetail(ev))

	rec, err := a.generate(ctx, ev)
	if err != nil {
		return
	}

	payload := bigpanda.BuildOpen(rec)
	fmt.Print(ui.PayloadPreview(payload, ev.Title))

	fmt.Println()
	send, err := a.prompt.Confirm("Send this alert to BigPanda?", true)
	if err != nil {
		return
	}
	if !send {
		regen, err := a.prompt.Confirm("Would you like to regenerate the alert?", false)
		if err != nil || !regen {
			fmt.Println("Cancelled.")
			return
		}
		rec, err = a.generate(ctx, ev)
		if err != nil {
			return
		}
		payload = bigpanda.BuildOpen(rec)
		fmt.Print(ui.PayloadPreview(payload, ev.Title))

		fmt.Println()
		send, err = a.prompt.Confirm("Send this alert to BigPanda?", true)
		if err != nil || !send {
			fmt.Println("Cancelled.")
			return
		}
	}

	if err := a.sendOpen(ctx, payload, ev.Title); err != nil {
		return
	}

	if _, err := a.ledger.Track(payload, ev.Title); err != nil {
		slog.Warn("failed to record sent alert", "error", err)
	}
	fmt.Println("\n✓ Alert sent and tracked!")
	fmt.Println("Use option 2 from the main menu to resolve it when done.")
}

func (a *app) fetchEvents(ctx context.Context) ([]event.Event, error) {
	fmt.Println("\nFetching live events from publicobservability.io...")

	res, err := a.feed.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	maxAge := a.cfg.Feed.MaxEventAge.Duration
	kept, stats := event.Filter(res.Events, time.Now(), maxAge)

	note := ""
	if stats.Future > 0 || stats.Stale > 0 {
		note = fmt.Sprintf(" | excluded: %d future, %d older than %dh",
			stats.Future, stats.Stale, int(maxAge.Hours()))
	}
	fmt.Printf("Fetched %d active events (of %d total)%s\n", len(kept), res.TotalCount, note)

	return kept, nil
}

func (a *app) selectTypes(sums []event.TypeSummary) []string {
	all := make([]string, len(sums))
	for i, s := range sums {
		all[i] = s.Type
	}

	fmt.Println()
	answer, err := a.prompt.Ask("Select event types (comma-separated numbers, or 'all')", "all")
	if err != nil {
		return all
	}

	sel, err := ui.ParseSelection(answer)
	if err != nil {
		fmt.Println("Invalid input, showing all types.")
		return all
	}
	if sel.All || sel.Quit {
		return all
	}

	var picked []string
	for _, n := range sel.Indices {
		if n >= 1 && n <= len(all) {
			picked = append(picked, all[n-1])
		}
	}
	if len(picked) == 0 {
		fmt.Println("No valid types selected, showing all.")
		return all
	}
	return picked
}

func (a *app) pickEvent(events []event.Event) (event.Event, bool) {
	shown := len(events)
	if shown > eventDisplayLimit {
		shown = eventDisplayLimit
	}

	fmt.Println()
	answer, err := a.prompt.Ask("Select event # to base the internal alert on (or 'q' to go back)", "")
	if err != nil {
		return event.Event{}, false
	}

	sel, err := ui.ParseSelection(answer)
	if err != nil || sel.Quit || sel.All || len(sel.Indices) != 1 {
		return event.Event{}, false
	}

	n := sel.Indices[0]
	if n < 1 || n > shown {
		fmt.Printf("Invalid selection: %d\n", n)
		return event.Event{}, false
	}
	return events[n-1], true
}

func (a *app) generate(ctx context.Context, ev event.Event) (*generator.Record, error) {
	fmt.Printf("\nGenerating internal alert with %s...\n", a.cfg.OpenAI.Model)

	rec, err := a.gen.Generate(ctx, ev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating alert: %v\n", err)
		return nil, err
	}
	return rec, nil
}

// sendOpen delivers a critical payload and records the attempt.
func (a *app) sendOpen(ctx context.Context, p bigpanda.Payload, basedOn string) error {
	fmt.Printf("Sending %s alert to BigPanda...\n", p.Status)

	err := a.sender.Send(ctx, p)
	a.recordAttempt(history.ActionOpen, p.Host, p.Check, basedOn, err)

	if err != nil {
		printSendError(err)
		return err
	}
	fmt.Println("Alert sent successfully!")
	return nil
}

// --- resolve flow ---

func (a *app) resolveFlow(ctx context.Context, auto bool) {
	if a.ledger.Len() == 0 {
		fmt.Println("\nNo sent alerts on record.")
		return
	}

	active := a.ledger.Active()
	if len(active) == 0 {
		fmt.Println("\nNo active (unresolved) alerts.")
		a.printResolvedCount()
		return
	}

	fmt.Print(ui.ActiveAlertTable(active))
	a.printResolvedCount()

	toResolve := active
	if !auto {
		fmt.Println()
		answer, err := a.prompt.Ask("Select alerts to resolve (comma-separated numbers, 'all', or 'q' to go back)", "all")
		if err != nil {
			return
		}

		sel, err := ui.ParseSelection(answer)
		if err != nil {
			fmt.Println("Invalid input.")
			return
		}
		if sel.Quit {
			fmt.Println("Cancelled.")
			return
		}
		if !sel.All {
			toResolve = nil
			for _, n := range sel.Indices {
				if n >= 1 && n <= len(active) {
					toResolve = append(toResolve, active[n-1])
				}
			}
		}
		if len(toResolve) == 0 {
			fmt.Println("No alerts selected.")
			return
		}

		confirmed, err := a.prompt.Confirm(fmt.Sprintf("\nSend OK status for %d alert(s)?", len(toResolve)), true)
		if err != nil || !confirmed {
			fmt.Println("Cancelled.")
			return
		}
	}

	ids := make([]string, len(toResolve))
	for i, r := range toResolve {
		ids[i] = r.ID
	}

	fmt.Println()
	outcomes, err := a.ledger.Resolve(ctx, ids, a.sender)
	if err != nil {
		slog.Warn("failed to save ledger after resolve", "error", err)
	}

	success := 0
	for _, out := range outcomes {
		hostShort := format.Truncate(out.Record.Host, 40)
		if out.Err == nil {
			success++
			fmt.Printf("  ✓ Resolved: %s\n", hostShort)
		} else {
			fmt.Printf("  ✗ Failed:   %s\n", hostShort)
			printSendError(out.Err)
		}
		a.recordAttempt(history.ActionResolve, out.Record.Host, out.Record.Check, out.Record.BasedOnEvent, out.Err)
	}
	fmt.Printf("\n%d/%d alerts resolved.\n", success, len(outcomes))
}

func (a *app) viewAlerts() {
	if a.ledger.Len() == 0 {
		fmt.Println("\nNo sent alerts on record.")
		return
	}

	active := a.ledger.Active()
	if len(active) == 0 {
		fmt.Println("\nNo active (unresolved) alerts.")
	} else {
		fmt.Print(ui.ActiveAlertTable(active))
	}
	a.printResolvedCount()
}

func (a *app) printResolvedCount() {
	if n := len(a.ledger.Resolved()); n > 0 {
		fmt.Printf("\n%d previously resolved alert(s) on file.\n", n)
	}
}

// --- OIM setup flow ---

func (a *app) setupOIMFlow(ctx context.Context) {
	fmt.Println("\nCAUTION: Will overwrite the entire configuration of the")
	fmt.Println("OIM Integration App Key provided to make sure the demo tool works correctly.")

	confirmed, err := a.prompt.Confirm("\nAre you sure you wish to continue?", false)
	if err != nil || !confirmed {
		fmt.Println("Cancelled.")
		return
	}

	fmt.Println("\nConfiguring OIM integration...")
	err = a.oim.Configure(ctx)
	a.recordAttempt(history.ActionConfigure, "", "", "", err)

	if err == nil {
		fmt.Println("OIM integration configured successfully!")
		fmt.Println("\n✓ Integration is ready to receive demo alerts.")
		return
	}

	var apiErr *bigpanda.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "BigPanda returned HTTP %d\nResponse: %s\n", apiErr.StatusCode, apiErr.Body)
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			fmt.Println("\nHint: Verify your BIGPANDA_ORG_ACCESS_TOKEN is an Org Token (not a User API Key).")
		case http.StatusNotFound:
			fmt.Println("\nHint: Verify your BIGPANDA_APP_KEY matches an existing OIM integration.")
		}
	} else {
		fmt.Fprintf(os.Stderr, "Network error: %v\n", err)
	}
}

// recordAttempt appends one row to the delivery history, if available.
func (a *app) recordAttempt(action history.Action, host, check, basedOn string, sendErr error) {
	if a.history == nil {
		return
	}

	att := history.Attempt{
		Action:  action,
		Outcome: history.OutcomeSent,
		Host:    host,
		Check:   check,
		BasedOn: basedOn,
	}
	if sendErr != nil {
		att.Outcome = history.OutcomeFailed
		att.Detail = sendErr.Error()
	}

	if err := a.history.Record(att); err != nil {
		slog.Warn("failed to record delivery attempt", "error", err)
	}
}

func printSendError(err error) {
	var apiErr *bigpanda.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "BigPanda returned HTTP %d\nResponse body: %s\n", apiErr.StatusCode, apiErr.Body)
		return
	}
	fmt.Fprintf(os.Stderr, "Network error: %v\n", err)
}

func printConfigHelp(missing []string, envPath string) {
	if envPath == "" {
		envPath = ".env"
	}

	fmt.Println("\nMissing Configuration")
	fmt.Println("\nThe following environment variables must be set before running the demo.")

	help := map[string]string{
		"BIGPANDA_ORG_ACCESS_TOKEN": "Your BigPanda Org Token (Bearer token).\n      Find it: BigPanda -> Settings -> API Keys -> Org Token",
		"BIGPANDA_APP_KEY":          "The App Key from your OIM integration.\n      Find it: BigPanda -> Integrations -> Open Integration Manager -> select your integration -> App Key",
		"OPENAI_API_KEY":            "Your OpenAI API key.\n      Find it: https://platform.openai.com/api-keys",
	}

	for _, v := range missing {
		fmt.Printf("\n  * %s\n      %s\n", v, help[v])
	}

	fmt.Println("\nHow to fix:")
	fmt.Printf("  1. Open %s in any text editor\n", envPath)
	fmt.Println("  2. Replace the placeholder values with your real credentials")
	fmt.Println("  3. Save and re-run: eosim")

	if _, err := os.Stat(envPath); err != nil {
		fmt.Printf("\n  Tip: No %s file found. Create one, or export the variables in your shell.\n", envPath)
	}
	fmt.Println()
}

// --- history subcommand ---

func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	last := fs.String("last", "7d", "time window (e.g. 24h, 7d, 30d)")
	action := fs.String("action", "", "filter by action (open, resolve, configure)")
	outcome := fs.String("outcome", "", "filter by outcome (sent, failed)")
	limit := fs.Int("limit", 50, "max attempts to show")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error") // quiet for CLI output

	db := openHistoryOrExit(cfg)
	defer db.Close()

	since, err := parseDuration(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --last value %q: %v\n", *last, err)
		os.Exit(1)
	}

	attempts, err := db.Query(history.QueryFilter{
		Since:   time.Now().Add(-since),
		Action:  history.Action(*action),
		Outcome: history.Outcome(*outcome),
		Limit:   *limit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}

	if len(attempts) == 0 {
		fmt.Println("No delivery attempts found.")
		return
	}

	fmt.Print(ui.HistoryTable(attempts))
}

// --- status subcommand ---

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()

	setupLogging("error")

	fmt.Printf("Model:        %s\n", cfg.OpenAI.Model)
	fmt.Printf("Target:       %s\n", cfg.BigPanda.AlertsURL)

	led := ledger.Open(cfg.Ledger.Path)
	fmt.Printf("Ledger:       %s\n", led.Path())
	fmt.Printf("Alerts:       %d active, %d resolved\n", len(led.Active()), len(led.Resolved()))

	db := openHistoryOrExit(cfg)
	defer db.Close()

	s, err := db.Summarize(time.Now().Add(-24 * time.Hour))
	if err == nil {
		summary := strings.ReplaceAll(ui.DeliverySummary(s), "\n", "\n              ")
		fmt.Printf("Last 24h:     %s\n", summary)
	}

	count, _ := db.Count()
	fmt.Printf("History:      %d attempt(s) total\n", count)
}

func openHistoryOrExit(cfg *config.Config) *history.DB {
	path, err := historyPath(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error resolving history path: %v\n", err)
		os.Exit(1)
	}

	db, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening history database: %v\n", err)
		os.Exit(1)
	}
	return db
}

// historyPath resolves the delivery history location, defaulting to the
// user data directory.
func historyPath(cfg *config.Config) (string, error) {
	if cfg.History.Path != "" {
		return cfg.History.Path, nil
	}
	dir, err := dataDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// parseDuration extends time.ParseDuration with support for "d" (days) suffix.
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		s = strings.TrimSuffix(s, "d")
		var days int
		if _, err := fmt.Sscanf(s, "%d", &days); err != nil {
			return 0, fmt.Errorf("invalid days format: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// --- utilities ---

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func dataDirectory() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(dataHome, "eosim")
	return dir, os.MkdirAll(dir, 0o750)
}

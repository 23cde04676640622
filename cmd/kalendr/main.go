package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/christopherklint97/kalendr/internal/ai"
	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/christopherklint97/kalendr/internal/calendar"
	"github.com/christopherklint97/kalendr/internal/config"
	"github.com/christopherklint97/kalendr/internal/scheduler"
	"github.com/christopherklint97/kalendr/internal/server"
	"github.com/christopherklint97/kalendr/internal/store"
	"github.com/christopherklint97/kalendr/internal/tui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "kalendr",
	Short:        "Shared calendar with a Czech-speaking assistant",
	Long:         "kalendr keeps shared group calendars, answers questions about free time and turns plain Czech sentences into events.",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant interactively",
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask <text>",
	Short: "Ask the assistant a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an event to a group",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "List upcoming events",
	RunE:  runAgenda,
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Run the daily free-time digest on its cron schedule",
	RunE:  runDigest,
}

var digestStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running digest scheduler",
	RunE:  runDigestStop,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	rootCmd.PersistentFlags().String("user", "", "user id (defaults to calendar.user_id, then $USER)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	askCmd.Flags().Bool("json", false, "print the raw response as JSON")

	addCmd.Flags().String("group", "", "group id (defaults to calendar.group_id)")
	addCmd.Flags().String("date", "", "date as YYYY-MM-DD or a phrase like \"next friday\"")
	addCmd.Flags().String("time", "", "start time HH:MM (empty for an all-day event)")
	addCmd.Flags().String("end", "", "end time HH:MM")
	addCmd.Flags().String("description", "", "event description")
	addCmd.MarkFlagRequired("date")

	agendaCmd.Flags().Int("days", 7, "how many days ahead to list")

	digestCmd.Flags().Bool("now", false, "send one digest immediately and exit")
	digestCmd.AddCommand(digestStopCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(agendaCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what most commands need: config, logger, an open store and the
// assistant service on top of it.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *store.DB
	svc    *ai.Service
}

func (e *env) Close() error {
	return e.db.Close()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := config.ParseLevel(cfg.Log.Level)
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newRemoteProvider(cfg *config.Config, logger *slog.Logger) ai.Provider {
	switch cfg.Remote.Provider {
	case "claude-cli":
		model := cfg.Remote.Model
		// The default model names a Hugging Face repo the CLI cannot run.
		if model == config.DefaultConfig().Remote.Model {
			model = ""
		}
		return ai.NewClaudeCLI(model, logger)
	case "openai":
		return ai.NewOpenAICompat(cfg.Remote.BaseURL, cfg.Remote.APIKey, cfg.Remote.Model, logger)
	}
	return nil
}

func setup(cmd *cobra.Command, logOut io.Writer) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, cfg, logOut)

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	opts := []ai.ServiceOption{ai.WithLogger(logger)}
	if p := newRemoteProvider(cfg, logger); p != nil {
		opts = append(opts, ai.WithRemote(p, time.Duration(cfg.Remote.TimeoutSeconds)*time.Second))
		logger.Debug("remote provider enabled", "provider", p.Name(), "model", cfg.Remote.Model)
	}
	svc := ai.NewService(assistant.New(cfg.Assistant.Options()), db, opts...)

	return &env{cfg: cfg, logger: logger, db: db, svc: svc}, nil
}

// resolveUser picks the acting user and makes sure it exists in the store.
func (e *env) resolveUser(ctx context.Context, cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = e.cfg.Calendar.UserID
	}
	if user == "" {
		user = os.Getenv("USER")
	}
	if user == "" {
		return "", fmt.Errorf("no user given: pass --user or set calendar.user_id")
	}
	if err := e.db.EnsureUser(ctx, user, ""); err != nil {
		return "", err
	}
	return user, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(e.svc, e.db, reg, e.logger)
	return srv.ListenAndServe(ctx, e.cfg.Server.ListenAddr)
}

func runChat(cmd *cobra.Command, args []string) error {
	// Log lines would tear the TUI, so chat logs nowhere unless debugging.
	var logOut io.Writer = io.Discard
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		f, err := tea.LogToFile(filepath.Join(dir, "chat.log"), "kalendr")
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	e, err := setup(cmd, logOut)
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.resolveUser(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	app := tui.NewApp(e.svc, user, e.cfg.Calendar.GroupID)
	p := tea.NewProgram(app)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	if saved := app.Saved(); len(saved) > 0 {
		fmt.Printf("Saved %d event(s).\n", len(saved))
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	e, err := setup(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	user, err := e.resolveUser(ctx, cmd)
	if err != nil {
		return err
	}

	var history []ai.Message
	recent, err := e.db.RecentExchanges(ctx, user, 3)
	if err != nil {
		e.logger.Warn("loading history failed", "error", err)
	}
	for _, x := range recent {
		history = append(history,
			ai.Message{Role: "user", Content: x.Text},
			ai.Message{Role: "assistant", Content: x.Message},
		)
	}

	answer := e.svc.Ask(ctx, user, strings.Join(args, " "), history)
	resp := answer.Response

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Println(resp.Message)
	if d := resp.EventData; d != nil && d.Actionable() {
		fmt.Printf("\nTo save it: kalendr add %q --date %s --time %s", d.Title, d.Date, d.Time)
		if d.EndTime != "" {
			fmt.Printf(" --end %s", d.EndTime)
		}
		fmt.Println()
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	groupID, _ := cmd.Flags().GetString("group")
	dateArg, _ := cmd.Flags().GetString("date")
	start, _ := cmd.Flags().GetString("time")
	end, _ := cmd.Flags().GetString("end")
	description, _ := cmd.Flags().GetString("description")

	e, err := setup(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	user, err := e.resolveUser(ctx, cmd)
	if err != nil {
		return err
	}
	if groupID == "" {
		groupID = e.cfg.Calendar.GroupID
	}
	if groupID == "" {
		return fmt.Errorf("no group given: pass --group or set calendar.group_id")
	}

	date, err := calendar.ResolveDate(dateArg, time.Now())
	if err != nil {
		return err
	}

	ev, err := e.db.InsertEvent(ctx, store.Event{
		GroupID:     groupID,
		Title:       strings.Join(args, " "),
		Description: description,
		Date:        date,
		Time:        start,
		EndTime:     end,
		CreatedBy:   user,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added %s on %s %s (%s)\n", ev.Title, ev.Date, ev.Time, ev.ID)
	return nil
}

func runAgenda(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	if days < 1 {
		return fmt.Errorf("--days must be positive")
	}

	e, err := setup(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	user, err := e.resolveUser(ctx, cmd)
	if err != nil {
		return err
	}

	today := e.svc.Today()
	events, err := e.db.EventsForUser(ctx, user,
		today.Format(assistant.DateLayout),
		today.AddDate(0, 0, days).Format(assistant.DateLayout),
	)
	if err != nil {
		return fmt.Errorf("fetching events: %w", err)
	}

	if len(events) == 0 {
		fmt.Printf("Nothing planned in the next %d days.\n", days)
		return nil
	}

	lastDate := ""
	for _, ev := range events {
		if ev.Date != lastDate {
			d, _ := time.Parse(assistant.DateLayout, ev.Date)
			fmt.Printf("\n%s %s\n", assistant.WeekdayLabel(d.Weekday()), ev.Date)
			lastDate = ev.Date
		}
		clock := "celý den"
		if ev.Time != "" {
			clock = ev.Time
			if ev.EndTime != "" {
				clock += "–" + ev.EndTime
			}
		}
		fmt.Printf("  %-12s  %-30s  %s\n", clock, ev.Title, ev.GroupName)
	}
	fmt.Printf("\nTotal: %d events\n", len(events))
	return nil
}

func runDigest(cmd *cobra.Command, args []string) error {
	once, _ := cmd.Flags().GetBool("now")

	e, err := setup(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	user := e.cfg.Digest.UserID
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		user = u
	}
	if user == "" {
		if user, err = e.resolveUser(cmd.Context(), cmd); err != nil {
			return err
		}
	}

	digest := scheduler.NewDigest(e.svc, e.db, user, scheduler.DesktopNotifier, e.logger)
	if once {
		return digest.Run(cmd.Context())
	}

	if !e.cfg.Digest.Enabled {
		e.logger.Warn("digest.enabled is false in config, running anyway")
	}
	if last, ok := scheduler.LastRun(cmd.Context(), e.db); ok {
		e.logger.Info("previous digest", "date", last.Format(assistant.DateLayout))
	}

	sched, err := scheduler.New(e.cfg.Digest.Cron, digest, e.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return sched.Run(ctx)
}

func runDigestStop(cmd *cobra.Command, args []string) error {
	pid, err := scheduler.ReadPID()
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending stop signal: %w", err)
	}

	fmt.Printf("Sent stop signal to kalendr digest (PID %d)\n", pid)
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.WriteDefault(configPath); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	c := exec.Command(editor, configPath)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
	}
	return nil
}

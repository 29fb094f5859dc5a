// Package main provides the CLI entrypoint for playlog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/playlog/internal/browser"
	"github.com/verte-zerg/playlog/internal/config"
	"github.com/verte-zerg/playlog/internal/logging"
	"github.com/verte-zerg/playlog/internal/model"
	"github.com/verte-zerg/playlog/internal/navigator"
	"github.com/verte-zerg/playlog/internal/orchestrator"
	"github.com/verte-zerg/playlog/internal/progress"
	"github.com/verte-zerg/playlog/internal/records"
	"github.com/verte-zerg/playlog/internal/resolve"
	"github.com/verte-zerg/playlog/internal/stats"
	"github.com/verte-zerg/playlog/internal/store"
)

const defaultHistoryWindow = 5

var (
	submitSince      string
	submitSequential bool
	submitWorkers    int
	submitDryRun     bool
	submitDriver     string
	submitHeadless   bool
	submitFormURL    string
	submitProgress   bool
	submitNoHistory  bool
	submitVerbose    bool

	historySince  string
	historyLast   int
	historyRun    string
	historyWindow int
)

// isTerminal reports whether fd is a terminal; the progress view draws on stderr.
var isTerminal = term.IsTerminal

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "playlog <records-file>",
		Short:         "Submit recorded plays to the play-log form",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runSubmitCmd,
	}

	rootCmd.Flags().StringVar(&submitSince, "since", "", "skip records dated before this day (YYYY-MM-DD)")
	rootCmd.Flags().BoolVar(&submitSequential, "sequential", false, "use a single browser session")
	rootCmd.Flags().IntVar(&submitWorkers, "workers", orchestrator.DefaultWorkers, fmt.Sprintf("concurrent browser sessions (1-%d)", orchestrator.MaxWorkers))
	rootCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "fill the form but never click submit")
	rootCmd.Flags().StringVar(&submitDriver, "driver", browser.DriverRod, "browser driver (rod or chromedp)")
	rootCmd.Flags().BoolVar(&submitHeadless, "headless", true, "run the browser without a window")
	rootCmd.Flags().StringVar(&submitFormURL, "form-url", navigator.DefaultFormURL, "address of the play-log form")
	rootCmd.Flags().BoolVar(&submitProgress, "progress", false, "show a live progress view (terminal only)")
	rootCmd.Flags().BoolVar(&submitNoHistory, "no-history", false, "do not record the run in the history database")
	rootCmd.Flags().BoolVarP(&submitVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// submitSettings is everything a run needs after config, env and flags are merged.
type submitSettings struct {
	inputPath string
	since     *time.Time
	formURL   string
	profile   navigator.Profile
	tables    resolve.Tables
	browser   browser.Config
	run       orchestrator.Options
	dryRun    bool
	progress  bool
	history   bool
}

func runSubmitCmd(cmd *cobra.Command, args []string) error {
	settings, err := loadSubmitSettings(cmd, args[0])
	if err != nil {
		return err
	}

	logOpts := logging.Options{Verbose: submitVerbose}
	if settings.progress {
		logOpts.File = config.DefaultLogPath()
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	recs, err := records.LoadRecords(settings.inputPath)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	kept, report := records.Filter(recs, records.FilterOptions{
		Since:             settings.since,
		NoModularScenario: settings.tables.SkipsModulars,
	})
	out := cmd.OutOrStdout()
	if err := stats.RenderFilterReport(out, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(kept) == 0 {
		_, err := fmt.Fprintln(out, "Nothing to submit.")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var observers []orchestrator.Observer
	var st *store.Store
	var runID string
	if settings.history {
		st, runID, err = beginHistory(ctx, settings, report)
		if err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			defer func() {
				if cerr := st.Close(); cerr != nil {
					logger.Warn("failed to close db", zap.Error(cerr))
				}
			}()
			observers = append(observers, store.NewRecorder(st, runID, logger))
		}
	}

	driver, err := browser.Open(ctx, settings.browser)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if cerr := driver.Close(); cerr != nil {
			logger.Debug("close browser", zap.Error(cerr))
		}
	}()

	navCfg := navigator.Config{
		FormURL: settings.formURL,
		Profile: settings.profile,
		Tables:  settings.tables,
		DryRun:  settings.dryRun,
	}
	factory := func(session int, page browser.Page) orchestrator.Processor {
		return navigator.New(page, navCfg, logger.With(zap.Int("session", session)))
	}

	summary, runErr := runBatch(ctx, stop, settings, driver, factory, kept, logger, observers)

	if err := stats.RenderRunSummary(out, summary); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if st != nil {
		// The run context may be canceled already; the summary is still worth keeping.
		if err := st.FinishRun(context.Background(), runID, summary); err != nil {
			logger.Warn("failed to store run summary", zap.Error(err))
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run interrupted")
	}
	return nil
}

func runBatch(ctx context.Context, cancel func(), settings submitSettings, driver browser.Driver, factory orchestrator.ProcessorFactory, recs []model.Record, logger *zap.Logger, observers []orchestrator.Observer) (model.Summary, error) {
	if !settings.progress {
		orch := orchestrator.New(driver, factory, settings.run, logger, observers...)
		return orch.Run(ctx, recs)
	}

	program := tea.NewProgram(progress.NewModel(cancel), tea.WithOutput(os.Stderr))
	observers = append(observers, progress.NewObserver(program))
	orch := orchestrator.New(driver, factory, settings.run, logger, observers...)

	type result struct {
		summary model.Summary
		err     error
	}
	done := make(chan result, 1)
	go func() {
		summary, err := orch.Run(ctx, recs)
		program.Send(progress.DoneMsg{Summary: summary})
		done <- result{summary: summary, err: err}
	}()
	if _, err := program.Run(); err != nil {
		logger.Warn("progress view failed", zap.Error(err))
	}
	res := <-done
	return res.summary, res.err
}

func beginHistory(ctx context.Context, settings submitSettings, report model.FilterReport) (*store.Store, string, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, "", fmt.Errorf("failed to open db: %w", err)
	}
	workers := settings.run.Workers
	if settings.run.Sequential {
		workers = 1
	}
	absPath, err := filepath.Abs(settings.inputPath)
	if err != nil {
		absPath = settings.inputPath
	}
	runID, err := st.BeginRun(ctx, model.RunMeta{
		StartedAt: time.Now(),
		InputPath: absPath,
		Since:     settings.since,
		DryRun:    settings.dryRun,
		Workers:   workers,
		Filter:    report,
	})
	if err != nil {
		_ = st.Close()
		return nil, "", fmt.Errorf("failed to record run: %w", err)
	}
	return st, runID, nil
}

func loadSubmitSettings(cmd *cobra.Command, inputPath string) (submitSettings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return submitSettings{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return submitSettings{}, err
	}
	fileCfg = envCfg.Overlay(fileCfg)

	applyIntConfig(cmd, "workers", &submitWorkers, fileCfg.Run.Workers)
	applyBoolConfig(cmd, "sequential", &submitSequential, fileCfg.Run.Sequential)
	applyBoolConfig(cmd, "dry-run", &submitDryRun, fileCfg.Run.DryRun)
	applyBoolConfig(cmd, "progress", &submitProgress, fileCfg.Run.Progress)
	applyStringConfig(cmd, "driver", &submitDriver, fileCfg.Browser.Driver)
	applyBoolConfig(cmd, "headless", &submitHeadless, fileCfg.Browser.Headless)
	applyStringConfig(cmd, "form-url", &submitFormURL, fileCfg.Form.URL)

	if strings.TrimSpace(inputPath) == "" {
		return submitSettings{}, fmt.Errorf("records file path is empty")
	}
	if submitWorkers < 1 || submitWorkers > orchestrator.MaxWorkers {
		return submitSettings{}, fmt.Errorf("--workers must be between 1 and %d", orchestrator.MaxWorkers)
	}
	since, err := parseDay("--since", submitSince)
	if err != nil {
		return submitSettings{}, err
	}
	driver := strings.ToLower(strings.TrimSpace(submitDriver))
	if driver != browser.DriverRod && driver != browser.DriverChromedp {
		return submitSettings{}, fmt.Errorf("--driver must be %s or %s", browser.DriverRod, browser.DriverChromedp)
	}
	if strings.TrimSpace(submitFormURL) == "" {
		return submitSettings{}, fmt.Errorf("form URL is empty (check --form-url, PLAYLOG_FORM_URL or [form] url in %s)", config.DefaultConfigPath())
	}

	profile, err := navigator.DefaultProfile().WithLabels(fileCfg.Form.Labels)
	if err != nil {
		return submitSettings{}, err
	}

	run := orchestrator.DefaultOptions()
	run.Workers = submitWorkers
	run.Sequential = submitSequential
	applyDuration(&run.SuccessDelay, fileCfg.Run.SuccessDelay)
	applyDuration(&run.FailureDelay, fileCfg.Run.FailureDelay)
	if v := fileCfg.Run.FailureThreshold; v != nil {
		if *v < 1 {
			return submitSettings{}, fmt.Errorf("failure-threshold must be >= 1")
		}
		run.FailureThreshold = *v
	}

	bcfg := browser.DefaultConfig()
	bcfg.Driver = driver
	bcfg.Headless = submitHeadless
	if v := fileCfg.Browser.Bin; v != nil {
		bcfg.Bin = *v
	}
	if v := fileCfg.Browser.DebuggerURL; v != nil {
		bcfg.DebuggerURL = *v
	}
	applyDuration(&bcfg.ElementTimeout, fileCfg.Browser.ElementTimeout)
	applyDuration(&bcfg.SettleTimeout, fileCfg.Browser.SettleTimeout)

	return submitSettings{
		inputPath: inputPath,
		since:     since,
		formURL:   submitFormURL,
		profile:   profile,
		tables:    resolve.DefaultTables().Merge(fileCfg.Tables.Resolve()),
		browser:   bcfg,
		run:       run,
		dryRun:    submitDryRun,
		progress:  submitProgress && isTerminal(int(os.Stderr.Fd())),
		history:   !submitNoHistory,
	}, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().StringVar(&historyRun, "run", "", "show the failed records of one run")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the success-rate line")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseDay("--since", historySince)
	if err != nil {
		return err
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	cfg := model.HistoryConfig{
		Since: since,
		Last:  historyLast,
		RunID: strings.TrimSpace(historyRun),
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), cfg, historyWindow)
}

func parseDay(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(records.DateLayout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value: %w", flag, err)
	}
	return &parsed, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDuration(target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	*target = value.Std()
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# playlog configuration
# Uncomment a value to enable it. Precedence: CLI flags, then PLAYLOG_* env, then this file.

[run]
# workers = %d                # Concurrent browser sessions (1-%d)
# sequential = false          # Single session
# dry-run = false             # Fill the form but never submit
# success-delay = %q          # Pause after a submitted record
# failure-delay = %q          # Pause after a failed record
# failure-threshold = %d      # Consecutive failures before a session takes a new page
# progress = false            # Live progress view

[browser]
# driver = %q                 # rod or chromedp
# headless = true
# bin = "/usr/bin/chromium"   # Browser binary (default: auto-detect)
# debugger-url = ""           # Attach to a running browser instead of launching one
# element-timeout = %q
# settle-timeout = %q

[form]
# url = %q

[form.labels]
# next = "Next"
# submit = "Submit"
# hero-question = "Which hero did you play"

[tables]
# no-modular-scenarios = ["The Wrecking Crew"]
# alt-difficulty-scenarios = ["The Wrecking Crew"]

[tables.heroes]
# "peter" = "Spider-Man (Peter Parker)"
`,
		orchestrator.DefaultWorkers,
		orchestrator.MaxWorkers,
		orchestrator.DefaultSuccessDelay.String(),
		orchestrator.DefaultFailureDelay.String(),
		orchestrator.DefaultFailureThreshold,
		browser.DriverRod,
		browser.DefaultConfig().ElementTimeout.String(),
		browser.DefaultConfig().SettleTimeout.String(),
		navigator.DefaultFormURL,
	)
}

func logErrf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}

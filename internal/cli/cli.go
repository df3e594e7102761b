package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/course-adder/internal/config"
	"github.com/pfrederiksen/course-adder/internal/logger"
	"github.com/pfrederiksen/course-adder/internal/runner"
	"github.com/pfrederiksen/course-adder/internal/scraper"
	"github.com/pfrederiksen/course-adder/internal/sink"
	"github.com/pfrederiksen/course-adder/internal/storage"
	"github.com/pfrederiksen/course-adder/internal/target"
)

const (
	ExitSuccess    = 0
	ExitError      = 1
	ExitIncomplete = 2
)

// errIncomplete signals a finished run where some lines were not added.
var errIncomplete = errors.New("some lines were not added")

var (
	flagConfig   string
	flagDataDir  string
	flagFormat   string
	flagVerbose  bool
	flagLogLevel string

	flagPage        string
	flagURL         string
	flagSearchParam string
	flagDryRun      bool
	flagSaved       bool
	flagNoSave      bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course-adder",
		Short: "Pick course sections in a dual listbox registration page",
		Long: `A CLI tool that reads loosely formatted course requests such as
"CSE221: Sec-09B", "cse221 sec-09" or "CSE 221 9", finds the matching row in a
registration page's course list, and selects it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultFileName, "Config file (optional unless set explicitly)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for saved lines and reports")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output and debug logging")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newParseCmd(), newRunCmd(), newLinesCmd(), newReportCmd())
	return cmd
}

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Show how each request line is understood",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().BoolVar(&flagSaved, "saved", false, "Use saved lines instead of a file or stdin")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Search, match and select every request line",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRun,
	}
	cmd.Flags().StringVar(&flagPage, "page", "", "Saved registration page (HTML file)")
	cmd.Flags().StringVar(&flagURL, "url", "", "Registration page URL")
	cmd.Flags().StringVar(&flagSearchParam, "search-param", "", "Query parameter that carries the course code")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the selections instead of only recording them")
	cmd.Flags().BoolVar(&flagSaved, "saved", false, "Use saved lines instead of a file or stdin")
	cmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not store the run report")
	return cmd
}

func newLinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines",
		Short: "Manage saved request lines",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "save [file]",
		Short: "Save request lines from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLinesSave,
	}, &cobra.Command{
		Use:   "show",
		Short: "Show saved request lines",
		Args:  cobra.NoArgs,
		RunE:  runLinesShow,
	})
	return cmd
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the last run report",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	}
}

// loadConfig layers defaults, the config file and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.LoadOptional(flagConfig)
	}
	if err != nil {
		return nil, err
	}

	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagVerbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}
	if f := cmd.Flags().Lookup("page"); f != nil && f.Changed {
		cfg.PageFile = flagPage
	}
	if f := cmd.Flags().Lookup("url"); f != nil && f.Changed {
		cfg.URL = flagURL
	}
	if f := cmd.Flags().Lookup("search-param"); f != nil && f.Changed {
		cfg.SearchParam = flagSearchParam
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

// readLines reads request lines from the file argument, stdin, or storage.
func readLines(cmd *cobra.Command, args []string, store *storage.Storage) ([]string, error) {
	if flagSaved {
		return store.LoadLines()
	}

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return target.SplitLines(sb.String()), nil
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	lines, err := readLines(cmd, args, store)
	if err != nil {
		return err
	}

	result := &ParseResult{Lines: make([]ParsedLine, 0, len(lines))}
	for _, line := range lines {
		parsed := ParsedLine{Line: line}
		if t, ok := target.Parse(line); ok {
			parsed.Target = &t
		} else {
			result.Skipped++
		}
		result.Lines = append(result.Lines, parsed)
	}

	return WriteParseResult(cmd.OutOrStdout(), result, format)
}

func runRun(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel), cmd.ErrOrStderr())

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	lines, err := readLines(cmd, args, store)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("no request lines given")
	}

	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	recorder := sink.NewRecorder()
	var actions runner.ActionSink = recorder
	if flagDryRun {
		actions = sink.Multi{sink.NewDryRun(cmd.OutOrStdout()), recorder}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	r := runner.New(source, actions, runner.Options{
		ActionDelay: cfg.ActionDelay,
		LineDelay:   cfg.LineDelay,
	}, log)

	report, runErr := r.Run(ctx, lines)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("running: %w", runErr)
	}

	if !flagNoSave {
		if err := store.SaveReport(report); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		log.Debug("Saved report", logger.Fields{"dir": store.Dir()})
	}

	result := &RunResult{Report: report, Selections: recorder.Selections()}
	if flagVerbose {
		snap := r.Metrics().Snapshot()
		result.Metrics = &snap
	}
	if err := WriteRunResult(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if runErr != nil {
		return runErr
	}
	if !report.Complete() {
		return errIncomplete
	}
	return nil
}

// newSource picks a saved page over a URL.
func newSource(cfg *config.Config) (*scraper.Source, error) {
	switch {
	case cfg.PageFile != "":
		load, err := scraper.FileLoader(cfg.PageFile, cfg.Selectors)
		if err != nil {
			return nil, err
		}
		return scraper.NewSource(load, 0, cfg.PollInterval, 0), nil
	case cfg.URL != "":
		sc := scraper.New(cfg)
		return scraper.NewSource(sc.Fetch, cfg.WaitTimeout, cfg.PollInterval, cfg.Settle), nil
	default:
		return nil, fmt.Errorf("one of --page or --url is required")
	}
}

func runLinesSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	lines, err := readLines(cmd, args, store)
	if err != nil {
		return err
	}
	if err := store.SaveLines(lines); err != nil {
		return fmt.Errorf("saving lines: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s.\n", target.CountLabel(len(lines)))
	return nil
}

func runLinesShow(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	lines, err := store.LoadLines()
	if err != nil {
		return err
	}
	return WriteLines(cmd.OutOrStdout(), lines, format)
}

func runReport(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	report, err := store.LoadLastReport()
	if err != nil {
		return err
	}
	return WriteRunResult(cmd.OutOrStdout(), &RunResult{Report: report}, format, flagVerbose)
}

// Execute runs the CLI and exits with the matching code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Stderr))
}

func run(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errIncomplete):
		return ExitIncomplete
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
}

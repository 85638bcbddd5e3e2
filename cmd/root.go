// Package cmd wires the opx command line: dataset loading from file, stdin,
// or the embedded set, non-interactive printing, and the interactive browser.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/opx/internal/formatter"
	"github.com/oakwood-commons/opx/internal/query"
	"github.com/oakwood-commons/opx/internal/ui"
	"github.com/oakwood-commons/opx/pkg/logger"
	"github.com/oakwood-commons/opx/pkg/opcode"
	"github.com/oakwood-commons/opx/pkg/settings"
)

var (
	initialQuery string
	whereExpr    string
	outputFormat string
	columnsFlag  string
	themeName    string
	configFile   string
	noColor      bool
	outputWidth  int
	keyMode      string
	debounceMs   int
	logLevel     int8
)

var rootCtx = context.Background()

// Swappable for tests.
var (
	stdinIsPiped = func() bool {
		stat, _ := os.Stdin.Stat()
		return (stat.Mode() & os.ModeCharDevice) == 0
	}
	stdoutIsPiped = func() bool {
		stat, _ := os.Stdout.Stat()
		return (stat.Mode() & os.ModeCharDevice) == 0
	}
	runBrowser = ui.Run
)

var rootCmd = &cobra.Command{
	Use:   "opx [file]",
	Short: "opx - VM instruction set reference browser",
	Long: `opx browses VM instruction set references in the terminal: type to
filter instructions as you type, open a record for its full documentation,
or print the set in script-friendly formats.

The dataset comes from the file argument, from piped stdin, or from the
embedded reference when neither is given. Accepted inputs: YAML, JSON,
NDJSON, TOML, CSV.`,
	Example: `
  opx
  opx tvm.yaml -q PUSH
  opx tvm.yaml --where '_.category == "Arithmetic"' -o json
  cat ops.json | opx --columns name,gas -o csv
  opx site --out dist`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		lgr := logger.Get(logLevel)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		params := settings.NewCliParams()
		params.MinLogLevel = logLevel
		params.NoColor = noColor

		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), lgr), params)
	},
	RunE: runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	lgr := logger.FromContext(rootCtx)

	if err := validateFlags(); err != nil {
		return err
	}

	cfg, err := loadMergedConfig(resolveConfigPath(configFile))
	if err != nil {
		return err
	}
	if err := applyTheme(cfg, themeName, cmd.Flags().Changed("theme")); err != nil {
		return err
	}

	ds, _, err := loadDataset(args, lgr)
	if err != nil {
		return err
	}

	if columnsFlag != "" {
		ds, err = ds.SelectColumns(splitColumns(columnsFlag))
		if err != nil {
			return err
		}
	}

	if whereExpr != "" {
		f, err := query.New(whereExpr, ds.ColumnKeys())
		if err != nil {
			return err
		}
		filtered, err := f.Apply(ds)
		if err != nil {
			return err
		}
		lgr.V(1).Info("applied filter", "expr", f.Expression(),
			"matched", len(filtered.Records), "total", len(ds.Records))
		ds = filtered
	}

	if mode := printMode(); mode != "" {
		return formatter.Print(cmd.OutOrStdout(), ds, formatter.Options{
			Format:  mode,
			NoColor: printNoColor(),
			Width:   outputWidth,
		})
	}

	return runBrowser(rootCtx, ds, ui.RunOptions{
		Browser: ui.BrowserOptions{
			KeyMode:    resolveKeyMode(cfg),
			DebounceMs: resolveDebounce(cmd, cfg),
			CharLimit:  ui.CharLimitFromConfig(cfg),
			NoColor:    noColor || os.Getenv("NO_COLOR") != "",
			AboutLines: aboutLines(cfg),
		},
		InitialQuery: initialQuery,
	})
}

func validateFlags() error {
	if outputFormat != "" && outputFormat != "auto" {
		if err := formatter.ValidateFormat(outputFormat); err != nil {
			return err
		}
	}
	if keyMode != "" && !ui.IsValidKeyMode(keyMode) {
		return fmt.Errorf("invalid key mode %q: valid values are vim, emacs, function", keyMode)
	}
	return nil
}

// printMode returns the non-interactive output format, or "" when the
// session should open the browser. An explicit --output always prints; auto
// prints a table when stdout is not a terminal.
func printMode() string {
	switch {
	case outputFormat != "" && outputFormat != "auto":
		return outputFormat
	case stdoutIsPiped():
		return "table"
	default:
		return ""
	}
}

func printNoColor() bool {
	return noColor || os.Getenv("NO_COLOR") != "" || stdoutIsPiped()
}

// loadDataset resolves the dataset source: an explicit file (or "-" for
// stdin), piped stdin, then the embedded reference set.
func loadDataset(args []string, lgr *logr.Logger) (*opcode.Dataset, bool, error) {
	if len(args) > 0 && args[0] != "-" {
		ds, err := opcode.LoadFile(args[0])
		if err != nil {
			return nil, false, err
		}
		lgr.V(1).Info("loaded dataset", "source", args[0], "name", ds.Name, "records", len(ds.Records))
		return ds, false, nil
	}

	wantStdin := len(args) > 0 && args[0] == "-"
	if wantStdin || stdinIsPiped() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, true, fmt.Errorf("read stdin: %w", err)
		}
		if len(data) == 0 {
			return nil, true, fmt.Errorf("no data on stdin")
		}
		ds, err := opcode.LoadBytes(data)
		if err != nil {
			return nil, true, err
		}
		lgr.V(1).Info("loaded dataset", "source", "stdin", "name", ds.Name, "records", len(ds.Records))
		return ds, true, nil
	}

	ds, err := opcode.Builtin()
	if err != nil {
		return nil, false, err
	}
	lgr.V(1).Info("using embedded dataset", "name", ds.Name, "records", len(ds.Records))
	return ds, false, nil
}

// applyTheme initializes the theme registry and selects one. A theme named
// on the command line must exist; a bad config default only warns.
func applyTheme(cfg ui.ConfigFile, name string, fromFlag bool) error {
	if err := ui.InitializeThemes(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize themes: %v\n", err)
	}
	if name == "" {
		name = cfg.Theme.Default
	}
	if name == "" {
		return nil
	}
	if err := ui.SetThemeByName(name); err != nil {
		if fromFlag {
			return err
		}
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return nil
}

// resolveKeyMode applies the precedence: flag, then OPX_KEY_MODE, then the
// config file, then vim.
func resolveKeyMode(cfg ui.ConfigFile) ui.KeyMode {
	if keyMode != "" {
		return ui.KeyMode(keyMode)
	}
	if env := os.Getenv("OPX_KEY_MODE"); env != "" && ui.IsValidKeyMode(env) {
		return ui.KeyMode(env)
	}
	return ui.KeyModeFromConfig(cfg)
}

func resolveDebounce(cmd *cobra.Command, cfg ui.ConfigFile) int {
	if cmd.Flags().Changed("debounce-ms") {
		return debounceMs
	}
	return ui.DebounceFromConfig(cfg)
}

func splitColumns(flag string) []string {
	parts := strings.Split(flag, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// aboutLines builds the short about block shown at the top of the help
// overlay.
func aboutLines(cfg ui.ConfigFile) []string {
	name := cfg.About.Name
	if name == "" {
		name = settings.CliBinaryName
	}
	lines := []string{fmt.Sprintf("%s %s", name, settings.VersionInformation.BuildVersion)}
	if cfg.About.Description != "" {
		lines = append(lines, cfg.About.Description)
	}
	if cfg.About.RepositoryURL != "" {
		lines = append(lines, cfg.About.RepositoryURL)
	}
	return lines
}

func cliVersionString() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)",
		settings.CliBinaryName,
		settings.VersionInformation.BuildVersion,
		settings.VersionInformation.Commit,
		settings.VersionInformation.BuildTime,
		runtime.Version())
}

// resolveConfigPath returns the explicit path if set, otherwise the XDG
// location ($XDG_CONFIG_HOME/opx/config.yaml or ~/.config/opx/config.yaml)
// when the file exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, "opx", "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", "opx", "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

func init() { //nolint:gochecknoinits
	rootCmd.Flags().StringVarP(&initialQuery, "query", "q", "", "initial search text")
	rootCmd.Flags().StringVar(&whereExpr, "where", "", "CEL record filter, '_' is the record: '_.category == \"Arithmetic\"'")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "auto", "output format: auto|table|json|yaml|toml|csv|list")
	rootCmd.Flags().StringVar(&columnsFlag, "columns", "", "comma-separated column keys to show, in order")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme name (default from config)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().IntVar(&outputWidth, "width", 0, "output width in columns (0 = detect)")
	rootCmd.Flags().StringVar(&keyMode, "key-mode", "", "keybinding mode: vim (default), emacs, or function")
	rootCmd.Flags().IntVar(&debounceMs, "debounce-ms", 0, "search debounce in milliseconds (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().Int8Var(&logLevel, "log-level", 0, "minimum log level (zap levels; negative enables debug)")
	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(siteCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command. Errors are returned, not printed; main
// reports them once.
func Execute() error {
	return rootCmd.Execute()
}

// Command gotdoc translates documents with an LLM, one chunk at a time,
// carrying the previous chunk and its translation as context.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ZaguanLabs/gotdoc"
	"github.com/ZaguanLabs/gotdoc/config"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = gotdoc.Version
	commit    = gotdoc.GitCommit
	buildDate = gotdoc.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.Execute()
}

// globalFlags are shared by every sub-command.
type globalFlags struct {
	configPath string
	verbose    bool
	quiet      bool
	logFormat  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   gotdoc.Name,
		Short: gotdoc.Description,
		Long: `gotdoc translates .docx, .txt and .html documents with an OpenAI-compatible
chat completion API. The document is split into chunks that fit a token
budget; every chunk is sent together with the previous chunk and its
translation so terminology and tone stay consistent.

The API key is read from OPENAI_API_KEY, GOTDOC_OPENAI_API_KEY or the
OPENAI_API_KEY entry of config.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default: ./config.json or $HOME/.gotdoc/config.json)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log debug messages")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "log warnings and errors only, no summary")
	pf.StringVar(&g.logFormat, "log-format", "", "log format: auto, text or json")

	root.AddCommand(
		newTranslateCmd(g, stdout, stderr),
		newChunksCmd(g, stdout, stderr),
		newCacheCmd(g, stdout),
		newVersionCmd(stdout),
	)

	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(stdout, "%s %s\n", gotdoc.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
			}
			return nil
		},
	}
}

// loadConfig binds the changed command line flags named in bindings
// (config key -> flag name) and loads the configuration.
func loadConfig(cmd *cobra.Command, g *globalFlags, bindings map[string]string) (*config.Config, error) {
	v := viper.New()
	for key, name := range bindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}
	if f := cmd.Flags().Lookup("log-format"); f != nil {
		if err := v.BindPFlag("log_format", f); err != nil {
			return nil, fmt.Errorf("binding flag --log-format: %w", err)
		}
	}

	cfg, err := config.Load(v, g.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the slog logger for a command. The auto format writes
// text to a terminal and JSON everywhere else.
func newLogger(w io.Writer, format string, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case config.LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts))
	case config.LogFormatText:
		return slog.New(slog.NewTextHandler(w, opts))
	}

	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

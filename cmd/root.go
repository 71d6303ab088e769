package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"imgmin/internal/config"
)

type minifyFlags struct {
	config       string
	output       string
	format       string
	quality      int
	prefix       string
	suffix       string
	priority     string
	overwrite    bool
	verbose      int
	lossy        bool
	test         bool
	skipWarnings bool
	toolDir      string
	noStrip      bool
	plain        bool
	logFile      string
	pause        bool
}

var flags minifyFlags

var rootCmd = &cobra.Command{
	Use:   "imgmin [flags] <file|dir>...",
	Short: "imgmin - squeeze images through a chain of optimisers",
	Long: "imgmin runs every image through the compression tools that suit its format, " +
		"one after another, and keeps whichever result is smallest.",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMinify,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if pauseOnExit {
		waitForEnter(os.Stdin, os.Stdout)
	}
	if err != nil {
		os.Exit(1)
	}
}

// pauseOnExit is set once the configuration asks for a pause.
var pauseOnExit bool

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	f := rootCmd.PersistentFlags()
	f.StringVar(&flags.config, "config", "", "YAML config file (default: "+config.DefaultPath()+")")
	f.StringVar(&flags.toolDir, "tool-dir", "", "directory holding the minifier executables (default: ./minifiers next to imgmin)")
	f.CountVarP(&flags.verbose, "verbose", "v", "verbose output; shows tool output and debug lines")
	f.StringVar(&flags.logFile, "log-file", "", "append log lines to this file")

	lf := rootCmd.Flags()
	lf.StringVarP(&flags.output, "output", "o", "", "output directory (default: next to each input)")
	lf.StringVarP(&flags.format, "format", "f", "", "convert to jpg, png or gif before minifying")
	lf.IntVarP(&flags.quality, "quality", "q", 95, "quality for lossy JPEG tools (0-100)")
	lf.StringVarP(&flags.prefix, "prefix", "p", "", "output filename prefix")
	lf.StringVarP(&flags.suffix, "suffix", "s", ".min", "output filename suffix")
	lf.StringVarP(&flags.priority, "priority", "r", "BelowNormal", "tool process priority: Idle, BelowNormal, Normal, AboveNormal, High, RealTime")
	lf.BoolVarP(&flags.overwrite, "overwrite", "w", false, "skip the confirmation prompt for large batches (existing output is always replaced)")
	lf.BoolVarP(&flags.lossy, "lossy", "l", false, "enable lossy tools")
	lf.BoolVarP(&flags.test, "test", "t", false, "print resolved paths only; touch nothing")
	lf.BoolVarP(&flags.skipWarnings, "skip-warnings", "y", false, "do not ask before large batches")
	lf.BoolVar(&flags.noStrip, "no-strip", false, "keep metadata (disable the builtin strip step)")
	lf.BoolVar(&flags.plain, "plain", false, "plain log output without the progress UI")
	lf.BoolVar(&flags.pause, "pause", false, "wait for Enter before exiting")
}

// loadConfig layers defaults, the YAML file and explicitly set flags, then
// validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if flags.config != "" {
		if _, err := os.Stat(flags.config); err != nil {
			return config.Config{}, fmt.Errorf("config file: %w", err)
		}
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("output") {
		cfg.Output = flags.output
	}
	if changed("format") {
		cfg.Format = flags.format
	}
	if changed("quality") {
		cfg.Quality = flags.quality
	}
	if changed("prefix") {
		cfg.Prefix = flags.prefix
	}
	if changed("suffix") {
		cfg.Suffix = flags.suffix
	}
	if changed("priority") {
		cfg.Priority = flags.priority
	}
	if changed("overwrite") {
		cfg.Overwrite = flags.overwrite
	}
	if changed("verbose") {
		cfg.Verbosity = flags.verbose
	}
	if changed("lossy") {
		cfg.Lossy = flags.lossy
	}
	if changed("skip-warnings") {
		cfg.SkipWarnings = flags.skipWarnings
	}
	if changed("tool-dir") {
		cfg.ToolDir = flags.toolDir
	}
	if changed("no-strip") {
		cfg.BuiltinStrip = !flags.noStrip
	}
	if changed("plain") {
		cfg.Plain = flags.plain
	}
	if changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	if changed("pause") {
		cfg.Pause = flags.pause
	}
	cfg.TestMode = flags.test

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

var errFilesFailed = errors.New("some files could not be minified")

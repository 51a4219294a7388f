package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/romdo/go-relaxed/internal/config"
)

var (
	configPath   string
	flagDelay    time.Duration
	flagInterval time.Duration
	flagMaxWait  time.Duration
	flagLeading  bool
	flagTrailing bool
	flagLogFile  string
	flagVerbose  bool

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "relaxed-demo",
	Short: "Compare a debounced and a throttled value with the value they follow.",
	Long: `relaxed-demo shows three rows: what you type, the same value debounced, ` +
		`and the same value throttled. Without a subcommand it starts the ` +
		`interactive view; the replay command runs a scripted sequence of ` +
		`keystrokes in virtual time and prints every publish.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.DurationVar(&flagDelay, "delay", 0, "debounce delay")
	flags.DurationVar(&flagInterval, "interval", 0, "throttle interval")
	flags.DurationVar(&flagMaxWait, "max-wait", 0, "debounce max wait, 0 to disable")
	flags.BoolVar(&flagLeading, "leading", false, "publish on the leading edge")
	flags.BoolVar(&flagTrailing, "trailing", true, "publish on the trailing edge")
	flags.StringVar(&flagLogFile, "log-file", "", "log file, defaults to $RELAXED_LOG_FILE or relaxed-demo.log")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "log debug messages")

	rootCmd.AddCommand(tuiCmd, replayCmd)
}

// setup loads the configuration, applies flags and environment on top, and
// sets up logging.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}

	if v := os.Getenv("RELAXED_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	flags := cmd.Flags()
	if flags.Changed("delay") {
		cfg.Debounce.Delay = config.Duration(flagDelay)
	}
	if flags.Changed("interval") {
		cfg.Throttle.Interval = config.Duration(flagInterval)
	}
	if flags.Changed("max-wait") {
		cfg.Debounce.MaxWait = config.Duration(flagMaxWait)
	}
	if flags.Changed("leading") {
		cfg.Debounce.Leading = flagLeading
	}
	if flags.Changed("trailing") {
		cfg.Debounce.Trailing = &flagTrailing
	}
	if flags.Changed("log-file") {
		cfg.Log.File = flagLogFile
	}
	if flagVerbose {
		cfg.Log.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out, err := openLog(cfg.Log.File)
	if err != nil {
		return err
	}
	logger = setupLogging(out, cfg.Log.Verbose)

	dc := cfg.DebounceConfig()
	logger.Info().
		Dur("delay", dc.Delay).
		Bool("leading", dc.Leading).
		Bool("trailing", dc.Trailing).
		Dur("max_wait", dc.MaxWait).
		Dur("interval", time.Duration(cfg.Throttle.Interval)).
		Str("command", cmd.Name()).
		Msg("starting")

	return nil
}

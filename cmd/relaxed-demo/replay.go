package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	relaxed "github.com/romdo/go-relaxed"
	"github.com/romdo/go-relaxed/internal/config"
	"github.com/romdo/go-relaxed/vclock"
)

var replayKeys []string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay keystrokes in virtual time and print every publish.",
	Long: `replay types a script of keystrokes into the realtime value, in virtual ` +
		`time, and prints a row for every keystroke and every publish of the ` +
		`debounced and throttled values. Keystrokes come from --key flags, ` +
		`written as offset=value (for example --key 0s=g --key 120ms=go), or ` +
		`from the replay section of the configuration file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		script := cfg.Replay.Script
		if len(replayKeys) > 0 {
			var err error
			script, err = parseKeys(replayKeys)
			if err != nil {
				return err
			}
		}
		if len(script) == 0 {
			return fmt.Errorf("nothing to replay, pass --key or a config file with a replay script")
		}

		return replay(cmd.OutOrStdout(), cfg, script, logger)
	},
}

func init() {
	replayCmd.Flags().StringArrayVarP(&replayKeys, "key", "k", nil,
		"keystroke as offset=value, may be repeated")
}

// parseKeys parses keystrokes written as offset=value.
func parseKeys(keys []string) ([]config.Keystroke, error) {
	script := make([]config.Keystroke, 0, len(keys))

	var last time.Duration
	for _, k := range keys {
		offset, value, ok := strings.Cut(k, "=")
		if !ok {
			return nil, fmt.Errorf("invalid keystroke %q, want offset=value", k)
		}

		at, err := time.ParseDuration(offset)
		if err != nil {
			return nil, fmt.Errorf("invalid keystroke %q: %w", k, err)
		}
		if at < last {
			return nil, fmt.Errorf("keystroke %q is before the previous one", k)
		}
		last = at

		script = append(script, config.Keystroke{At: config.Duration(at), Value: value})
	}

	return script, nil
}

// timelineRow is one line of the replay output.
type timelineRow struct {
	at        time.Duration
	event     string
	realtime  string
	debounced string
	throttled string
}

// simulate drives a debounced and a throttled value with the script on a
// virtual clock and returns what happened, in order.
func simulate(
	cfg *config.Config,
	script []config.Keystroke,
	logger zerolog.Logger,
) ([]timelineRow, error) {
	start := time.Unix(0, 0).UTC()
	clock := vclock.New(start)

	var (
		rows      []timelineRow
		debounced *relaxed.Debounce[string]
		throttled *relaxed.Throttle[string]
		realtime  = cfg.Initial
	)

	record := func(event string) {
		rows = append(rows, timelineRow{
			at:        clock.Since(start),
			event:     event,
			realtime:  realtime,
			debounced: debounced.Value(),
			throttled: throttled.Value(),
		})
	}

	opts := append(cfg.DebounceOptions(),
		relaxed.WithLogger(logger),
		relaxed.OnChange(func(string) { record("debounced") }),
	)
	debounced = relaxed.NewDebounce(clock, cfg.Initial,
		time.Duration(cfg.Debounce.Delay), opts...)
	throttled = relaxed.NewThrottle(clock, cfg.Initial,
		time.Duration(cfg.Throttle.Interval),
		relaxed.WithLogger(logger),
		relaxed.OnChange(func(string) { record("throttled") }),
	)
	defer debounced.Dispose()
	defer throttled.Dispose()

	var failed error
	for _, k := range script {
		k := k
		_, err := clock.At(start.Add(time.Duration(k.At)), func() {
			realtime = k.Value
			record("typed")
			if err := debounced.Observe(k.Value); err != nil && failed == nil {
				failed = err
			}
			if err := throttled.Observe(k.Value); err != nil && failed == nil {
				failed = err
			}
		})
		if err != nil {
			return nil, err
		}
	}

	clock.RunAll()
	if failed != nil {
		return nil, failed
	}

	return rows, nil
}

func replay(
	w io.Writer,
	cfg *config.Config,
	script []config.Keystroke,
	logger zerolog.Logger,
) error {
	rows, err := simulate(cfg, script, logger)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Time", "Event", "Realtime", "Debounced", "Throttled"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.at, r.event, r.realtime, r.debounced, r.throttled})
	}
	t.Render()

	logger.Info().Int("rows", len(rows)).Msg("replay finished")

	return nil
}

package main

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	relaxed "github.com/romdo/go-relaxed"
	"github.com/romdo/go-relaxed/loop"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Type into a field and watch the debounced and throttled values.",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

const (
	rowRealtime = iota
	rowDebounced
	rowThrottled
)

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	lp := loop.New(loop.WithLogger(logger.With().Str("component", "loop").Logger()))
	loopDone := make(chan error, 1)
	go func() {
		loopDone <- lp.Run(ctx)
	}()

	app := tview.NewApplication()

	values := tview.NewTable().SetBorders(false)
	for row, label := range []string{"Realtime:", "Debounced:", "Throttled:"} {
		values.SetCell(row, 0, tview.NewTableCell(label).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold))
		values.SetCell(row, 1, tview.NewTableCell(cfg.Initial).SetExpansion(1))
	}

	show := func(row int) func(string) {
		return func(v string) {
			app.QueueUpdateDraw(func() {
				values.GetCell(row, 1).SetText(v)
			})
		}
	}

	var (
		debounced *relaxed.Debounce[string]
		throttled *relaxed.Throttle[string]
	)
	err := lp.Do(ctx, func() {
		opts := append(cfg.DebounceOptions(),
			relaxed.WithLogger(logger),
			relaxed.OnChange(show(rowDebounced)),
		)
		debounced = relaxed.NewDebounce(lp, cfg.Initial,
			time.Duration(cfg.Debounce.Delay), opts...)
		throttled = relaxed.NewThrottle(lp, cfg.Initial,
			time.Duration(cfg.Throttle.Interval),
			relaxed.WithLogger(logger),
			relaxed.OnChange(show(rowThrottled)),
		)
	})
	if err != nil {
		return err
	}

	input := tview.NewInputField().
		SetLabel("Type here: ").
		SetText(cfg.Initial).
		SetFieldWidth(0)
	input.SetChangedFunc(func(text string) {
		values.GetCell(rowRealtime, 1).SetText(text)

		err := lp.Post(func() {
			if err := debounced.Observe(text); err != nil {
				logger.Error().Err(err).Str("cell", debounced.ID()).Msg("debounce failed")
			}
			if err := throttled.Observe(text); err != nil {
				logger.Error().Err(err).Str("cell", throttled.ID()).Msg("throttle failed")
			}
		})
		if err != nil {
			logger.Warn().Err(err).Msg("dropped keystroke")
		}
	})
	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			app.Stop()
		}
	})

	dc := cfg.DebounceConfig()
	help := tview.NewTextView().
		SetDynamicColors(true).
		SetText("[gray]debounce " + dc.Delay.String() +
			", throttle " + time.Duration(cfg.Throttle.Interval).String() +
			". Esc or Ctrl+C to exit.")

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, true).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(values, 3, 0, false).
		AddItem(help, 1, 0, false)
	layout.SetBorder(true).SetTitle(" relaxed demo ")

	logger.Info().Msg("started ui")
	runErr := app.SetRoot(layout, true).SetFocus(input).Run()

	// Dispose on the loop so no publish races the shutdown.
	err = lp.Do(ctx, func() {
		debounced.Dispose()
		throttled.Dispose()
	})
	if err != nil {
		logger.Warn().Err(err).Msg("disposing cells")
	}
	lp.Close()

	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("loop stopped")
	}
	logger.Info().Msg("ui stopped")

	return runErr
}

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tebeka/atexit"
)

// openLog opens the log file, or returns io.Discard when path is empty. The
// file is closed on exit.
func openLog(path string) (io.Writer, error) {
	if path == "" {
		return io.Discard, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	atexit.Register(func() {
		_ = f.Close()
	})

	return f, nil
}

func setupLogging(out io.Writer, verbose bool) zerolog.Logger {
	if verbose || os.Getenv("RELAXED_VERBOSE") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Timestamps show the time elapsed since startup, which is what matters
	// when reading debounce timings.
	startTime := time.Now()

	writer := zerolog.ConsoleWriter{
		Out:     out,
		NoColor: false,
	}
	writer.FormatTimestamp = func(i any) string {
		elapsed := time.Since(startTime)

		minutes := int(elapsed.Minutes())
		seconds := int(elapsed.Seconds()) % 60
		millis := int(elapsed.Milliseconds()) % 1000

		return fmt.Sprintf("\x1b[90m[+%02d:%02d.%03d]\x1b[0m", minutes, seconds, millis)
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	log.Debug().Msg("verbose logging enabled")

	return log.Logger
}

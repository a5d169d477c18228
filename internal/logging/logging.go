// Package logging builds the zerolog logger handed to the solvers.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/san-kum/riccati/internal/config"
)

const app = "riccati"

// New returns a logger writing to stderr. See NewWriter.
func New(cfg config.Logging) zerolog.Logger {
	return NewWriter(os.Stderr, cfg)
}

// NewWriter builds a logger on w: a console writer with RFC3339 timestamps
// unless Format is "json". Level "disabled", an empty level or an
// unparsable one yields a no-op logger.
func NewWriter(w io.Writer, cfg config.Logging) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.Disabled || level == zerolog.NoLevel {
		return zerolog.Nop()
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("app", app).Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

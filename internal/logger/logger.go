// Package logger provides structured logging using zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/incometax/taxcalc/internal/calculation"
	"github.com/rs/zerolog"
)

// Log is the global logger instance. It writes to stderr so command output on
// stdout stays clean.
var Log zerolog.Logger

func init() {
	SetOutput(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetOutput replaces the destination of the global logger.
func SetOutput(w io.Writer) {
	Log = zerolog.New(w).
		With().
		Timestamp().
		Logger()
}

// SetLevel sets the global log level.
func SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// SetJSON switches to JSON output (for production).
func SetJSON() {
	SetOutput(os.Stderr)
}

// calcLogger adapts a zerolog.Logger to calculation.Logger.
type calcLogger struct {
	l zerolog.Logger
}

// Calculation returns a calculation.Logger that writes through Log tagged
// with the given component name.
func Calculation(component string) calculation.Logger {
	return calcLogger{l: Log.With().Str("component", component).Logger()}
}

func (c calcLogger) Debugf(format string, args ...any) { c.l.Debug().Msg(fmt.Sprintf(format, args...)) }
func (c calcLogger) Infof(format string, args ...any)  { c.l.Info().Msg(fmt.Sprintf(format, args...)) }
func (c calcLogger) Warnf(format string, args ...any)  { c.l.Warn().Msg(fmt.Sprintf(format, args...)) }
func (c calcLogger) Errorf(format string, args ...any) { c.l.Error().Msg(fmt.Sprintf(format, args...)) }

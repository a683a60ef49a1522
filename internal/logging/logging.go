// Package logging configures the stderr logger shared by the server and CLI.
//
// Stdout belongs to the MCP stdio transport, so nothing here ever writes
// to it.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Prefix is prepended to every log line.
const Prefix = "figma-mcp"

// Options configures a logger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New creates a logger writing to opts.Output (stderr by default).
func New(opts Options) (*log.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          Prefix,
		Level:           level,
	})
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// NewTestLogger creates a debug-level logger writing to a buffer, without
// timestamps so output can be asserted on.
func NewTestLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{
		Prefix: "test",
		Level:  log.DebugLevel,
	})
	return logger, &buf
}

// Redact hides all but the last four characters of a secret.
func Redact(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}

// RetryLogger adapts a charmbracelet logger to go-retryablehttp's
// LeveledLogger interface. Everything is demoted one level since retry
// chatter is rarely interesting.
type RetryLogger struct {
	Logger *log.Logger
}

func (l RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, keysAndValues...)
}

func (l RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, keysAndValues...)
}

func (l RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, keysAndValues...)
}

func (l RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, keysAndValues...)
}

// Package logger builds the process zerolog.Logger. Output goes to stderr by
// default because stdout carries the MCP stdio transport.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var timeFormatOnce sync.Once

// Config controls logger construction.
type Config struct {
	Level  string    // zerolog level name; empty means info
	Output io.Writer // defaults to os.Stderr
}

// New returns a JSON-lines logger with RFC3339Nano UTC timestamps.
func New(cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(cfg.Level); s != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logger: invalid level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	timeFormatOnce.Do(func() { zerolog.TimeFieldFormat = time.RFC3339Nano })
	l := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "tellermcp").
		Logger()
	return l, nil
}

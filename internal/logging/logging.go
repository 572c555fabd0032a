package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	// Level is a zerolog level name, info if empty.
	Level string
	// Format is console or json.
	Format string
	// Dir adds a log file in the directory, if empty only logs to stdout.
	Dir string
}

type closer func() error

func (c closer) Close() error { return c() }

// New creates a logger writing to out and, optionally, to a file in the log
// directory. The returned closer closes the log file.
func New(cfg Config, out io.Writer) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logging: invalid level %q: %w", cfg.Level, err)
		}
		level = l
	}

	switch cfg.Format {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Nop(), nil, fmt.Errorf("logging: invalid format %q", cfg.Format)
	}

	var f *os.File
	if cfg.Dir != "" {
		// Create directory if it doesn't exist
		if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logging: couldn't create log dir: %w", err)
		}
		filename := fmt.Sprintf("log_%s.txt", time.Now().Format("20060102_150405"))
		filename = filepath.Join(cfg.Dir, filename)
		var err error
		f, err = os.OpenFile(filename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("logging: couldn't open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, f)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer(func() error {
		if f == nil {
			return nil
		}
		return f.Close()
	}), nil
}

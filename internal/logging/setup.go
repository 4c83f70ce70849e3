package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Options configures the process logger.
type Options struct {
	Level  string // debug, info, warn, error
	File   string // empty means stderr
	Format string // text or json
	// ConfigFile points at a YAML file whose keys override the fields above.
	ConfigFile string
}

// fileConfig mirrors the YAML logging config file.
type fileConfig struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	Format    string `yaml:"format"`
	AddSource *bool  `yaml:"add_source"`
}

var setupOnce sync.Once

// Setup builds the process-wide slog logger and installs it as the default.
// Only the first call has any effect; later calls return the installed logger.
func Setup(opts Options) (*slog.Logger, error) {
	var err error
	setupOnce.Do(func() {
		var l *slog.Logger
		l, err = Build(opts)
		if err != nil {
			return
		}
		slog.SetDefault(l)
	})
	if err != nil {
		return nil, err
	}
	return slog.Default(), nil
}

// Build creates a logger from opts without touching the process default.
func Build(opts Options) (*slog.Logger, error) {
	addSource := true
	if opts.ConfigFile != "" {
		fc, err := readFileConfig(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		if fc.Level != "" {
			opts.Level = fc.Level
		}
		if fc.File != "" {
			opts.File = fc.File
		}
		if fc.Format != "" {
			opts.Format = fc.Format
		}
		if fc.AddSource != nil {
			addSource = *fc.AddSource
		}
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
	}

	return slog.New(newHandler(w, opts.Format, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	})), nil
}

func newHandler(w io.Writer, format string, ho *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}

func readFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading logging config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing logging config: %w", err)
	}
	return &fc, nil
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the shared log output.
type Options struct {
	// Level is a zerolog level name; empty means info, or debug when Debug is set.
	Level string
	// Debug switches stdout to a human readable console writer.
	Debug bool
	// File, when set, receives JSON logs in addition to stdout and is rotated
	// by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	baseMu sync.RWMutex
	base   = zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
)

// Setup configures the output shared by every logger created afterwards.
// The returned closer releases the log file, if any.
func Setup(opts Options) (io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	var stdout io.Writer = os.Stdout
	if opts.Debug || strings.HasPrefix(strings.ToLower(os.Getenv("APP_ENV")), "dev") {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	writers := []io.Writer{stdout}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("log dir: %w", err)
			}
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		writers = append(writers, lj)
		closer = lj
	}

	baseMu.Lock()
	defer baseMu.Unlock()
	base = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level)
	return closer, nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger on the shared output. All logs
// include the provided component field.
func NewZerologLogger(component string) Logger {
	baseMu.RLock()
	z := base.With().Timestamp().Str("component", component).Logger()
	baseMu.RUnlock()
	return &ZerologLogger{log: z}
}

// NewWriterLogger creates a ZerologLogger writing JSON to w at debug level.
func NewWriterLogger(w io.Writer, component string) Logger {
	z := zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

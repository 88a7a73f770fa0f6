package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogLevel names a verbosity as written in join definition files.
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Config selects where join logs go and how they look.
type Config struct {
	Level LogLevel
	// OutputPath is a log file, appended to. Empty means stderr.
	OutputPath string
	// Format is "json" or "text".
	Format string
	// Writer, when set, takes precedence over OutputPath.
	Writer io.Writer
}

// ParseLevel accepts level names in any case. An empty name is INFO.
func ParseLevel(s string) (LogLevel, error) {
	switch lvl := LogLevel(strings.ToUpper(strings.TrimSpace(s))); lvl {
	case "":
		return LevelInfo, nil
	case "WARNING":
		return LevelWarn, nil
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return lvl, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

func (l LogLevel) slogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// sink is the active logger together with the file it writes to, if any.
type sink struct {
	logger     *slog.Logger
	file       *os.File
	configured bool
}

var (
	mu     sync.Mutex
	active *sink
)

// Init installs the process logger. It fails if a logger configured by Init
// is already installed; Close it first.
//
//	logging.Init(logging.Config{Level: logging.LevelDebug, Format: "json"})
func Init(config Config) error {
	mu.Lock()
	defer mu.Unlock()

	if active != nil && active.configured {
		return errors.New("logger already initialized; call Close first")
	}

	s := &sink{configured: true}
	w := config.Writer
	if w == nil {
		if config.OutputPath == "" {
			w = os.Stderr
		} else {
			if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o750); err != nil {
				return err
			}
			f, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return err
			}
			w, s.file = f, f
		}
	}

	opts := &slog.HandlerOptions{Level: config.Level.slogLevel()}
	if strings.EqualFold(config.Format, "json") {
		s.logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		s.logger = slog.New(slog.NewTextHandler(w, opts))
	}
	active = s
	return nil
}

// fallback is used until Init is called: INFO and above, as text, on stderr.
var fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// InitDefault installs the fallback logger unless one is already installed.
func InitDefault() {
	mu.Lock()
	defer mu.Unlock()
	if active == nil {
		active = &sink{logger: fallback}
	}
}

// Close removes the installed logger and closes its log file. Closing twice is
// harmless.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	s := active
	active = nil
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// GetLogger returns the installed logger, or the fallback before Init.
func GetLogger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if active == nil {
		return fallback
	}
	return active.logger
}

func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }

func Info(msg string, args ...any) { GetLogger().Info(msg, args...) }

func Warn(msg string, args ...any) { GetLogger().Warn(msg, args...) }

func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }

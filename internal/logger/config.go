package logger

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogConfig holds the logging configuration. Values come from LOG_* env
// vars with defaults suitable for development.
type LogConfig struct {
	Level      string // trace|debug|info|warn|error
	Format     string // text|json
	Output     string // stdout|file|both
	LogPath    string // directory for log files, relative to the project root
	AppFile    string
	AuditFile  string
	ErrorFile  string
	MaxSize    int  // MB per file before rotation
	MaxBackups int  // rotated files to keep
	MaxAge     int  // days to keep rotated files
	Compress   bool // gzip rotated files

	// ExcludeMessages drops entries whose message contains any of these
	// substrings. Used to silence noisy framework output.
	ExcludeMessages []string
}

// DefaultConfig returns the logging defaults, overridable via LOG_* env vars.
func DefaultConfig() *LogConfig {
	cfg := &LogConfig{
		Level:      envOr("LOG_LEVEL", "info"),
		Format:     envOr("LOG_FORMAT", "text"),
		Output:     envOr("LOG_OUTPUT", "stdout"),
		LogPath:    envOr("LOG_PATH", "logs"),
		AppFile:    "app.log",
		AuditFile:  "audit.log",
		ErrorFile:  "error.log",
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}

	if v := os.Getenv("LOG_MAX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSize = n
		}
	}
	if v := os.Getenv("LOG_EXCLUDE_MESSAGES"); v != "" {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cfg.ExcludeMessages = append(cfg.ExcludeMessages, part)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// FilterHook marks entries matching the exclude list so the async hook
// skips them. It runs before AsyncHook, which means filtered entries
// never occupy the async buffer.
type FilterHook struct {
	exclude []string
}

// NewFilterHook creates a filter hook from the config's exclude list.
func NewFilterHook(cfg *LogConfig) *FilterHook {
	return &FilterHook{exclude: cfg.ExcludeMessages}
}

// Levels returns the levels this hook applies to.
func (h *FilterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire marks matching entries with the internal _filtered field. Hooks
// cannot cancel an entry, so the marker is checked downstream instead.
func (h *FilterHook) Fire(entry *logrus.Entry) error {
	for _, pattern := range h.exclude {
		if strings.Contains(entry.Message, pattern) {
			entry.Data["_filtered"] = true
			return nil
		}
	}
	return nil
}

// package shared defines shared helpers
package shared

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a [log.Logger] writing to w (default [os.Stderr]) with a "spotbak" prefix and
// short timestamps.
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "spotbak",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the level of l. Caller reporting is only turned on at debug level.
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
	l.SetReportCaller(ll <= log.DebugLevel)
}

// ParseLogLevel maps a config value ("debug", "info", ...) to a [log.Level].
// Unknown or empty values fall back to [log.InfoLevel].
func ParseLogLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// DiscardLogger returns a logger that drops everything, used as the default for library types.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

package shared

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseTimestamp(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "rfc3339 utc",
			input: "2024-03-01T10:20:30Z",
			want:  time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC),
		},
		{
			name:  "rfc3339 with offset",
			input: "2024-03-01T12:20:30+02:00",
			want:  time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC),
		},
		{
			name:  "date only",
			input: "2019-07-04",
			want:  time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("expected UTC location, got %v", got.Location())
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		for _, input := range []string{"", "   ", "yesterday"} {
			if _, err := ParseTimestamp(input); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParseTimestamp(%q) expected ErrInvalidInput, got %v", input, err)
			}
		}
	})
}

func TestFieldError(t *testing.T) {
	err := fmt.Errorf("create album: %w", MissingField("album", "name"))

	if !errors.Is(err, ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatal("expected errors.As to find *FieldError")
	}
	if fe.Kind != "album" || fe.Field != "name" {
		t.Errorf("unexpected field error %+v", fe)
	}
	if IsSkippable(err) {
		t.Error("missing field must not be skippable")
	}
	if !IsSkippable(fmt.Errorf("wrap: %w", ErrInvalidIdentity)) {
		t.Error("invalid identity should be skippable")
	}
}

func TestParseLogLevel(t *testing.T) {
	if got := ParseLogLevel("DEBUG"); got != log.DebugLevel {
		t.Errorf("expected debug level, got %v", got)
	}
	if got := ParseLogLevel("nonsense"); got != log.InfoLevel {
		t.Errorf("expected info fallback, got %v", got)
	}
}

func TestOpenBrowserUnsupported(t *testing.T) {
	original := getRuntime
	defer func() { getRuntime = original }()
	getRuntime = func() string { return "plan9" }

	if err := OpenBrowser("http://localhost"); err == nil {
		t.Fatal("expected error for unsupported platform")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	SetLogLevel(logger, ParseLogLevel("warn"))
	logger.Info("hidden")
	logger.Warn("shown", "kind", "album")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "spotbak") || !strings.Contains(out, "kind=album") {
		t.Errorf("unexpected log line %q", out)
	}

	SetLogLevel(logger, ParseLogLevel(" DEBUG "))
	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("expected debug level, got %v", logger.GetLevel())
	}
	if ParseLogLevel("chatty") != log.InfoLevel {
		t.Error("expected unknown level to fall back to info")
	}
}

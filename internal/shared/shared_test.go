package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalizeTerm(t *testing.T) {
	tc := []struct {
		name string
		term string
		want string
	}{
		{name: "already normalized", term: "lofi beats", want: "lofi beats"},
		{name: "extra whitespace", term: "  lofi   beats  ", want: "lofi beats"},
		{name: "tabs and newlines", term: "\tsolo\npiano\n", want: "solo piano"},
		{name: "empty", term: "   ", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTerm(tt.term); got != tt.want {
				t.Errorf("NormalizeTerm() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTermKey(t *testing.T) {
	if TermKey("  JaZZ ") != TermKey("jazz") {
		t.Errorf("expected case-insensitive keys to match, got %q and %q", TermKey("  JaZZ "), TermKey("jazz"))
	}
}

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		in   string
		want log.Level
	}{
		{in: "", want: log.InfoLevel},
		{in: "debug", want: log.DebugLevel},
		{in: "WARN", want: log.WarnLevel},
		{in: "nonsense", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "swipebeats.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("written")

		if !strings.Contains(mustRead(t, path), "written") {
			t.Error("expected log file to contain message")
		}
	})
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New(Options{Level: "info", Format: "json", Output: &buf})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		l.Info("room analyzed", "safety_score", 85.0)

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
		}
		if rec["msg"] != "room analyzed" || rec["safety_score"] != 85.0 {
			t.Errorf("unexpected record: %v", rec)
		}
	})

	t.Run("auto is json for non-terminals", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New(Options{Format: "auto", Output: &buf})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		l.Info("hello")
		if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
			t.Errorf("expected JSON output, got %q", buf.String())
		}
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New(Options{Level: "warn", Format: "text", Output: &buf})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		l.Info("hidden")
		l.Warn("shown")
		if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := New(Options{Format: "xml"}); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Level: "debug", Format: "text", Output: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Init(Options{Output: &bytes.Buffer{}})

	Debug("frame skipped", "reason", "no pose")
	With("session", "abc").Info("pattern selected")

	out := buf.String()
	if !strings.Contains(out, "frame skipped") || !strings.Contains(out, "session=abc") {
		t.Errorf("unexpected output: %q", out)
	}
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestInit_JSONFormat(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})

	Info("evaluation started", "rules", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output: %v", err)
	}
	if entry["msg"] != "evaluation started" {
		t.Errorf("expected msg 'evaluation started', got %v", entry["msg"])
	}
	if entry["rules"] != float64(3) {
		t.Errorf("expected rules=3, got %v", entry["rules"])
	}
}

func TestInit_TextFormat(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "text", Output: &buf})

	Warn("cooldown active")

	if !strings.Contains(buf.String(), "cooldown active") {
		t.Errorf("expected text output to contain message, got %q", buf.String())
	}
}

func TestInit_LevelFiltering(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "text", Output: &buf})

	Debug("invisible")
	Info("also invisible")
	Error("visible")

	out := buf.String()
	if strings.Contains(out, "invisible") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("expected error to pass, got %q", out)
	}
}

func TestInit_OnlyFirstCallTakesEffect(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Config{Format: "text", Output: &first})
	Init(Config{Format: "text", Output: &second})

	Info("hello")

	if first.Len() == 0 {
		t.Error("expected first writer to receive output")
	}
	if second.Len() != 0 {
		t.Error("expected second Init to be a no-op")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithContext_Enrichment(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})

	ctx := SetRequestID(context.Background(), "req_123")
	ctx = SetRunID(ctx, "run_456")
	ctx = SetUnit(ctx, "alert.evaluate")

	WithContext(ctx).Info("working")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output: %v", err)
	}
	if entry["request_id"] != "req_123" {
		t.Errorf("expected request_id, got %v", entry["request_id"])
	}
	if entry["run_id"] != "run_456" {
		t.Errorf("expected run_id, got %v", entry["run_id"])
	}
	if entry["unit"] != "alert.evaluate" {
		t.Errorf("expected unit, got %v", entry["unit"])
	}
}

func TestGetRequestID_Roundtrip(t *testing.T) {
	ctx := SetRequestID(context.Background(), "req_abc")
	if got := GetRequestID(ctx); got != "req_abc" {
		t.Errorf("expected 'req_abc', got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
}

func TestGetRunID_Roundtrip(t *testing.T) {
	ctx := SetRunID(context.Background(), "run_abc")
	if got := GetRunID(ctx); got != "run_abc" {
		t.Errorf("expected 'run_abc', got %q", got)
	}
}

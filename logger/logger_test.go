package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func jsonLogger(level string, buf *bytes.Buffer) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "test", buf)
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger("invalid-level", &buf)
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at the fallback warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn should be written")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger("debug", &buf)
	l.Debug("attempt sent", Fields(FieldAttempt, 1))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "attempt sent" {
		t.Errorf("unexpected message %v", entry["message"])
	}
	if entry["level"] != "debug" {
		t.Errorf("unexpected level %v", entry["level"])
	}
	if entry[FieldAttempt] != float64(1) {
		t.Errorf("expected attempt=1, got %v", entry[FieldAttempt])
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger("info", &buf).WithComponent("auth")
	l.Info("hello")
	if !strings.Contains(buf.String(), `"component":"auth"`) {
		t.Errorf("expected component field, got %q", buf.String())
	}
}

func TestWithContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := jsonLogger("info", &buf)

	if got := base.WithContext(context.Background()); got != base {
		t.Error("expected the same logger when the context carries no request ID")
	}

	ctx := ContextWithRequestID(context.Background(), "req-42")
	if RequestIDFromContext(ctx) != "req-42" {
		t.Fatal("request id not stored")
	}
	base.WithContext(ctx).Info("with id")
	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Errorf("expected request_id field, got %q", buf.String())
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger("info", &buf).
		WithFields(Fields(FieldHost, "turingpi.local")).
		WithError(errors.New("boom"))
	l.Error("failed")
	out := buf.String()
	if !strings.Contains(out, `"host":"turingpi.local"`) {
		t.Errorf("missing host field: %q", out)
	}
	if !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("missing error field: %q", out)
	}
}

func TestInitAndGlobal(t *testing.T) {
	prev := globalLogger
	defer func() { globalLogger = prev }()

	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected lazily created global logger")
	}

	Init(Config{Level: "debug", Format: "json"})
	if globalLogger == nil || globalLogger.service != "tpi" {
		t.Fatal("Init should install a tpi logger")
	}

	var buf bytes.Buffer
	SetGlobalLogger(jsonLogger("debug", &buf))
	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	WithComponent("cli").Info("c")
	WithContext(context.Background()).Info("x")
	if lines := strings.Count(buf.String(), "\n"); lines != 6 {
		t.Errorf("expected 6 log lines, got %d: %q", lines, buf.String())
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "warn", Format: "console", NoColor: true}, "tpi", &buf)
	l.Warn("cache write failed", Fields(FieldPath, "/tmp/x"))
	out := buf.String()
	if !strings.Contains(out, "[WRN]") {
		t.Errorf("expected level tag, got %q", out)
	}
	if !strings.Contains(out, "path:/tmp/x") {
		t.Errorf("expected formatted field, got %q", out)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "warn" || cfg.Format != "console" || cfg.Output != "stderr" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	custom := Config{Level: "debug", Format: "json", Output: "stdout"}
	custom.ApplyDefaults()
	if custom.Level != "debug" || custom.Format != "json" || custom.Output != "stdout" {
		t.Errorf("defaults should not override explicit values: %+v", custom)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"pretty", Config{Level: "debug", Format: "pretty"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(f) != 2 || f["a"] != 1 || f["b"] != "two" {
		t.Errorf("unexpected fields %v", f)
	}

	ef := ErrorFields("login", errors.New("denied"))
	if ef[FieldOperation] != "login" || ef[FieldError] != "denied" {
		t.Errorf("unexpected error fields %v", ef)
	}

	df := DurationFields("send", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration %v", df[FieldDuration])
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: level, Format: "json"}, "test-svc", &buf)
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("LOG_FORMAT")

	if l := NewFromEnv("env-svc"); l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestLogger_JSONFields(t *testing.T) {
	l, buf := newJSONLogger(t, "debug")
	l.WithComponent("dag").Debug("node ready", Fields(FieldNode, "green", FieldBatchIndex, 2))

	m := decodeLine(t, buf)
	if m["message"] != "node ready" {
		t.Errorf("unexpected message %v", m["message"])
	}
	if m[FieldComponent] != "dag" {
		t.Errorf("expected component=dag, got %v", m[FieldComponent])
	}
	if m[FieldNode] != "green" {
		t.Errorf("expected node=green, got %v", m[FieldNode])
	}
	if m[FieldService] != "test-svc" {
		t.Errorf("expected service field, got %v", m[FieldService])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	l, buf := newJSONLogger(t, "warn")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	l.Warn("shown")
	if decodeLine(t, buf)["level"] != "warn" {
		t.Error("expected warn level line")
	}
}

func TestLogger_WithError(t *testing.T) {
	l, buf := newJSONLogger(t, "info")
	l.WithError(errors.New("boom")).Error("failed")
	if decodeLine(t, buf)["error"] != "boom" {
		t.Error("expected error field")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("ignored", Fields("k", "v"))
	l.WithComponent("x").Debug("ignored")
}

func TestFieldsHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("unexpected fields %v", f)
	}
	ef := ErrorFields("save", errors.New("x"))
	if ef[FieldOperation] != "save" || ef[FieldError] != "x" {
		t.Errorf("unexpected error fields %v", ef)
	}
	df := DurationFields("build", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration fields %v", df)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid format error")
	}
}

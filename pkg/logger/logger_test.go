package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud", Format: "json", Output: "stdout"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestJSONOutputIncludesFields(t *testing.T) {
	log, err := New(Config{Level: "debug", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.WithField("component", "demo").Infof("hello %s", "world")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["msg"] != "hello world" {
		t.Fatalf("expected message %q, got %v", "hello world", entry["msg"])
	}
	if entry["component"] != "demo" {
		t.Fatalf("expected component field, got %v", entry["component"])
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	log := NewNop()
	child := log.WithField("a", 1)
	child.WithField("b", 2)

	if len(log.fields) != 0 {
		t.Fatalf("parent fields mutated: %v", log.fields)
	}
	if len(child.fields) != 1 {
		t.Fatalf("expected 1 field on child, got %v", child.fields)
	}
}

func TestLevelFiltering(t *testing.T) {
	log, err := New(Config{Level: "warn", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info line should be filtered at warn level, got %q", buf.String())
	}
	log.Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("warn line should be emitted")
	}
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "trace-1")
	if got := TraceIDFromContext(ctx); got != "trace-1" {
		t.Fatalf("expected trace-1, got %q", got)
	}
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty trace ID, got %q", got)
	}
}

func TestLogRequestIncludesTraceID(t *testing.T) {
	log, err := New(Config{Level: "info", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	var buf bytes.Buffer
	log.SetOutput(&buf)

	ctx := WithTraceID(context.Background(), "trace-9")
	log.LogRequest(ctx, "GET", "/ping", 200, 12*time.Millisecond)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["method"] != "GET" || entry["path"] != "/ping" {
		t.Fatalf("unexpected request fields: %v", entry)
	}
	if entry["status"] != float64(200) {
		t.Fatalf("expected status 200, got %v", entry["status"])
	}
	if entry["trace_id"] != "trace-9" {
		t.Fatalf("expected trace_id, got %v", entry["trace_id"])
	}
}

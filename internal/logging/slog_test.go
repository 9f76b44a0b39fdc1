package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func newBufLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return m
}

func TestSlogLogger_InfoWritesMessageAndAttrs(t *testing.T) {
	log, buf := newBufLogger(slog.LevelInfo)

	log.Info(context.Background(), "sweep finished", "transitions", 3)

	m := decodeLine(t, buf)
	if m["msg"] != "sweep finished" {
		t.Errorf("unexpected msg: %v", m["msg"])
	}
	if m["transitions"] != float64(3) {
		t.Errorf("unexpected transitions attr: %v", m["transitions"])
	}
}

func TestSlogLogger_DebugSuppressedAtInfoLevel(t *testing.T) {
	log, buf := newBufLogger(slog.LevelInfo)

	log.Debug(context.Background(), "noise")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSlogLogger_WithAddsPersistentAttrs(t *testing.T) {
	log, buf := newBufLogger(slog.LevelInfo)

	child := log.With("module", "sweeper")
	child.Warn(context.Background(), "user skipped")

	m := decodeLine(t, buf)
	if m["module"] != "sweeper" {
		t.Errorf("expected module attr, got %v", m)
	}
}

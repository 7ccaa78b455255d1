//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"yakmarket-admin-bot/internal/config"
)

func TestWithAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := newWithWriter(config.LogConfig{Level: "info", Format: "json"}, false, &buf)

	ctx := WithTraceID(context.Background(), "abc")
	ctx = WithTgID(ctx, 42)
	ctx = WithEntityID(ctx, "17")
	With(ctx, base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json log line, but got: %v (%q)", err, buf.String())
	}
	if line["trace_id"] != "abc" || line["entity_id"] != "17" || line["tg_id"] != float64(42) {
		t.Errorf("missing context fields: %v", line)
	}
	if TraceID(ctx) != "abc" {
		t.Errorf("expected trace id abc, got %q", TraceID(ctx))
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("123456:ABCDEFGHIJ", false); got != "1234...IJ" {
		t.Errorf("unexpected redaction %q", got)
	}
	if got := Redact("short", false); got != "***" {
		t.Errorf("unexpected redaction %q", got)
	}
	if got := Redact("visible", true); got != "visible" {
		t.Errorf("dev mode should not redact, got %q", got)
	}
}

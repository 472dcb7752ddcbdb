package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDefaultLoggerWritesStructuredField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := S
	S = zap.New(core).Sugar()
	defer func() { S = prev }()

	Default().WarnObj("request failed", "request_error", map[string]any{"label": "create user"})

	entries := logs.FilterMessage("request failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected level %v", entries[0].Level)
	}
	if _, ok := entries[0].ContextMap()["request_error"]; !ok {
		t.Fatalf("missing request_error field: %#v", entries[0].ContextMap())
	}
}

func TestHelpersNoopBeforeInit(t *testing.T) {
	prev := S
	S = nil
	defer func() { S = prev }()

	InfoObj("ignored", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close without init: %v", err)
	}
}

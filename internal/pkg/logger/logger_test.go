package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	ctx := With(context.Background(), "country", "CHILE")
	Warnf(ctx, "dropped %d workspaces", 2)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "dropped 2 workspaces" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
	if got := entries[0].ContextMap()["country"]; got != "CHILE" {
		t.Errorf("expected country field CHILE, got %v", got)
	}
}

func TestBareContextUsesGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Info(context.Background(), "ok")
	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
}

package logger

import (
	"context"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	l := Get()
	if l == nil {
		t.Fatal("logger is nil after initialization")
	}

	ctx := context.Background()
	l.Info(ctx, "test message", String("k", "v"))
	l.Debug(ctx, "debug message", Int("n", 1))
	l.Warn(ctx, "warn message", Float64("f", 1.5))
	l.Error(ctx, "error message", Bool("b", true))

	named := l.Named("sub")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(ctx, "named message", Any("v", struct{}{}))
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("SetLevelString(%q) returned error: %v", lvl, err)
		}
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/mohammad-safakhou/skimmer/config"
)

func TestNewHonoursLevel(t *testing.T) {
	logger, err := New(config.GeneralConfig{LogLevel: "warn"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("error should be enabled at warn level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.GeneralConfig{LogLevel: "chatty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

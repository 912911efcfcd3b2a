package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies LOG_LEVEL strings map to levels with WARN as the
// interactive default.
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"DEBUG", zapcore.DebugLevel},
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"ERROR", zapcore.ErrorLevel},
		{" warn ", zapcore.WarnLevel},
		{"", zapcore.WarnLevel},
		{"garbage", zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input).Level(); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestNewLogger verifies logger construction succeeds.
func TestNewLogger(t *testing.T) {
	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger() returned nil logger")
	}
	_ = logger.Sync()
}

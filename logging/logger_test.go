package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	buffer, cleanup := CaptureLog(t, LogLevelInfo)
	defer cleanup()

	Debug("This should not appear")
	Info("This should appear")
	Warn("This warning should appear")
	Error("This error should appear")

	logs := buffer.String()
	assert.NotContains(t, logs, "This should not appear")
	AssertLogContains(t, logs, "This should appear")
	AssertLogContains(t, logs, "This warning should appear")
	AssertLogContains(t, logs, "This error should appear")
	AssertLogContains(t, logs, "level=WARN")
}

func TestLoggerOff(t *testing.T) {
	buffer, cleanup := CaptureLog(t, LogLevelOff)
	defer cleanup()

	Error("dropped")
	assert.Empty(t, buffer.String())
}

func TestQuietTest(t *testing.T) {
	defer QuietTest(t)()
	assert.Equal(t, LogLevelOff, GetLogLevel())
	Info("Info message")
}

func TestVerboseTestRestoresLevel(t *testing.T) {
	before := GetLogLevel()
	restore := VerboseTest(t)
	if testing.Verbose() {
		assert.Equal(t, LogLevelDebug, GetLogLevel())
	}
	restore()
	assert.Equal(t, before, GetLogLevel())
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		hasError bool
	}{
		{"DEBUG", LogLevelDebug, false},
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"WARN", LogLevelWarn, false},
		{"WARNING", LogLevelWarn, false},
		{"ERROR", LogLevelError, false},
		{"OFF", LogLevelOff, false},
		{"NONE", LogLevelOff, false},
		{" warn ", LogLevelWarn, false},
		{"INVALID", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
			if !tt.hasError {
				assert.Equal(t, tt.expected == LogLevelOff, level.String() == "OFF")
			}
		})
	}
}

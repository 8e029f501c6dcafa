package logging

import (
	"bytes"
	"strings"
	"testing"
)

// QuietTest turns the default logger off until the returned func runs.
//
//	defer QuietTest(t)()
func QuietTest(t *testing.T) func() {
	t.Helper()
	old := GetLogLevel()
	SetLogLevel(LogLevelOff)
	return func() { SetLogLevel(old) }
}

// CaptureLog swaps in a default logger writing to the returned buffer.
func CaptureLog(t *testing.T, level LogLevel) (*bytes.Buffer, func()) {
	t.Helper()
	buf := &bytes.Buffer{}
	old := SetDefault(NewLogger(buf, level))
	return buf, func() { SetDefault(old) }
}

// VerboseTest raises the default logger to Debug under `go test -v`.
func VerboseTest(t *testing.T) func() {
	t.Helper()
	old := GetLogLevel()
	if testing.Verbose() {
		SetLogLevel(LogLevelDebug)
	}
	return func() { SetLogLevel(old) }
}

func AssertLogContains(t *testing.T, logs string, expected string) {
	t.Helper()
	if !strings.Contains(logs, expected) {
		t.Errorf("log does not contain %q:\n%s", expected, logs)
	}
}

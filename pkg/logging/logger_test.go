package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// TestNilLogger tests that a nil logger is safe to use.
func TestNilLogger(t *testing.T) {
	var logger *Logger
	logger.Error(errors.New("error"))
	logger.Warnf("warning %d", 1)
	logger.Info("info")
	logger.Debugf("debug %s", "message")
	logger.Trace("trace")
	if logger.Sublogger("child") != nil {
		t.Error("sublogger of nil logger is non-nil")
	}
	if logger.Level() != LevelDisabled {
		t.Error("nil logger reports non-disabled level")
	}
	if _, err := logger.Writer(LevelInfo).Write([]byte("discarded\n")); err != nil {
		t.Error("unable to write to nil logger writer:", err)
	}
}

// TestLoggerLevelFiltering tests that messages above the logger's level are
// suppressed.
func TestLoggerLevelFiltering(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := NewLogger(LevelInfo, buffer)

	logger.Info("visible info")
	logger.Debug("hidden debug")
	logger.Tracef("hidden %s", "trace")
	logger.Warnf("visible %s", "warning")

	output := buffer.String()
	if !strings.Contains(output, "visible info") {
		t.Error("info message missing from output")
	}
	if !strings.Contains(output, "Warning: visible warning") {
		t.Error("warning message missing from output")
	}
	if strings.Contains(output, "hidden") {
		t.Error("output contains message above logger level")
	}
}

// TestSubloggerPrefix tests that subloggers nest their prefixes.
func TestSubloggerPrefix(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := NewLogger(LevelDebug, buffer).Sublogger("watching").Sublogger("tree")

	logger.Debug("expanded")

	if !strings.Contains(buffer.String(), "[watching.tree] expanded") {
		t.Error("sublogger output missing nested prefix:", buffer.String())
	}
}

// TestLoggerWriter tests that the line-splitting writer emits complete lines
// only.
func TestLoggerWriter(t *testing.T) {
	buffer := &bytes.Buffer{}
	writer := NewLogger(LevelInfo, buffer).Writer(LevelInfo)

	if _, err := writer.Write([]byte("first\r\nsec")); err != nil {
		t.Fatal("unable to write:", err)
	}
	if strings.Contains(buffer.String(), "sec") {
		t.Error("incomplete line was emitted")
	}
	if _, err := writer.Write([]byte("ond\n")); err != nil {
		t.Fatal("unable to write:", err)
	}

	output := buffer.String()
	if !strings.Contains(output, "first") || !strings.Contains(output, "second") {
		t.Error("writer output missing lines:", output)
	}
	if strings.Contains(output, "\r") {
		t.Error("carriage return was not trimmed")
	}
}

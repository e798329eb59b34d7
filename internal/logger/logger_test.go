package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{name: "development", env: "development"},
		{name: "production", env: "production"},
		{name: "test", env: "test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.env)
			if logger == nil {
				t.Fatal("Expected logger to be created")
			}
		})
	}
}

func TestDebug(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	logger.Debug("debug message", map[string]interface{}{
		"key1": "value1",
		"key2": 42,
	})

	output := buf.String()
	if !strings.Contains(output, "debug message") {
		t.Error("Expected log output to contain message")
	}
	if !strings.Contains(output, "value1") {
		t.Error("Expected log output to contain field value")
	}
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	logger.Info("info message", map[string]interface{}{
		"area_hectares": 42.5,
		"image_count":   7,
	})

	output := buf.String()
	if !strings.Contains(output, "info message") {
		t.Error("Expected log output to contain message")
	}
	if !strings.Contains(output, "area_hectares") {
		t.Error("Expected log output to contain field key")
	}
}

func TestWarn(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	logger.Warn("warning message", map[string]interface{}{
		"reason": "geometry rejected",
	})

	output := buf.String()
	if !strings.Contains(output, "warning message") {
		t.Error("Expected log output to contain message")
	}
	if !strings.Contains(output, "geometry rejected") {
		t.Error("Expected log output to contain reason field")
	}
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	testErr := errors.New("test error")
	logger.Error("error occurred", testErr, map[string]interface{}{
		"context": "provider",
	})

	output := buf.String()
	if !strings.Contains(output, "error occurred") {
		t.Error("Expected log output to contain message")
	}
	if !strings.Contains(output, "test error") {
		t.Error("Expected log output to contain error message")
	}
	if !strings.Contains(output, "provider") {
		t.Error("Expected log output to contain context field")
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	childLogger := logger.With(map[string]interface{}{
		"component": "analysis",
		"version":   "0.1.0",
	})

	childLogger.Info("test message", nil)

	output := buf.String()
	if !strings.Contains(output, "analysis") {
		t.Error("Expected log output to contain component field from context")
	}
	if !strings.Contains(output, "0.1.0") {
		t.Error("Expected log output to contain version field from context")
	}
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	requestID := "req-12345"
	childLogger := logger.WithRequestID(requestID)

	childLogger.Info("request received", nil)

	output := buf.String()
	if !strings.Contains(output, requestID) {
		t.Error("Expected log output to contain request ID")
	}
	if !strings.Contains(output, "request_id") {
		t.Error("Expected log output to have request_id field")
	}
}

func TestLogLevels_Production(t *testing.T) {
	var buf bytes.Buffer

	zlog := zerolog.New(&buf).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	// Debug should not appear at info level
	logger.Debug("debug message", nil)
	debugOutput := buf.String()

	buf.Reset()

	logger.Info("info message", nil)
	infoOutput := buf.String()

	if strings.Contains(debugOutput, "debug message") {
		t.Error("Debug message should not appear at info level")
	}
	if !strings.Contains(infoOutput, "info message") {
		t.Error("Info message should appear at info level")
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	logger.Info("test json", map[string]interface{}{
		"key": "value",
	})

	output := buf.String()

	var logEntry map[string]interface{}
	err := json.Unmarshal([]byte(output), &logEntry)
	if err != nil {
		t.Errorf("Expected valid JSON output, got error: %v", err)
	}

	if logEntry["message"] != "test json" {
		t.Error("Expected JSON to contain message field")
	}
}

func TestNilFields(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).With().Timestamp().Logger()
	logger := &Logger{zlog: zlog}

	// Should not panic with nil fields
	logger.Info("message with nil fields", nil)

	output := buf.String()
	if !strings.Contains(output, "message with nil fields") {
		t.Error("Expected message to be logged even with nil fields")
	}
}

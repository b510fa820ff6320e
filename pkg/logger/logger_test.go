package logger

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"hubexport/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"ERROR", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, test := range tests {
		level, err := parseLogLevel(test.input)
		if test.wantErr {
			if err == nil {
				t.Errorf("parseLogLevel(%q) expected error", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseLogLevel(%q) unexpected error: %v", test.input, err)
		}
		if level != test.expected {
			t.Errorf("parseLogLevel(%q) = %v, expected %v", test.input, level, test.expected)
		}
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "chatty"})
	if err == nil {
		t.Error("Expected error for unknown log level")
	}
}

func TestTestLoggerCapture(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("export started")
	tl.WithField("resource", "companies").Warn("cursor unchanged")
	tl.WithError(errors.New("boom")).Error("request failed")

	if !tl.HasMessage("export started") {
		t.Error("Expected captured info message")
	}

	warns := tl.MessagesByLevel("WARN")
	if len(warns) != 1 {
		t.Fatalf("Expected 1 warn message, got %d", len(warns))
	}
	if warns[0].Fields["resource"] != "companies" {
		t.Errorf("Expected resource field, got %v", warns[0].Fields)
	}

	errs := tl.MessagesByLevel("ERROR")
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error message, got %d", len(errs))
	}
	if errs[0].Error == nil || errs[0].Error.Error() != "boom" {
		t.Errorf("Expected captured error, got %v", errs[0].Error)
	}
}

func TestTestLoggerMergesDerivedFields(t *testing.T) {
	tl := NewTestLogger()

	derived := tl.WithField("resource", "contacts")
	derived.InfoWithFields("page persisted", map[string]interface{}{"records": 100})

	messages := tl.Messages()
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	fields := messages[0].Fields
	if fields["resource"] != "contacts" || fields["records"] != 100 {
		t.Errorf("Expected merged fields, got %v", fields)
	}
}

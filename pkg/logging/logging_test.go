package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		// Lowercase
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},

		// Uppercase
		{"DEBUG", LevelDebug},
		{"INFO", LevelInfo},
		{"WARN", LevelWarn},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},

		// Mixed case (the fix: these should all work now)
		{"Debug", LevelDebug},
		{"Info", LevelInfo},
		{"Warn", LevelWarn},
		{"Warning", LevelWarn},
		{"Error", LevelError},
		{"dEbUg", LevelDebug},

		// Empty string defaults to Info
		{"", LevelInfo},

		// Unrecognized defaults to Info
		{"trace", LevelInfo},
		{"fatal", LevelInfo},
		{"unknown", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"Json", FormatJSON},
		{"text", FormatText},
		{"TEXT", FormatText},
		{"", FormatText},
		{"yaml", FormatText}, // unrecognized defaults to text
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseFormat(tt.input)
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNew_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Format: FormatText, Output: &buf})

	logger.Info("login", "email", "a@b.co", "password", "hunter22", "access_token", "tok")

	out := buf.String()
	if strings.Contains(out, "hunter22") || strings.Contains(out, "access_token=tok") {
		t.Fatalf("secret leaked: %s", out)
	}
	if !strings.Contains(out, "email=a@b.co") {
		t.Errorf("expected email attribute, got %s", out)
	}
	for _, want := range []string{"password=" + Masked, "access_token=" + Masked} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %s", want, out)
		}
	}
}

func TestNew_FileReceivesJSON(t *testing.T) {
	var console, file bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: &console, File: &file})

	logger.Debug("hidden")
	logger.Info("fetched", "kind", "module", "total", 3)

	if strings.Contains(console.String(), "hidden") || strings.Contains(file.String(), "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(console.String(), "kind=module") {
		t.Errorf("console missing record: %s", console.String())
	}

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(file.Bytes()), &rec); err != nil {
		t.Fatalf("file line is not JSON: %v (%s)", err, file.String())
	}
	if rec["msg"] != "fetched" || rec["kind"] != "module" {
		t.Errorf("unexpected file record: %v", rec)
	}
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
	)
	slog.New(h).With("store", "quiz").Info("refresh")

	for i, buf := range []*bytes.Buffer{&a, &b} {
		if !strings.Contains(buf.String(), "store=quiz") {
			t.Errorf("handler %d missing attr: %s", i, buf.String())
		}
	}
}

func TestNop(t *testing.T) {
	Nop().Error("nothing")
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("disk full")
}

func TestMultiHandler_KeepsGoingAfterFailure(t *testing.T) {
	var out bytes.Buffer
	text := slog.NewTextHandler(&out, nil)
	h := NewMultiHandler(failingHandler{text}, nil, text)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "saved", 0))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Handle() error = %v, want disk full", err)
	}
	if !strings.Contains(out.String(), "msg=saved") {
		t.Errorf("second handler missed the record: %q", out.String())
	}
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestFromContext(t *testing.T) {
	customBuf := &bytes.Buffer{}
	customLogger := slog.New(slog.NewTextHandler(customBuf, nil))

	tests := []struct {
		name        string
		ctx         context.Context
		wantDefault bool
		logMessage  string // if not wantDefault, verify this message appears in customBuf
	}{
		{
			name:        "with logger in context",
			ctx:         NewContextWithLogger(context.Background(), customLogger),
			wantDefault: false,
			logMessage:  "custom logger test",
		},
		{
			name:        "without logger in context",
			ctx:         context.Background(),
			wantDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear buffer for each test
			customBuf.Reset()

			got := FromContext(tt.ctx)

			if got == nil {
				t.Fatal("expected non-nil logger")
			}

			if tt.wantDefault {
				// Should return default logger - verify it's functional
				got.Info("fallback test")
			} else {
				// Should return custom logger - verify by checking buffer
				got.Info(tt.logMessage)
				if !strings.Contains(customBuf.String(), tt.logMessage) {
					t.Errorf("expected custom logger to write %q to buffer, got: %s", tt.logMessage, customBuf.String())
				}
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		logMessage     string
		checkRequestID bool
	}{
		{
			name:           "attaches logger to context with request_id",
			method:         "GET",
			path:           "/test",
			logMessage:     "handler executed",
			checkRequestID: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := slog.New(slog.NewJSONHandler(buf, nil))

			var capturedLogger *slog.Logger
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedLogger = FromContext(r.Context())
				capturedLogger.Info(tt.logMessage)
				w.WriteHeader(http.StatusOK)
			})

			// Chain: RequestID -> RequestLogger -> handler
			handler := middleware.RequestID(RequestLogger(logger)(testHandler))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			// Verify handler was called
			if rec.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", rec.Code)
			}

			// Verify logger was captured
			if capturedLogger == nil {
				t.Error("expected logger to be attached to context")
			}

			output := buf.String()

			// Verify log message
			if !strings.Contains(output, tt.logMessage) {
				t.Errorf("expected log output to contain %q, got: %s", tt.logMessage, output)
			}

			// Verify request_id if required
			if tt.checkRequestID {
				if !strings.Contains(output, `"request_id":`) {
					t.Errorf("expected log output to contain request_id field, got: %s", output)
				}
				if strings.Contains(output, `"request_id":""`) {
					t.Errorf("expected request_id to have a value, got empty: %s", output)
				}
			}
		})
	}
}



func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Run("json format writes structured entries", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(Options{Writer: buf, Level: "info"})
		logger.Debug("hidden")
		logger.Info("visible", slog.String("k", "v"))

		if strings.Contains(buf.String(), "hidden") {
			t.Errorf("debug entry should be filtered at info level: %s", buf.String())
		}
		var entry map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
			t.Fatalf("expected a single JSON entry, got %q: %v", buf.String(), err)
		}
		if entry["msg"] != "visible" || entry["k"] != "v" {
			t.Errorf("unexpected entry: %v", entry)
		}
		if slog.Default() != logger {
			t.Error("expected NewLogger to set the default logger")
		}
	})

	t.Run("text format is not JSON", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(Options{Writer: buf, Format: FormatText, Level: "debug"})
		logger.Debug("text entry")

		out := buf.String()
		if !strings.Contains(out, "text entry") {
			t.Errorf("expected output to contain message, got %q", out)
		}
		if strings.HasPrefix(strings.TrimSpace(out), "{") {
			t.Errorf("expected non-JSON output, got %q", out)
		}
	})
}

func TestLogBuilder(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	ctx := NewContextWithLogger(context.Background(), logger)

	Log(ctx).Layer("store").Op("toggle").User("a@x.com").Character(5).
		Characters([]int{1, 2}).Key("favs").Int("count", 1).Bool("favourite", true).
		Err(nil).Info("toggled")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid JSON output %q: %v", buf.String(), err)
	}

	checks := map[string]any{
		"layer":        "store",
		"operation":    "toggle",
		"user_id":      "a@x.com",
		"character_id": float64(5),
		"storage_key":  "favs",
		"count":        float64(1),
		"favourite":    true,
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s = %v, want %v", k, entry[k], want)
		}
	}
	if _, ok := entry[ErrorKey]; ok {
		t.Error("nil error should not add an error field")
	}
}

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentApp, Output: buf})
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent(ComponentTips)
	l.Info("generated", FieldTipCount, 3)

	m := decode(t, &buf)
	if m[FieldComponent] != ComponentTips {
		t.Fatalf("component = %v", m[FieldComponent])
	}
	if m[FieldTipCount] != float64(3) {
		t.Fatalf("tip_count = %v", m[FieldTipCount])
	}
}

func TestMiddlewareAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf)

	h := Middleware(base, func(*http.Request) string { return "req_abc" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	m := decode(t, &buf)
	if m[FieldRequestID] != "req_abc" {
		t.Fatalf("request_id = %v", m[FieldRequestID])
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger: %+v", l)
	}
}

func TestStructuredLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))
	sl.LogError(context.Background(), "save failed", errors.New("boom"), ComponentStorage, OpSave, NewFields().WithUser("u1"))

	m := decode(t, &buf)
	if m[FieldError] != "boom" || m[FieldOperation] != OpSave || m[FieldUserID] != "u1" {
		t.Fatalf("unexpected fields: %v", m)
	}
	if m[FieldComponent] != ComponentStorage {
		t.Fatalf("component = %v", m[FieldComponent])
	}
}

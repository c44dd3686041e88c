package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID_Generated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if seen == "" {
		t.Fatal("expected a generated request id in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header %q does not match context id %q", got, seen)
	}
}

func TestRequestID_HonorsValidInbound(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-req-42")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if seen != "client-req-42" {
		t.Errorf("expected inbound id to be honored, got %q", seen)
	}
}

func TestRequestID_RejectsMalformedInbound(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"too long", strings.Repeat("a", 65)},
		{"control characters", "abc\ndef"},
		{"log injection attempt", `x" level=ERROR msg="pwned`},
		{"spaces", "not a valid id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.id)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if seen == tt.id {
				t.Errorf("malformed inbound id %q must not be trusted", tt.id)
			}
			if seen == "" {
				t.Error("expected a replacement id to be generated")
			}
		})
	}
}

func TestRequestID_TraceIDPassthrough(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "trace-abc-123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if seen != "trace-abc-123" {
		t.Errorf("expected trace id in context, got %q", seen)
	}
	if got := rec.Header().Get(TraceIDHeader); got != "trace-abc-123" {
		t.Errorf("expected trace id echoed in response, got %q", got)
	}
}

func TestGetRequestID_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("expected empty id for bare context, got %q", id)
	}
}

package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func securityHeaders(t *testing.T, isDev bool) http.Header {
	t.Helper()

	handler := Security(SecurityConfig{IsDevelopment: isDev})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec.Header()
}

func TestSecurity_HeadersAlwaysSet(t *testing.T) {
	want := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"X-XSS-Protection":             "0",
		"Referrer-Policy":              "strict-origin-when-cross-origin",
		"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'",
		"Permissions-Policy":           "geolocation=(), microphone=(), camera=(), payment=(), usb=()",
		"Cache-Control":                "no-store",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "same-origin",
	}

	headers := securityHeaders(t, false)
	for name, value := range want {
		if got := headers.Get(name); got != value {
			t.Errorf("header %s = %q, want %q", name, got, value)
		}
	}
}

func TestSecurity_HSTSFollowsEnvironment(t *testing.T) {
	if got := securityHeaders(t, false).Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains; preload" {
		t.Errorf("production HSTS = %q, want full policy", got)
	}
	if got := securityHeaders(t, true).Get("Strict-Transport-Security"); got != "" {
		t.Errorf("development HSTS = %q, want unset", got)
	}
}

// drainBody reads the request body the way a JSON handler would and maps
// the byte-limit error to 413.
func drainBody(w http.ResponseWriter, r *http.Request) {
	if _, err := io.Copy(io.Discard, r.Body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func TestMaxBodySize(t *testing.T) {
	tests := []struct {
		name          string
		maxBytes      int64
		body          string
		contentLength int64 // 0 means leave what NewRequest derived
		wantStatus    int
	}{
		{
			name:       "body under limit",
			maxBytes:   1024,
			body:       "small body",
			wantStatus: http.StatusOK,
		},
		{
			name:       "body exactly at limit",
			maxBytes:   10,
			body:       strings.Repeat("x", 10),
			wantStatus: http.StatusOK,
		},
		{
			name:       "declared content length over limit",
			maxBytes:   10,
			body:       "this is a much longer body that exceeds the limit",
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:          "undeclared length caught while streaming",
			maxBytes:      10,
			body:          "this is a much longer body that exceeds the limit",
			contentLength: -1,
			wantStatus:    http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := MaxBodySize(tt.maxBytes)(http.HandlerFunc(drainBody))

			req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(tt.body))
			if tt.contentLength != 0 {
				req.ContentLength = tt.contentLength
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMaxBodySize_RejectionBody(t *testing.T) {
	handler := MaxBodySize(10)(http.HandlerFunc(drainBody))

	req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(strings.Repeat("x", 100)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("rejection body is not JSON: %v", err)
	}
	if body.Error.Code != "PAYLOAD_TOO_LARGE" {
		t.Errorf("error code = %q, want PAYLOAD_TOO_LARGE", body.Error.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func containsToken(headerValue, target string) bool {
	for _, part := range strings.Split(headerValue, ",") {
		if strings.EqualFold(strings.TrimSpace(part), target) {
			return true
		}
	}
	return false
}

func TestSecuritySetsHeaders(t *testing.T) {
	resp := httptest.NewRecorder()
	Security("/api-docs")(okHandler()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, kv := range securityHeaders {
		if got := resp.Header().Get(kv[0]); got != kv[1] {
			t.Errorf("%s: expected %q, got %q", kv[0], kv[1], got)
		}
	}
}

func TestSecuritySkipsPrefixes(t *testing.T) {
	resp := httptest.NewRecorder()
	Security("/api-docs")(okHandler()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

	if got := resp.Header().Get("X-Frame-Options"); got != "" {
		t.Fatalf("expected no security headers on docs path, got X-Frame-Options %q", got)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("expected downstream 200, got %d", resp.Code)
	}
}

func TestVaryAddsAccept(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.WriteHeader(http.StatusOK)
	})
	resp := httptest.NewRecorder()
	Vary()(handler).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	vary := resp.Header().Values("Vary")
	if len(vary) != 2 || vary[0] != "Accept" || vary[1] != "Origin" {
		t.Fatalf("expected Vary [Accept Origin], got %v", vary)
	}
}

func TestCORSSimpleRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	req.Header.Set("Origin", "http://example.com")
	resp := httptest.NewRecorder()

	CORS()(okHandler()).ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected Access-Control-Allow-Origin '*', got %q", got)
	}
	exposed := resp.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"Link", "Location", "X-Request-Id"} {
		if !containsToken(exposed, h) {
			t.Fatalf("expected exposed header %q, got %q", h, exposed)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		headers      string
		wantAllowed  bool
		wantInHeader string
	}{
		{"get with traceparent", http.MethodGet, "traceparent", true, "traceparent"},
		{"get with request id", http.MethodGet, "X-Request-Id", true, "X-Request-Id"},
		{"post is not allowed", http.MethodPost, "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

			req := httptest.NewRequest(http.MethodOptions, "http://localhost/", nil)
			req.Header.Set("Origin", "http://example.com")
			req.Header.Set("Access-Control-Request-Method", tt.method)
			if tt.headers != "" {
				req.Header.Set("Access-Control-Request-Headers", tt.headers)
			}
			resp := httptest.NewRecorder()
			CORS()(next).ServeHTTP(resp, req)

			if called {
				t.Fatal("expected preflight to be answered without calling downstream")
			}
			allowOrigin := resp.Header().Get("Access-Control-Allow-Origin")
			if tt.wantAllowed && allowOrigin != "*" {
				t.Fatalf("expected preflight to be allowed, got Allow-Origin %q", allowOrigin)
			}
			if !tt.wantAllowed && allowOrigin != "" {
				t.Fatalf("expected preflight to be rejected, got Allow-Origin %q", allowOrigin)
			}
			if tt.wantInHeader != "" && !containsToken(resp.Header().Get("Access-Control-Allow-Headers"), tt.wantInHeader) {
				t.Fatalf("expected Allow-Headers to contain %q, got %q", tt.wantInHeader, resp.Header().Get("Access-Control-Allow-Headers"))
			}
		})
	}
}

func TestRequestIDGeneratesUUIDv4(t *testing.T) {
	var captured string
	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = chimiddleware.GetReqID(r.Context())
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	parsed, err := uuid.Parse(captured)
	if err != nil {
		t.Fatalf("request ID %q is not a valid UUID: %v", captured, err)
	}
	if parsed.Version() != 4 {
		t.Fatalf("expected UUIDv4, got version %d", parsed.Version())
	}
	if header := resp.Header().Get(chimiddleware.RequestIDHeader); header != captured {
		t.Fatalf("expected response header %q, got %q", captured, header)
	}
}

func TestRequestIDIncomingHeader(t *testing.T) {
	tests := []struct {
		name    string
		inputID string
		keep    bool
	}{
		{"alphanumeric", "abc123-XYZ", true},
		{"uuid", "550e8400-e29b-41d4-a716-446655440000", true},
		{"printable punctuation", "trace:abc-123_def.456!@#$%", true},
		{"spaces", "trace id 123", true},
		{"max length", strings.Repeat("x", maxRequestIDLength), true},
		{"empty", "", false},
		{"newline", "valid\ninjected-line", false},
		{"carriage return", "valid\rinjected", false},
		{"null byte", "valid\x00null", false},
		{"tab", "valid\ttab", false},
		{"DEL", "valid\x7Fdel", false},
		{"high byte", "valid\x80high", false},
		{"too long", strings.Repeat("a", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(chimiddleware.RequestIDHeader, tt.inputID)

			var captured string
			h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				captured = chimiddleware.GetReqID(r.Context())
			}))
			h.ServeHTTP(httptest.NewRecorder(), req)

			if tt.keep {
				if captured != tt.inputID {
					t.Fatalf("expected %q to be kept, got %q", tt.inputID, captured)
				}
				return
			}
			if captured == tt.inputID {
				t.Fatalf("expected %q to be replaced", tt.inputID)
			}
			if _, err := uuid.Parse(captured); err != nil {
				t.Fatalf("expected generated UUID, got %q", captured)
			}
		})
	}
}

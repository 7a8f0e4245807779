package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const siteOrigin = "https://mainstreetbarbers.com"

func TestCORS(t *testing.T) {
	tests := []struct {
		name          string
		allowed       []string
		method        string
		path          string
		origin        string
		requestMethod string
		wantStatus    int
		wantOrigin    string
		wantCalled    bool
	}{
		{
			name:       "site origin on contact form",
			allowed:    []string{siteOrigin, "http://localhost:3000"},
			method:     http.MethodPost,
			path:       "/api/contact",
			origin:     siteOrigin,
			wantStatus: http.StatusAccepted,
			wantOrigin: siteOrigin,
			wantCalled: true,
		},
		{
			name:       "unlisted origin still reaches handler",
			allowed:    []string{siteOrigin},
			method:     http.MethodPost,
			path:       "/api/quote",
			origin:     "https://elsewhere.example",
			wantStatus: http.StatusAccepted,
			wantCalled: true,
		},
		{
			name:       "wildcard echoes chat widget origin",
			allowed:    []string{"*"},
			method:     http.MethodGet,
			path:       "/chat/history",
			origin:     "https://widget.example",
			wantStatus: http.StatusAccepted,
			wantOrigin: "https://widget.example",
			wantCalled: true,
		},
		{
			name:       "wildcard without origin",
			allowed:    []string{"*"},
			method:     http.MethodPost,
			path:       "/api/ai-agents/booking",
			wantStatus: http.StatusAccepted,
			wantOrigin: "*",
			wantCalled: true,
		},
		{
			name:          "booking preflight",
			allowed:       []string{siteOrigin},
			method:        http.MethodOptions,
			path:          "/api/ai-agents/booking",
			origin:        siteOrigin,
			requestMethod: http.MethodPost,
			wantStatus:    http.StatusOK,
			wantOrigin:    siteOrigin,
		},
		{
			name:       "options without request method is not a preflight",
			allowed:    []string{siteOrigin},
			method:     http.MethodOptions,
			path:       "/chat/message",
			origin:     siteOrigin,
			wantStatus: http.StatusAccepted,
			wantOrigin: siteOrigin,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusAccepted)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.requestMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tt.requestMethod)
			}
			rec := httptest.NewRecorder()

			CORS(tt.allowed)(handler).ServeHTTP(rec, req)

			if called != tt.wantCalled {
				t.Fatalf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin == "" {
				if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "" {
					t.Fatalf("expected no allow headers, got %q", got)
				}
				return
			}
			if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-Session-Id, X-Request-Id" {
				t.Fatalf("allow headers = %q", got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
				t.Fatalf("allow methods = %q", got)
			}
			if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
				t.Fatalf("max age = %q", got)
			}
			wantVary := ""
			if tt.origin != "" {
				wantVary = "Origin"
			}
			if got := rec.Header().Get("Vary"); got != wantVary {
				t.Fatalf("vary = %q, want %q", got, wantVary)
			}
		})
	}
}

func TestCORSIgnoresBlankEntries(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	CORS([]string{" ", ""})(handler).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow origin header, got %q", got)
	}
}

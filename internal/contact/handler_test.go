package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mainstreetlabs/siteapi/internal/notify"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

type fakeNotifier struct {
	got []notify.ContactNotice
	err error
}

func (f *fakeNotifier) NotifyContactSubmission(_ context.Context, n notify.ContactNotice) error {
	f.got = append(f.got, n)
	return f.err
}

func postContact(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Success(t *testing.T) {
	notifier := &fakeNotifier{}
	repo := NewInMemoryRepository()
	h := NewHandler(notifier, repo, nil, logging.New("error"))

	rec := postContact(t, h, `{"name":"Ann","email":" ann@example.com ","message":"hello","company":"Acme"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if len(notifier.got) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.got))
	}
	if notifier.got[0].ReplyTo != "ann@example.com" {
		t.Fatalf("expected sanitized reply-to, got %q", notifier.got[0].ReplyTo)
	}
	if len(repo.submissions) != 1 {
		t.Fatalf("expected stored submission, got %d", len(repo.submissions))
	}
	for _, sub := range repo.submissions {
		if sub.EmailStatus != EmailSent || sub.IP != "203.0.113.5" {
			t.Fatalf("unexpected stored submission %+v", sub)
		}
	}
}

func TestHandler_InvalidReplyToIsDropped(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewHandler(notifier, nil, nil, logging.New("error"))

	rec := postContact(t, h, `{"name":"Ann","email":"not-an-email","message":"hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if notifier.got[0].ReplyTo != "" {
		t.Fatalf("expected no reply-to, got %q", notifier.got[0].ReplyTo)
	}
}

func TestHandler_Validation(t *testing.T) {
	h := NewHandler(&fakeNotifier{}, nil, nil, logging.New("error"))
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"name":`, "Invalid JSON body"},
		{"missing message", `{"name":"Ann","email":"ann@example.com"}`, "Missing required fields: name, email, message"},
		{"missing name", `{"email":"ann@example.com","message":"hi"}`, "Missing required fields: name, email, message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postContact(t, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, resp.Error)
			}
		})
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(&fakeNotifier{}, nil, nil, logging.New("error"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contact", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestHandler_ProviderFailure(t *testing.T) {
	tests := []struct {
		status   int
		wantHint string
	}{
		{http.StatusUnauthorized, "Check the email provider API key"},
		{http.StatusForbidden, "Check the email provider API key"},
		{http.StatusUnprocessableEntity, "Invalid payload"},
		{http.StatusTooManyRequests, ""},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			notifier := &fakeNotifier{err: &notify.ProviderError{
				Provider:   "sendgrid",
				StatusCode: tt.status,
				Details:    "rejected",
				RequestID:  "req-9",
			}}
			repo := NewInMemoryRepository()
			h := NewHandler(notifier, repo, nil, logging.New("error"))

			rec := postContact(t, h, `{"name":"Ann","email":"ann@example.com","message":"hi"}`)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
			}
			var resp map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp["error"] != "Email send failed" || resp["provider"] != "sendgrid" || resp["requestId"] != "req-9" {
				t.Fatalf("unexpected body %v", resp)
			}
			if resp["status"] != float64(tt.status) {
				t.Fatalf("expected status %d in body, got %v", tt.status, resp["status"])
			}
			hint, _ := resp["hint"].(string)
			if tt.wantHint == "" && hint != "" || !strings.HasPrefix(hint, tt.wantHint) {
				t.Fatalf("unexpected hint %q", hint)
			}
			for _, sub := range repo.submissions {
				if sub.EmailStatus != EmailFailed {
					t.Fatalf("expected failed status stored, got %q", sub.EmailStatus)
				}
			}
		})
	}
}

func TestHandler_NotConfiguredAndUnexpected(t *testing.T) {
	h := NewHandler(nil, nil, nil, logging.New("error"))
	rec := postContact(t, h, `{"name":"Ann","email":"ann@example.com","message":"hi"}`)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Email delivery is not configured") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	h = NewHandler(&fakeNotifier{err: errors.New("dial tcp: timeout")}, nil, nil, logging.New("error"))
	rec = postContact(t, h, `{"name":"Ann","email":"ann@example.com","message":"hi"}`)
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "Unexpected error sending email" || resp.Details != "dial tcp: timeout" {
		t.Fatalf("unexpected body %+v", resp)
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := map[string]string{
		" a@b.co ":    "a@b.co",
		"a@b":         "",
		"a b@c.io":    "",
		"":            "",
		"x@sub.d.org": "x@sub.d.org",
	}
	for in, want := range tests {
		if got := sanitizeEmail(in); got != want {
			t.Errorf("sanitizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

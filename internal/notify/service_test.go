package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mainstreetlabs/siteapi/internal/booking"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

type mockEmailSender struct {
	sent    []EmailMessage
	callErr error
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newTestService(sender EmailSender, cfg ServiceConfig) *Service {
	svc := NewService(sender, cfg, logging.New("error"))
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestNotifyBookingConfirmed(t *testing.T) {
	sender := &mockEmailSender{}
	svc := newTestService(sender, ServiceConfig{BookingRecipient: "shop@example.com"})

	state := booking.State{Service: booking.ServiceHaircut, Date: "tomorrow", Time: "2pm", Name: "John", Phone: "814-555-0123", Completed: true}
	if err := svc.NotifyBookingConfirmed(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "shop@example.com" {
		t.Errorf("unexpected recipient %q", msg.To)
	}
	if msg.Subject != "New booking: haircut tomorrow 2pm" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Customer: John") || !strings.Contains(msg.HTML, "tel:814-555-0123") {
		t.Errorf("expected summary in bodies, got %q / %q", msg.Body, msg.HTML)
	}
}

func TestNotifyBookingConfirmed_NoRecipientSkips(t *testing.T) {
	sender := &mockEmailSender{}
	svc := newTestService(sender, ServiceConfig{})

	if err := svc.NotifyBookingConfirmed(context.Background(), booking.State{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no email, got %d", len(sender.sent))
	}
}

func TestNotifyBookingConfirmed_SendError(t *testing.T) {
	sender := &mockEmailSender{callErr: errors.New("boom")}
	svc := newTestService(sender, ServiceConfig{BookingRecipient: "shop@example.com"})

	if err := svc.NotifyBookingConfirmed(context.Background(), booking.State{Phone: "8145550123"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNotifyContactSubmission(t *testing.T) {
	sender := &mockEmailSender{}
	svc := newTestService(sender, ServiceConfig{ContactRecipient: "leads@example.com"})

	err := svc.NotifyContactSubmission(context.Background(), ContactNotice{
		Name:    "Ann <script>",
		Email:   "ann@example.com",
		Message: "line one\nline two",
		ReplyTo: "ann@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := sender.sent[0]
	if msg.Subject != "New lead: Ann <script>" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if msg.ReplyTo != "ann@example.com" {
		t.Errorf("unexpected reply-to %q", msg.ReplyTo)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("expected name to be escaped in html body")
	}
	if !strings.Contains(msg.HTML, "line one<br>line two") {
		t.Errorf("expected newline to become <br>, got %s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "Company:") {
		t.Error("expected company row to be omitted")
	}
}

func TestNotifyContactSubmission_NotConfigured(t *testing.T) {
	svc := newTestService(nil, ServiceConfig{ContactRecipient: "leads@example.com"})
	if err := svc.NotifyContactSubmission(context.Background(), ContactNotice{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	svc = newTestService(&mockEmailSender{}, ServiceConfig{})
	if err := svc.NotifyContactSubmission(context.Background(), ContactNotice{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured without recipient, got %v", err)
	}
}

func TestNotifyContactSubmission_KeepsProviderError(t *testing.T) {
	sender := &mockEmailSender{callErr: &ProviderError{Provider: "sendgrid", StatusCode: 401}}
	svc := newTestService(sender, ServiceConfig{ContactRecipient: "leads@example.com"})

	err := svc.NotifyContactSubmission(context.Background(), ContactNotice{Name: "Ann"})

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != 401 {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestRenderContactHTML_OptionalRows(t *testing.T) {
	html, err := RenderContactHTML(ContactNotice{Name: "Bo", Email: "bo@example.com", Company: "Acme & Co", InterestedIn: "Booking agent", Message: "hi"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Acme &amp; Co") {
		t.Errorf("expected escaped company, got %s", html)
	}
	if !strings.Contains(html, "<strong>Interested In:</strong> Booking agent") {
		t.Errorf("expected interested-in row, got %s", html)
	}
	if !strings.Contains(html, `href="mailto:bo@example.com"`) {
		t.Errorf("expected mailto link, got %s", html)
	}
}

package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mainstreetlabs/siteapi/internal/booking"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

// ServiceConfig names the operator inboxes notifications go to.
type ServiceConfig struct {
	BookingRecipient string
	ContactRecipient string
}

// Service handles sending notifications to the site operators.
type Service struct {
	email  EmailSender
	cfg    ServiceConfig
	logger *logging.Logger
	now    func() time.Time
}

// NewService creates a notification service.
func NewService(email EmailSender, cfg ServiceConfig, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:  email,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// NotifyBookingConfirmed emails the shop a summary of a completed booking.
// It is a no-op when no booking recipient is configured.
func (s *Service) NotifyBookingConfirmed(ctx context.Context, state booking.State) error {
	if s.email == nil || s.cfg.BookingRecipient == "" {
		s.logger.Debug("notify: booking notifications disabled, skipping")
		return nil
	}

	collected := s.now()
	subject := fmt.Sprintf("New booking: %s %s", state.Service, strings.TrimSpace(state.Date+" "+state.Time))
	msg := EmailMessage{
		To:      s.cfg.BookingRecipient,
		Subject: strings.TrimSpace(subject),
		Body:    booking.FormatSummary(state, collected),
		HTML:    booking.FormatSummaryHTML(state, collected),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}

// NotifyContactSubmission forwards a contact form submission to the operator
// inbox. Provider rejections are returned as *ProviderError (wrapped).
func (s *Service) NotifyContactSubmission(ctx context.Context, n ContactNotice) error {
	if s.email == nil || s.cfg.ContactRecipient == "" {
		return ErrNotConfigured
	}

	html, err := RenderContactHTML(n)
	if err != nil {
		return err
	}
	msg := EmailMessage{
		To:      s.cfg.ContactRecipient,
		ReplyTo: n.ReplyTo,
		Subject: "New lead: " + n.Name,
		Body:    renderContactText(n),
		HTML:    html,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: contact submission: %w", err)
	}
	return nil
}

var _ booking.CompletionNotifier = (*Service)(nil)

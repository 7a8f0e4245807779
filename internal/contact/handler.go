package contact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mainstreetlabs/siteapi/internal/http/middleware"
	"github.com/mainstreetlabs/siteapi/internal/notify"
	"github.com/mainstreetlabs/siteapi/internal/observability/metrics"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

const (
	maxRequestBytes = 64 << 10
	formName        = "contact"
)

// Notifier forwards a submission to the operator inbox.
type Notifier interface {
	NotifyContactSubmission(ctx context.Context, n notify.ContactNotice) error
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// deliveryFailure is the 500 body returned when the email provider rejects
// the message.
type deliveryFailure struct {
	Error     string  `json:"error"`
	Status    int     `json:"status,omitempty"`
	Provider  string  `json:"provider"`
	Code      string  `json:"code,omitempty"`
	Details   string  `json:"details"`
	RequestID *string `json:"requestId"`
	Hint      string  `json:"hint,omitempty"`
}

// Handler handles POST /api/contact.
type Handler struct {
	notifier Notifier
	repo     Repository
	metrics  *metrics.FormMetrics
	logger   *logging.Logger
}

// NewHandler creates a contact handler. repo and m may be nil.
func NewHandler(notifier Notifier, repo Repository, m *metrics.FormMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		notifier: notifier,
		repo:     repo,
		metrics:  m,
		logger:   logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.logger.Warn("contact: invalid request body", "error", err)
		h.metrics.ObserveSubmission(formName, "invalid")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return
	}
	if err := req.Validate(); err != nil {
		h.metrics.ObserveSubmission(formName, "invalid")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sub := &Submission{
		Name:         req.Name,
		Email:        req.Email,
		Company:      req.Company,
		InterestedIn: req.InterestedIn,
		Message:      req.Message,
		EmailStatus:  EmailSent,
		IP:           middleware.ClientIP(r),
		UserAgent:    r.UserAgent(),
	}

	err := h.send(r.Context(), req)
	if err != nil {
		sub.EmailStatus = EmailFailed
		sub.EmailError = err.Error()
	}
	h.store(r.Context(), sub)
	h.metrics.ObserveSubmission(formName, sub.EmailStatus)

	if err != nil {
		h.writeSendError(w, err)
		return
	}
	h.logger.Info("contact: submission forwarded", "id", sub.ID, "interested_in", sub.InterestedIn)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) send(ctx context.Context, req Request) error {
	if h.notifier == nil {
		return notify.ErrNotConfigured
	}
	return h.notifier.NotifyContactSubmission(ctx, notify.ContactNotice{
		Name:         req.Name,
		Email:        req.Email,
		Company:      req.Company,
		InterestedIn: req.InterestedIn,
		Message:      req.Message,
		ReplyTo:      sanitizeEmail(req.Email),
	})
}

func (h *Handler) store(ctx context.Context, sub *Submission) {
	if h.repo == nil {
		return
	}
	if err := h.repo.Create(context.WithoutCancel(ctx), sub); err != nil {
		h.logger.Error("contact: failed to store submission", "error", err)
	}
}

func (h *Handler) writeSendError(w http.ResponseWriter, err error) {
	var pe *notify.ProviderError
	switch {
	case errors.As(err, &pe):
		h.logger.Error("contact: email send failed",
			"provider", pe.Provider, "status", pe.StatusCode, "code", pe.Code, "request_id", pe.RequestID, "details", pe.Details)
		body := deliveryFailure{
			Error:    "Email send failed",
			Status:   pe.StatusCode,
			Provider: pe.Provider,
			Code:     pe.Code,
			Details:  pe.Details,
			Hint:     providerHint(pe.StatusCode),
		}
		if pe.RequestID != "" {
			body.RequestID = &pe.RequestID
		}
		writeJSON(w, http.StatusInternalServerError, body)
	case errors.Is(err, notify.ErrNotConfigured):
		h.logger.Error("contact: email delivery not configured")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Email delivery is not configured"})
	default:
		h.logger.Error("contact: unexpected email error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Unexpected error sending email", Details: err.Error()})
	}
}

func providerHint(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "Check the email provider API key permissions and verify your sender/domain."
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "Invalid payload. Ensure the from address is verified and the recipient is allowed."
	default:
		return ""
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

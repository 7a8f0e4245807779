package newsletter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mainstreetlabs/siteapi/internal/observability/metrics"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

const (
	maxRequestBytes = 16 << 10
	formName        = "newsletter"
	unknown         = "unknown"
)

type signupBody struct {
	Email  any `json:"email"`
	Source any `json:"source"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type signupResponse struct {
	Message           string `json:"message"`
	Success           bool   `json:"success,omitempty"`
	AlreadySubscribed bool   `json:"alreadySubscribed,omitempty"`
	Reactivated       bool   `json:"reactivated,omitempty"`
}

// Handler handles POST /api/newsletter-signup.
type Handler struct {
	svc     *Service
	metrics *metrics.FormMetrics
	logger  *logging.Logger
}

// NewHandler creates a signup handler. m may be nil.
func NewHandler(svc *Service, m *metrics.FormMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, metrics: m, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var body signupBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&body); err != nil {
		h.metrics.ObserveSubmission(formName, "invalid")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return
	}

	email, _ := body.Email.(string)
	source, _ := body.Source.(string)
	outcome, err := h.svc.Subscribe(r.Context(), SignupRequest{
		Email:    email,
		Source:   source,
		Metadata: requestMetadata(r),
	})
	switch {
	case errors.Is(err, ErrEmailRequired), errors.Is(err, ErrInvalidEmail):
		h.metrics.ObserveSubmission(formName, "invalid")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		h.logger.Error("newsletter signup error", "error", err)
		h.metrics.ObserveSubmission(formName, "error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to subscribe. Please try again later."})
		return
	}

	h.metrics.ObserveSubmission(formName, outcome.String())
	switch outcome {
	case AlreadySubscribed:
		writeJSON(w, http.StatusOK, signupResponse{Message: "Already subscribed", AlreadySubscribed: true})
	case Reactivated:
		writeJSON(w, http.StatusOK, signupResponse{Message: "Subscription reactivated", Reactivated: true})
	default:
		writeJSON(w, http.StatusCreated, signupResponse{Message: "Successfully subscribed", Success: true})
	}
}

// requestMetadata keeps the raw forwarding header (the whole proxy chain) and
// the user agent.
func requestMetadata(r *http.Request) Metadata {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-Ip")
	}
	if ip == "" {
		ip = unknown
	}
	ua := r.UserAgent()
	if ua == "" {
		ua = unknown
	}
	return Metadata{IP: ip, UserAgent: ua}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

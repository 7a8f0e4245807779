package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mainstreetlabs/siteapi/internal/observability/metrics"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

const (
	maxRequestBytes = 1 << 20
	notifyTimeout   = 10 * time.Second
)

// CompletionNotifier is told about every booking that completes.
type CompletionNotifier interface {
	NotifyBookingConfirmed(ctx context.Context, state State) error
}

// Request is the JSON body accepted by the booking endpoint.
type Request struct {
	Message             string    `json:"message"`
	ConversationHistory []Message `json:"conversationHistory"`
}

// Response is the JSON body returned for a handled turn.
type Response struct {
	Message   string `json:"message"`
	State     State  `json:"state"`
	Completed bool   `json:"completed"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler serves the booking dialogue over HTTP.
type Handler struct {
	engine   *Engine
	notifier CompletionNotifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewHandler creates a booking handler. notifier and m may be nil.
func NewHandler(engine *Engine, notifier CompletionNotifier, m *metrics.BookingMetrics, logger *logging.Logger) *Handler {
	if engine == nil {
		engine = NewEngine()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:   engine,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// ServeHTTP accepts POST turns and answers OPTIONS preflights that reach it.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		h.HandleTurn(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	}
}

// HandleTurn handles POST /api/ai-agents/booking.
func (h *Handler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("booking: turn panicked", "panic", rec)
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Error:   "Failed to process booking request",
				Details: fmt.Sprint(rec),
			})
		}
	}()

	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.logger.Warn("booking: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Message is required"})
		return
	}

	resp := h.Turn(r.Context(), req)
	writeJSON(w, http.StatusOK, resp)
}

// Turn runs one dialogue turn and its side effects (metrics, completion
// notification). It is shared by the HTTP, lambda and webchat transports.
func (h *Handler) Turn(ctx context.Context, req Request) Response {
	reply := h.engine.Respond(req.Message, req.ConversationHistory)

	h.metrics.ObserveTurn(string(reply.Stage), reply.Advanced())
	h.logger.Debug("booking: turn handled",
		"stage", reply.Stage,
		"advanced", reply.Advanced(),
		"history_len", len(req.ConversationHistory),
	)

	if reply.State.Completed {
		h.metrics.ObserveCompleted(string(reply.State.Service))
		h.notifyCompleted(ctx, reply.State)
	}

	return Response{
		Message:   reply.Content,
		State:     reply.State,
		Completed: reply.State.Completed,
	}
}

func (h *Handler) notifyCompleted(ctx context.Context, state State) {
	h.logger.Info("booking: completed", "service", state.Service, "date", state.Date, "time", state.Time)
	if h.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := h.notifier.NotifyBookingConfirmed(notifyCtx, state); err != nil {
		h.logger.Error("booking: completion notification failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

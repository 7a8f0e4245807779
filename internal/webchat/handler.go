package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/mainstreetlabs/siteapi/internal/booking"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

const (
	historyLimit    = 100
	maxRequestBytes = 64 << 10
)

// Turner runs one booking turn. *booking.Handler implements it.
type Turner interface {
	Turn(ctx context.Context, req booking.Request) booking.Response
}

// Handler serves the booking demo chat over WebSocket with an HTTP fallback.
// The engine is stateless; the transcript is what carries a session between
// turns.
type Handler struct {
	turner     Turner
	transcript TranscriptStore
	maxEntries int64
	logger     *logging.Logger
}

// transcriptCap is implemented by stores that bound session length.
type transcriptCap interface {
	MaxMessages() int64
}

const sessionFullText = "This chat has reached its limit. Please start a new chat to book again."

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "history", "session", "pong", "error"
	Text      string           `json:"text,omitempty"`
	Role      booking.Role     `json:"role,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
	State     *booking.State   `json:"state,omitempty"`
	Completed bool             `json:"completed,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      booking.Role `json:"role"`
	Text      string       `json:"text"`
	Timestamp string       `json:"timestamp"`
}

// NewHandler creates a web chat handler. A nil transcript falls back to an
// in-memory store.
func NewHandler(turner Turner, transcript TranscriptStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if transcript == nil {
		transcript = NewMemoryTranscriptStore(TranscriptOptions{})
	}
	h := &Handler{
		turner:     turner,
		transcript: transcript,
		logger:     logger,
	}
	if c, ok := transcript.(transcriptCap); ok {
		h.maxEntries = c.MaxMessages()
	}
	return h
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})

	entries, err := h.openSession(ctx, sessionID)
	if err != nil {
		h.logger.Error("webchat: failed to open session", "error", err, "session_id", sessionID)
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."})
		return
	}
	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: toHistory(entries)})

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		out, err := h.processMessage(ctx, sessionID, msg.Text)
		if errors.Is(err, ErrTranscriptFull) {
			out = OutboundMessage{Type: "error", Text: sessionFullText}
		} else if err != nil {
			h.logger.Error("webchat: turn failed", "error", err, "session_id", sessionID)
			out = OutboundMessage{Type: "error", Text: "Sorry, something went wrong. Please try again."}
		}
		_ = websocket.JSON.Send(conn, out)
	}
}

// openSession greets a new session and returns its full transcript.
func (h *Handler) openSession(ctx context.Context, sessionID string) ([]TranscriptEntry, error) {
	entries, err := h.transcript.List(ctx, sessionID, 0)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		greeting := TranscriptEntry{Role: booking.RoleBot, Text: booking.Greeting}
		if err := h.transcript.Append(ctx, sessionID, greeting); err != nil {
			return nil, err
		}
		return h.transcript.List(ctx, sessionID, 0)
	}
	return entries, nil
}

func (h *Handler) processMessage(ctx context.Context, sessionID, text string) (OutboundMessage, error) {
	entries, err := h.openSession(ctx, sessionID)
	if err != nil {
		return OutboundMessage{}, err
	}
	// Checked before the turn runs; a refused turn has no side effects.
	if h.maxEntries > 0 && int64(len(entries))+2 > h.maxEntries {
		return OutboundMessage{}, ErrTranscriptFull
	}

	resp := h.turner.Turn(ctx, booking.Request{
		Message:             text,
		ConversationHistory: toConversation(entries),
	})

	now := time.Now().UTC()
	err = h.transcript.Append(ctx, sessionID,
		TranscriptEntry{Role: booking.RoleUser, Text: text, Timestamp: now},
		TranscriptEntry{Role: booking.RoleBot, Text: resp.Message, Timestamp: now},
	)
	if err != nil {
		return OutboundMessage{}, err
	}

	state := resp.State
	return OutboundMessage{
		Type:      "message",
		Role:      booking.RoleBot,
		Text:      resp.Message,
		SessionID: sessionID,
		Timestamp: now.Format(time.RFC3339),
		State:     &state,
		Completed: resp.Completed,
	}, nil
}

// HandleMessage is the HTTP fallback for sending messages.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	out, err := h.processMessage(r.Context(), req.SessionID, req.Text)
	if errors.Is(err, ErrTranscriptFull) {
		http.Error(w, sessionFullText, http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("webchat: turn failed", "error", err, "session_id", req.SessionID)
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	entries, err := h.transcript.List(r.Context(), sessionID, historyLimit)
	if err != nil {
		h.logger.Error("webchat: failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": toHistory(entries)})
}

func toHistory(entries []TranscriptEntry) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(entries))
	for _, e := range entries {
		history = append(history, HistoryMessage{
			Role:      e.Role,
			Text:      e.Text,
			Timestamp: e.Timestamp.Format(time.RFC3339),
		})
	}
	return history
}

func toConversation(entries []TranscriptEntry) []booking.Message {
	msgs := make([]booking.Message, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, booking.Message{Role: e.Role, Content: e.Text})
	}
	return msgs
}

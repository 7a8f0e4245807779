package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mainstreetlabs/siteapi/internal/booking"
)

const (
	transcriptKeyPrefix      = "webchat_transcript:"
	defaultTranscriptTTL     = 24 * time.Hour
	defaultTranscriptMaxMsgs = 100
)

// ErrTranscriptFull is returned when an append would take a session past
// TranscriptOptions.MaxMessages. Sessions are never trimmed because every turn
// replays the whole transcript.
var ErrTranscriptFull = errors.New("webchat: transcript full")

// TranscriptEntry is one line of a chat session.
type TranscriptEntry struct {
	ID        string       `json:"id"`
	Role      booking.Role `json:"role"`
	Text      string       `json:"text"`
	Timestamp time.Time    `json:"timestamp"`
}

// TranscriptStore persists chat sessions so each turn can be replayed
// through the booking engine.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, entries ...TranscriptEntry) error
	List(ctx context.Context, sessionID string, limit int64) ([]TranscriptEntry, error)
}

// TranscriptOptions bounds a session. TTL runs from the last append.
type TranscriptOptions struct {
	TTL         time.Duration
	MaxMessages int64
}

func (o TranscriptOptions) withDefaults() TranscriptOptions {
	if o.TTL <= 0 {
		o.TTL = defaultTranscriptTTL
	}
	if o.MaxMessages <= 0 {
		o.MaxMessages = defaultTranscriptMaxMsgs
	}
	return o
}

func stamp(entries []TranscriptEntry) {
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		if entries[i].Timestamp.IsZero() {
			entries[i].Timestamp = time.Now().UTC()
		}
	}
}

// RedisTranscriptStore keeps each session as a Redis list with a TTL.
type RedisTranscriptStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	opts   TranscriptOptions
}

// NewRedisTranscriptStore returns nil when redisClient is nil.
func NewRedisTranscriptStore(redisClient *redis.Client, opts TranscriptOptions) *RedisTranscriptStore {
	if redisClient == nil {
		return nil
	}
	return &RedisTranscriptStore{
		redis:  redisClient,
		tracer: otel.Tracer("siteapi.internal.webchat.transcript"),
		opts:   opts.withDefaults(),
	}
}

func (s *RedisTranscriptStore) Append(ctx context.Context, sessionID string, entries ...TranscriptEntry) error {
	if sessionID == "" {
		return errors.New("webchat: transcript sessionID required")
	}
	if len(entries) == 0 {
		return nil
	}
	stamp(entries)

	values := make([]any, 0, len(entries))
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("webchat: marshal transcript entry: %w", err)
		}
		values = append(values, data)
	}

	ctx, span := s.tracer.Start(ctx, "webchat.transcript.append")
	defer span.End()

	key := transcriptKey(sessionID)
	// The length check and the push are separate round trips, so concurrent
	// turns on one session can overshoot the cap by a turn.
	n, err := s.redis.LLen(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		return fmt.Errorf("webchat: transcript length: %w", err)
	}
	if n+int64(len(values)) > s.opts.MaxMessages {
		return ErrTranscriptFull
	}

	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, s.opts.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("webchat: append transcript: %w", err)
	}
	return nil
}

func (s *RedisTranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]TranscriptEntry, error) {
	if sessionID == "" {
		return nil, errors.New("webchat: transcript sessionID required")
	}

	ctx, span := s.tracer.Start(ctx, "webchat.transcript.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), start, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		return nil, fmt.Errorf("webchat: list transcript: %w", err)
	}

	out := make([]TranscriptEntry, 0, len(raw))
	for _, item := range raw {
		var entry TranscriptEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// MaxMessages is the per-session entry cap.
func (s *RedisTranscriptStore) MaxMessages() int64 {
	return s.opts.MaxMessages
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}

// MemoryTranscriptStore is the TranscriptStore used when Redis is not
// configured. A session expires TTL after its last append; expired sessions
// read as empty and are dropped by Sweep.
type MemoryTranscriptStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	opts     TranscriptOptions
	now      func() time.Time
}

type memorySession struct {
	entries []TranscriptEntry
	touched time.Time
}

// NewMemoryTranscriptStore creates an in-memory store with the same limits
// as the Redis store.
func NewMemoryTranscriptStore(opts TranscriptOptions) *MemoryTranscriptStore {
	return &MemoryTranscriptStore{
		sessions: make(map[string]*memorySession),
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

func (s *MemoryTranscriptStore) Append(ctx context.Context, sessionID string, entries ...TranscriptEntry) error {
	if sessionID == "" {
		return errors.New("webchat: transcript sessionID required")
	}
	stamp(entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	session, ok := s.sessions[sessionID]
	if !ok || s.expired(session, now) {
		session = &memorySession{}
	}
	if int64(len(session.entries)+len(entries)) > s.opts.MaxMessages {
		return ErrTranscriptFull
	}
	session.entries = append(session.entries, entries...)
	session.touched = now
	s.sessions[sessionID] = session
	return nil
}

func (s *MemoryTranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]TranscriptEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok || s.expired(session, s.now()) {
		return []TranscriptEntry{}, nil
	}
	entries := session.entries
	if limit > 0 && int64(len(entries)) > limit {
		entries = entries[int64(len(entries))-limit:]
	}
	return append([]TranscriptEntry{}, entries...), nil
}

// MaxMessages is the per-session entry cap.
func (s *MemoryTranscriptStore) MaxMessages() int64 {
	return s.opts.MaxMessages
}

// Sweep drops expired sessions and returns how many were removed.
func (s *MemoryTranscriptStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryTranscriptStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryTranscriptStore) expired(session *memorySession, now time.Time) bool {
	return now.Sub(session.touched) >= s.opts.TTL
}

var (
	_ TranscriptStore = (*RedisTranscriptStore)(nil)
	_ TranscriptStore = (*MemoryTranscriptStore)(nil)
)

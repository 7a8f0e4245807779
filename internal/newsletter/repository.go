package newsletter

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores newsletter subscribers keyed by lower-cased email.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Subscriber, error)
	Insert(ctx context.Context, sub *Subscriber) error
	Reactivate(ctx context.Context, email string, at time.Time) error
}

// InMemoryRepository is a Repository for local runs and tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{subs: make(map[string]*Subscriber)}
}

func (r *InMemoryRepository) FindByEmail(ctx context.Context, email string) (*Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[email]
	if !ok {
		return nil, ErrSubscriberNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *InMemoryRepository) Insert(ctx context.Context, sub *Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.subs[sub.Email]; exists {
		return ErrDuplicateSubscriber
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	cp := *sub
	r.subs[sub.Email] = &cp
	return nil
}

func (r *InMemoryRepository) Reactivate(ctx context.Context, email string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[email]
	if !ok {
		return ErrSubscriberNotFound
	}
	sub.Status = StatusActive
	sub.SubscribedAt = at
	return nil
}

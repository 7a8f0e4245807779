package contact

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores contact submissions.
type Repository interface {
	Create(ctx context.Context, sub *Submission) error
	GetByID(ctx context.Context, id string) (*Submission, error)
}

// InMemoryRepository keeps submissions in memory. Used when no database is
// configured.
type InMemoryRepository struct {
	mu          sync.RWMutex
	submissions map[string]*Submission
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		submissions: make(map[string]*Submission),
	}
}

// Create stores sub, assigning an ID and timestamp when missing.
func (r *InMemoryRepository) Create(ctx context.Context, sub *Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	cp := *sub

	r.mu.Lock()
	r.submissions[cp.ID] = &cp
	r.mu.Unlock()
	return nil
}

// GetByID retrieves a submission by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.submissions[id]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	cp := *sub
	return &cp, nil
}

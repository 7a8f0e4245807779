package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores subscribers in the newsletter_subscribers table.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by a pgx pool (or anything
// with the same Exec/QueryRow surface).
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("newsletter: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*Subscriber, error) {
	var (
		sub  Subscriber
		meta []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, email, source, status, metadata, subscribed_at
		FROM newsletter_subscribers
		WHERE email = $1
	`, email).Scan(&sub.ID, &sub.Email, &sub.Source, &sub.Status, &meta, &sub.SubscribedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubscriberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("newsletter: find subscriber: %w", err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &sub.Metadata); err != nil {
			return nil, fmt.Errorf("newsletter: decode metadata: %w", err)
		}
	}
	return &sub, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, sub *Subscriber) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	meta, err := json.Marshal(sub.Metadata)
	if err != nil {
		return fmt.Errorf("newsletter: encode metadata: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO newsletter_subscribers (id, email, source, status, metadata, subscribed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sub.ID, sub.Email, sub.Source, sub.Status, meta, sub.SubscribedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateSubscriber
		}
		return fmt.Errorf("newsletter: insert subscriber: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Reactivate(ctx context.Context, email string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE newsletter_subscribers
		SET status = $2, subscribed_at = $3
		WHERE email = $1
	`, email, StatusActive, at)
	if err != nil {
		return fmt.Errorf("newsletter: reactivate subscriber: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)

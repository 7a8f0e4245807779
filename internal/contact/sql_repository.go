package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SQLRepository persists submissions to the contact_submissions table via
// database/sql and the lib/pq driver.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository creates a repository backed by db.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, sub *Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_submissions (id, name, email, company, interested_in, message,
		                                 email_status, email_error, ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sub.ID, sub.Name, sub.Email, nullString(sub.Company), nullString(sub.InterestedIn), sub.Message,
		sub.EmailStatus, nullString(sub.EmailError), nullString(sub.IP), nullString(sub.UserAgent), sub.CreatedAt)
	if err != nil {
		return wrapPQ("insert submission", err)
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*Submission, error) {
	var sub Submission
	var company, interested, emailErr, ip, agent sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, company, interested_in, message, email_status, email_error,
		       ip, user_agent, created_at
		FROM contact_submissions WHERE id = $1`, id).Scan(
		&sub.ID, &sub.Name, &sub.Email, &company, &interested, &sub.Message,
		&sub.EmailStatus, &emailErr, &ip, &agent, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, wrapPQ("get submission", err)
	}
	sub.Company = company.String
	sub.InterestedIn = interested.String
	sub.EmailError = emailErr.String
	sub.IP = ip.String
	sub.UserAgent = agent.String
	return &sub, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// wrapPQ adds the Postgres error condition name when the driver reports one.
func wrapPQ(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("contact: %s (%s): %w", op, pqErr.Code.Name(), err)
	}
	return fmt.Errorf("contact: %s: %w", op, err)
}

var _ Repository = (*SQLRepository)(nil)

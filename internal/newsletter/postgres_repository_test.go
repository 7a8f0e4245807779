package newsletter

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_FindByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	subscribed := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, email, source, status, metadata, subscribed_at").
		WithArgs("ann@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "source", "status", "metadata", "subscribed_at"}).
			AddRow("sub-1", "ann@example.com", "footer", StatusUnsubscribed, []byte(`{"ip":"1.2.3.4","userAgent":"ua"}`), subscribed))

	sub, err := NewPostgresRepository(mock).FindByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "footer", sub.Source)
	assert.False(t, sub.Active())
	assert.Equal(t, Metadata{IP: "1.2.3.4", UserAgent: "ua"}, sub.Metadata)
	assert.Equal(t, subscribed, sub.SubscribedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindByEmailNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, email").
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresRepository(mock).FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrSubscriberNotFound)
}

func TestPostgresRepository_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO newsletter_subscribers").
		WithArgs(pgxmock.AnyArg(), "ann@example.com", "footer", StatusActive, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sub := &Subscriber{Email: "ann@example.com", Source: "footer", Status: StatusActive, SubscribedAt: time.Now()}
	require.NoError(t, NewPostgresRepository(mock).Insert(context.Background(), sub))
	assert.NotEmpty(t, sub.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_InsertDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO newsletter_subscribers").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err = NewPostgresRepository(mock).Insert(context.Background(), &Subscriber{Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateSubscriber)
}

func TestPostgresRepository_Reactivate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE newsletter_subscribers").
		WithArgs("ann@example.com", StatusActive, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE newsletter_subscribers").
		WithArgs("gone@example.com", StatusActive, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.Reactivate(context.Background(), "ann@example.com", at))
	assert.ErrorIs(t, repo.Reactivate(context.Background(), "gone@example.com", at), ErrSubscriberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

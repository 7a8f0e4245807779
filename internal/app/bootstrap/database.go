package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"github.com/mainstreetlabs/siteapi/internal/contact"
	"github.com/mainstreetlabs/siteapi/internal/newsletter"
)

// Databases holds the optional Postgres handles. The pgx pool backs the
// newsletter store and the database/sql handle backs contact submissions.
type Databases struct {
	Pool *pgxpool.Pool
	SQL  *sql.DB
}

// ConnectDatabases opens both handles against databaseURL. An empty URL
// returns an empty Databases and no error.
func ConnectDatabases(ctx context.Context, databaseURL string) (*Databases, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return &Databases{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect pgx pool: %w", err)
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: open sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		_ = sqlDB.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}

	return &Databases{Pool: pool, SQL: sqlDB}, nil
}

// Close releases any open handles.
func (d *Databases) Close() {
	if d == nil {
		return
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.SQL != nil {
		_ = d.SQL.Close()
	}
}

// NewsletterRepository returns the Postgres store when connected, otherwise
// an in-memory one.
func (d *Databases) NewsletterRepository() newsletter.Repository {
	if d == nil || d.Pool == nil {
		return newsletter.NewInMemoryRepository()
	}
	return newsletter.NewPostgresRepository(d.Pool)
}

// ContactRepository returns the SQL store when connected, otherwise an
// in-memory one.
func (d *Databases) ContactRepository() contact.Repository {
	if d == nil || d.SQL == nil {
		return contact.NewInMemoryRepository()
	}
	return contact.NewSQLRepository(d.SQL)
}

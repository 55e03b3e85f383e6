// Package sqlite implements the dashboard stores on an embedded SQLite database
// for local development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_subscriptions (
	user_id TEXT PRIMARY KEY,
	stripe_customer_id TEXT,
	subscription_status TEXT NOT NULL DEFAULT 'FREE',
	stripe_subscription_id TEXT,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_subscriptions_customer ON user_subscriptions(stripe_customer_id);
CREATE INDEX IF NOT EXISTS idx_user_subscriptions_subscription ON user_subscriptions(stripe_subscription_id);

CREATE TABLE IF NOT EXISTS ticker_clicks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	ticker TEXT NOT NULL,
	month_year TEXT NOT NULL,
	clicked_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ticker_clicks_user_month ON ticker_clicks(user_id, month_year);

CREATE TABLE IF NOT EXISTS query_bot_view_json (
	cashtag TEXT PRIMARY KEY,
	json_result TEXT
);

CREATE TABLE IF NOT EXISTS ticker_tape (
	id INTEGER PRIMARY KEY,
	cashtag TEXT NOT NULL,
	prev_open REAL,
	prev_eod REAL,
	latest_price REAL,
	chng REAL,
	trend TEXT
);
`

// Store implements interfaces.StorageManager on one SQLite database.
type Store struct {
	db     *sql.DB
	logger *common.Logger
}

var _ interfaces.StorageManager = (*Store)(nil)

// NewStore opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-process database.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One connection keeps an in-memory database shared and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info().Str("path", path).Msg("SQLite store initialized")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) SubscriptionStore() interfaces.SubscriptionStore { return &subscriptionStore{db: s.db} }
func (s *Store) ClickStore() interfaces.ClickStore               { return &clickStore{db: s.db} }
func (s *Store) PostStore() interfaces.PostStore                 { return &postStore{db: s.db} }
func (s *Store) TapeStore() interfaces.TapeStore                 { return &tapeStore{db: s.db} }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Package transcript records chat exchanges in Postgres.
package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Entry is one user message and the reply it received.
type Entry struct {
	SessionID string
	Service   string
	Category  string
	Source    string
	Message   string
	Response  string
	CreatedAt time.Time
}

// Recorder persists transcript entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards entries. It is used when ENABLE_DB is off.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

const schema = `CREATE TABLE IF NOT EXISTS chat_transcripts (
	id          UUID PRIMARY KEY,
	session_id  TEXT NOT NULL,
	service     TEXT NOT NULL,
	category    TEXT NOT NULL,
	source      TEXT NOT NULL,
	message     TEXT NOT NULL,
	response    TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS chat_transcripts_session_idx ON chat_transcripts (session_id, created_at)`

const insertEntry = `INSERT INTO chat_transcripts
	(id, session_id, service, category, source, message, response, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Store writes transcripts to the chat_transcripts table.
type Store struct {
	db  DB
	now func() time.Time
}

func NewStore(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

// EnsureSchema creates the transcript table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create transcript schema: %w", err)
	}
	return nil
}

func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	_, err := s.db.Exec(ctx, insertEntry,
		uuid.New(), e.SessionID, e.Service, e.Category, e.Source, e.Message, e.Response, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Connect opens a pool and waits for the database to answer a ping,
// retrying with Fibonacci backoff.
func Connect(ctx context.Context, url string, logger *zap.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	b := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			logger.Warn("database not ready", zap.String("host", cfg.ConnConfig.Host), zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

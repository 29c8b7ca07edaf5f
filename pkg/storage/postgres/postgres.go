// Package postgres provides PostgreSQL implementations of transport.EntryStore
// and transport.UserStore on a pgx/v5 connection pool. Activities are
// stored as a TEXT[] column; the schema is managed by embedded migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/debug"
	"github.com/diarydepresiku/moodlog/pkg/storage"
	"github.com/diarydepresiku/moodlog/pkg/transport"
)

// Store is a PostgreSQL-backed entry and user store.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ transport.EntryStore = (*Store)(nil)
	_ transport.UserStore  = (*Store)(nil)
)

// New connects to PostgreSQL and, when MigrateOnStart is set, applies
// pending migrations.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

const entryColumns = "id, content, mood, ts, activities"

// SaveEntry inserts an entry and returns it with its generated ID.
func (s *Store) SaveEntry(ctx context.Context, e *api.EntryCreate) (*api.Entry, error) {
	activities := e.Activities
	if activities == nil {
		activities = []string{}
	}

	row := s.pool.QueryRow(ctx,
		"INSERT INTO entries (content, mood, ts, activities) VALUES ($1, $2, $3, $4) RETURNING "+entryColumns,
		e.Content, e.Mood, e.Timestamp, activities,
	)
	saved, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("inserting entry: %w", err)
	}

	debug.Log("storage", "entry saved", "id", saved.ID, "mood", saved.Mood)
	return saved, nil
}

// GetEntry returns the entry with the given ID.
func (s *Store) GetEntry(ctx context.Context, id int64) (*api.Entry, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+entryColumns+" FROM entries WHERE id = $1", id)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}
	return e, nil
}

// ListEntries returns entries newest first.
func (s *Store) ListEntries(ctx context.Context, opts transport.ListOptions) ([]*api.Entry, error) {
	opts = opts.Normalize()

	rows, err := s.pool.Query(ctx,
		"SELECT "+entryColumns+" FROM entries ORDER BY ts DESC, id DESC OFFSET $1 LIMIT $2",
		opts.Skip, opts.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	entries := []*api.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// MoodStats counts entries per mood.
func (s *Store) MoodStats(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, "SELECT mood, count(*) FROM entries GROUP BY mood")
	if err != nil {
		return nil, fmt.Errorf("querying mood stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var mood string
		var count int64
		if err := rows.Scan(&mood, &count); err != nil {
			return nil, fmt.Errorf("scanning mood stats: %w", err)
		}
		stats[mood] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mood stats: %w", err)
	}
	return stats, nil
}

// CreateUser inserts u and fills in its ID and creation time.
func (s *Store) CreateUser(ctx context.Context, u *api.User) error {
	err := s.pool.QueryRow(ctx,
		"INSERT INTO users (email, name, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at",
		storage.NormalizeEmail(u.Email), u.Name, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetUserByEmail looks a user up case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*api.User, error) {
	var u api.User
	err := s.pool.QueryRow(ctx,
		"SELECT id, email, name, password_hash, created_at FROM users WHERE lower(email) = $1",
		storage.NormalizeEmail(email),
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanEntry(row pgx.Row) (*api.Entry, error) {
	var e api.Entry
	if err := row.Scan(&e.ID, &e.Content, &e.Mood, &e.Timestamp, &e.Activities); err != nil {
		return nil, err
	}
	if e.Activities == nil {
		e.Activities = []string{}
	}
	return &e, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
